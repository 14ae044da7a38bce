package entity

// Company is a business-entity record as returned by the government tax
// registry. The TaxID carries the country-prefixed form ("RO" + digits),
// matching the normalization the receipt parser produces.
type Company struct {
	TaxID      string `json:"tax_id"`
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	VatPayer   bool   `json:"vat_payer"`
	RegistryNo string `json:"registry_no,omitempty"`
}
