// Package anaf is a thin client for the government tax-registry proxy. It
// resolves a Romanian fiscal identifier (CIF/CUI) to the registered
// company record.
package anaf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rocont/driverledger/internal/entity"
)

// ErrNotFound is returned when the registry has no record for the tax id.
var ErrNotFound = errors.New("anaf: company not found")

const defaultBaseURL = "https://webservicesp.anaf.ro/PlatitorTvaRest/api/v8/ws/tva"

type Config struct {
	BaseURL string
	Timeout time.Duration // default 10s
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type lookupRequest struct {
	CUI  string `json:"cui"`
	Data string `json:"data"`
}

type lookupResponse struct {
	Cod     int    `json:"cod"`
	Message string `json:"message"`
	Found   []struct {
		DateGenerale struct {
			CUI      json.Number `json:"cui"`
			Denumire string      `json:"denumire"`
			Adresa   string      `json:"adresa"`
			NrRegCom string      `json:"nrRegCom"`
		} `json:"date_generale"`
		InregistrareScopTVA struct {
			ScpTVA bool `json:"scpTVA"`
		} `json:"inregistrare_scop_Tva"`
	} `json:"found"`
}

// FetchCompanyByTaxID looks up a company by its fiscal id. The id may carry
// the RO prefix or not; the returned record always carries it, matching the
// normalization produced by the receipt parser.
func (c *Client) FetchCompanyByTaxID(ctx context.Context, taxID string) (*entity.Company, error) {
	digits := NormalizeTaxID(taxID)
	if digits == "" {
		return nil, eris.Errorf("anaf: invalid tax id %q", taxID)
	}

	payload, err := json.Marshal([]lookupRequest{{
		CUI:  strings.TrimPrefix(digits, "RO"),
		Data: time.Now().UTC().Format("2006-01-02"),
	}})
	if err != nil {
		return nil, eris.Wrap(err, "anaf: encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "anaf: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "anaf: registry request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("anaf: registry returned %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, eris.Wrap(err, "anaf: decode response")
	}
	if len(body.Found) == 0 {
		return nil, ErrNotFound
	}

	rec := body.Found[0]
	c.logger.Debug("anaf lookup ok",
		zap.String("tax_id", digits),
		zap.String("name", rec.DateGenerale.Denumire),
	)
	return &entity.Company{
		TaxID:      fmt.Sprintf("RO%s", rec.DateGenerale.CUI.String()),
		Name:       rec.DateGenerale.Denumire,
		Address:    rec.DateGenerale.Adresa,
		VatPayer:   rec.InregistrareScopTVA.ScpTVA,
		RegistryNo: rec.DateGenerale.NrRegCom,
	}, nil
}

// NormalizeTaxID strips spacing and punctuation and returns the
// country-prefixed form ("RO" + digits), or "" when no digits remain.
func NormalizeTaxID(taxID string) string {
	var digits strings.Builder
	for _, r := range taxID {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	return "RO" + digits.String()
}
