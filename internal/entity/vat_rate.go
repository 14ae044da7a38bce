package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VatRate is a time-versioned VAT rate record. Reference data, read-only
// from this application's perspective.
type VatRate struct {
	ID             uuid.UUID       `json:"id"`
	RatePercentage decimal.Decimal `json:"rate_percentage"`
	EffectiveFrom  time.Time       `json:"effective_from"`
	EffectiveTo    *time.Time      `json:"effective_to,omitempty"`
	IsDefault      bool            `json:"is_default"`
	Description    string          `json:"description,omitempty"`
}

// Covers reports whether date falls inside the record's effective window
// [EffectiveFrom, EffectiveTo). A nil EffectiveTo means open-ended.
func (r VatRate) Covers(date time.Time) bool {
	if date.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveTo == nil || date.Before(*r.EffectiveTo)
}
