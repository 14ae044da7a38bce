package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rocont/driverledger/constants"
)

// ParsedReceipt is the structured draft produced by the receipt parser from
// recognized text. Every field is best-effort: extraction misses are empty
// or nil, never errors. The draft is presented to the user for correction
// before it is ever persisted.
type ParsedReceipt struct {
	SupplierName    string                    `json:"supplier_name"`
	SupplierTaxID   string                    `json:"supplier_tax_id"`
	DocumentNumber  string                    `json:"document_number"`
	Date            *time.Time                `json:"date,omitempty"`
	TotalAmount     *decimal.Decimal          `json:"total_amount,omitempty"`
	NetAmount       *decimal.Decimal          `json:"net_amount,omitempty"`
	VatAmount       *decimal.Decimal          `json:"vat_amount,omitempty"`
	VatRatePercent  *decimal.Decimal          `json:"vat_rate_percent,omitempty"`
	Category        constants.ExpenseCategory `json:"category"`
	Description     string                    `json:"description"`
	ConfidenceScore int                       `json:"confidence_score"`
	RawText         string                    `json:"raw_text"`
}

// Receipt is a saved, user-reviewed expense record.
type Receipt struct {
	ID             uuid.UUID                 `json:"id"`
	SupplierName   string                    `json:"supplier_name"`
	SupplierTaxID  string                    `json:"supplier_tax_id"`
	DocumentNumber string                    `json:"document_number"`
	TxDate         time.Time                 `json:"tx_date"`
	TotalAmount    decimal.Decimal           `json:"total_amount"`
	NetAmount      *decimal.Decimal          `json:"net_amount,omitempty"`
	VatAmount      *decimal.Decimal          `json:"vat_amount,omitempty"`
	VatRatePercent *decimal.Decimal          `json:"vat_rate_percent,omitempty"`
	Category       constants.ExpenseCategory `json:"category"`
	Description    string                    `json:"description"`
	RawText        string                    `json:"raw_text,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}
