package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rocont/driverledger/constants"
	"github.com/rocont/driverledger/internal/entity"
)

//go:embed schema/receipt.schema.json
var schemaFS embed.FS

var receiptSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	raw, err := schemaFS.ReadFile("schema/receipt.schema.json")
	if err != nil {
		panic(err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("receipt.schema.json", bytes.NewReader(raw)); err != nil {
		panic(err)
	}
	return c.MustCompile("receipt.schema.json")
}

// handleParseReceipt turns an uploaded receipt image into a structured
// draft. The draft is returned to the caller for review and is never
// persisted here.
func (s *Server) handleParseReceipt(w http.ResponseWriter, r *http.Request) {
	rawText, ok := s.readParseInput(w, r)
	if !ok {
		return
	}
	draft := s.parser.Parse(rawText)
	s.writeJSON(w, http.StatusOK, draft)
}

// readParseInput accepts either a multipart image upload (field "file") or a
// JSON body carrying already-recognized text.
func (s *Server) readParseInput(w http.ResponseWriter, r *http.Request) (string, bool) {
	ct := r.Header.Get("Content-Type")

	if ct == "application/json" {
		var body struct {
			RawText string `json:"raw_text"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, s.cfg.MaxUploadBytes)).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return "", false
		}
		if body.RawText == "" {
			s.writeError(w, http.StatusBadRequest, "raw_text is required")
			return "", false
		}
		return body.RawText, true
	}

	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "expected multipart upload with field \"file\"")
		return "", false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "expected multipart upload with field \"file\"")
		return "", false
	}
	defer func() { _ = file.Close() }()

	image, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read upload")
		return "", false
	}

	res, err := s.recognizer.RecognizeBytes(r.Context(), image)
	if err != nil {
		s.logger.Error("recognition failed", zap.Error(err))
		s.writeError(w, http.StatusUnprocessableEntity, "text recognition failed")
		return "", false
	}
	return res.Text, true
}

type saveReceiptRequest struct {
	SupplierName   string `json:"supplier_name"`
	SupplierTaxID  string `json:"supplier_tax_id"`
	DocumentNumber string `json:"document_number"`
	TxDate         string `json:"tx_date"`
	TotalAmount    string `json:"total_amount"`
	NetAmount      string `json:"net_amount"`
	VatAmount      string `json:"vat_amount"`
	VatRatePercent string `json:"vat_rate_percent"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	RawText        string `json:"raw_text"`
}

// handleSaveReceipt persists a user-reviewed draft. The body is validated
// against the embedded schema first, then the rate is checked against the
// reference data; missing net/VAT are derived from the total.
func (s *Server) handleSaveReceipt(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := receiptSchema.Validate(generic); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var req saveReceiptRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	txDate, err := time.ParseInLocation("2006-01-02", req.TxDate, time.UTC)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "tx_date is not a valid date")
		return
	}

	total, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "total_amount is not a valid amount")
		return
	}

	rec := &entity.Receipt{
		SupplierName:   req.SupplierName,
		SupplierTaxID:  req.SupplierTaxID,
		DocumentNumber: req.DocumentNumber,
		TxDate:         txDate,
		TotalAmount:    total,
		Description:    req.Description,
		RawText:        req.RawText,
	}

	cat, ok := constants.Canonicalize(req.Category)
	if !ok {
		s.writeError(w, http.StatusUnprocessableEntity, "unknown category")
		return
	}
	rec.Category = cat

	if req.VatRatePercent != "" {
		rate, err := decimal.NewFromString(req.VatRatePercent)
		if err != nil {
			s.writeError(w, http.StatusUnprocessableEntity, "vat_rate_percent is not a valid rate")
			return
		}
		if !s.resolver.IsValidRate(r.Context(), rate, &txDate) {
			s.writeError(w, http.StatusUnprocessableEntity, "vat_rate_percent is not a selectable rate")
			return
		}
		rec.VatRatePercent = &rate
	}

	if req.NetAmount != "" {
		net, err := decimal.NewFromString(req.NetAmount)
		if err != nil {
			s.writeError(w, http.StatusUnprocessableEntity, "net_amount is not a valid amount")
			return
		}
		rec.NetAmount = &net
	}
	if req.VatAmount != "" {
		v, err := decimal.NewFromString(req.VatAmount)
		if err != nil {
			s.writeError(w, http.StatusUnprocessableEntity, "vat_amount is not a valid amount")
			return
		}
		rec.VatAmount = &v
	}

	// derive missing amounts from the tax-inclusive total
	if rec.NetAmount == nil && rec.VatAmount == nil && rec.VatRatePercent != nil {
		net, vatAmt := s.resolver.CalculateNetFromTotal(r.Context(), total, rec.VatRatePercent)
		rec.NetAmount = &net
		rec.VatAmount = &vatAmt
	}

	saved, err := s.receipts.Insert(r.Context(), rec)
	if err != nil {
		s.logger.Error("failed to save receipt", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to save receipt")
		return
	}
	s.writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateParam(r, "from")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
		return
	}

	recs, err := s.receipts.List(r.Context(), from, to)
	if err != nil {
		s.logger.Error("failed to list receipts", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list receipts")
		return
	}
	if recs == nil {
		recs = []*entity.Receipt{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"receipts": recs})
}
