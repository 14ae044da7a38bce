// Package parse turns recognized receipt text into a structured draft
// expense record. Parsing is rule-based and total: malformed input degrades
// field by field, it never fails as a whole.
package parse

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/rocont/driverledger/constants"
	"github.com/rocont/driverledger/internal/entity"
)

// RateSource supplies the fallback VAT rate used to back-compute net and
// VAT amounts when a receipt only states its total.
type RateSource interface {
	DefaultRate(ctx context.Context) decimal.Decimal
}

// statutoryStandardRate is the last-resort fallback when no RateSource is
// configured (the standard Romanian VAT rate effective 2025-08-01).
var statutoryStandardRate = decimal.NewFromInt(21)

var (
	// CIF/CUI label, optional RO prefix, 2-13 digits possibly broken up by
	// whitespace from OCR.
	reTaxID = regexp.MustCompile(`(?i)\b(?:c\.? ?i\.? ?f\.?|c\.? ?u\.? ?i\.?|cod\s+fiscal|c\.? ?f\.?)\s*:?\s*(ro)?\s*(\d(?: ?\d){1,12})`)

	// Legal-form markers. reLegalStart anchors the supplier run, reLegalSuffix
	// closes it ("SC PETROM SA").
	reLegalStart  = regexp.MustCompile(`\b(?:S\.?C|P\.?F\.?A)\b\.?\s+`)
	reLegalSuffix = regexp.MustCompile(`\b(?:S\.?R\.?L|S\.?A|P\.?F\.?A)\b\.?`)
	reTaxLabel    = regexp.MustCompile(`(?i)\b(?:c\.? ?i\.? ?f\.?|c\.? ?u\.? ?i\.?|cod\s+fiscal|c\.? ?f\.?)\s*:`)

	// Document number: label plus an alphanumeric token.
	reDocNumber = regexp.MustCompile(`(?i)\b(?:seria|document|doc|bon|nr)\b\.?\s*:?\s*([A-Za-z0-9][A-Za-z0-9\-/]*)`)

	reDateDMY = regexp.MustCompile(`\b(\d{1,2})[./-](\d{1,2})[./-](\d{4}|\d{2})\b`)
	reDateYMD = regexp.MustCompile(`\b(\d{4})[./-](\d{1,2})[./-](\d{1,2})\b`)

	// Amount token: space or dot thousands grouping, comma (or dot) decimals.
	amountToken = `(\d+(?: \d{3}|\.\d{3})*(?:[.,]\d{1,2})?)`

	reTotal = regexp.MustCompile(`(?i)\b(?:subtotal|total\s+general|total(?:\s+(?:de\s+)?plat[aă])?|suma\s+(?:de\s+)?plat[aă])\s*:?\s*(?:lei\s*)?` + amountToken)
	reVat   = regexp.MustCompile(`(?i)\btva\s*:?\s*(\d{1,2}(?:[.,]\d{1,2})?)\s*%\s*:?\s*` + amountToken)
)

var headerWords = []string{"bon fiscal", "chitanta", "chitanță", "factura", "factură", "receipt"}

const decorative = "*-=~#_|:;.· "

// Parser extracts structured receipt fields from recognized text.
type Parser struct {
	rates RateSource
}

// NewParser builds a parser. rates may be nil; the statutory standard rate
// is then used as the fallback for total-only receipts.
func NewParser(rates RateSource) *Parser {
	return &Parser{rates: rates}
}

// Parse extracts a draft expense record from raw recognized text. It is
// deterministic and never fails: absent fields stay empty and only lower
// the confidence score.
func (p *Parser) Parse(rawText string) entity.ParsedReceipt {
	rec := entity.ParsedReceipt{
		RawText:  rawText,
		Category: constants.CategoryOther,
	}

	rec.SupplierTaxID = extractTaxID(rawText)
	rec.SupplierName = extractSupplier(rawText)
	rec.DocumentNumber = extractDocNumber(rawText)
	rec.Date = extractDate(rawText)

	p.extractAmounts(rawText, &rec)

	rec.Category = classify(rec.SupplierName, rawText)
	rec.Description = describe(rec.Category, rec.SupplierName)
	rec.ConfidenceScore = score(&rec)

	return rec
}

func extractTaxID(text string) string {
	m := reTaxID.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, m[2])
	if digits == "" {
		return ""
	}
	return "RO" + digits
}

func extractSupplier(text string) string {
	if name := supplierByLegalForm(text); name != "" {
		return name
	}
	return supplierByFirstLine(text)
}

// supplierByLegalForm matches a legal-form marker followed by an
// uppercase-led name run, bounded by a closing legal-form marker, the
// tax-id label, or the end of the line.
func supplierByLegalForm(text string) string {
	loc := reLegalStart.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	rest := text[loc[1]:]
	first, _ := firstRune(rest)
	if !unicode.IsUpper(first) {
		return ""
	}

	end := len(rest)
	if i := strings.IndexByte(rest, '\n'); i >= 0 && i < end {
		end = i
	}
	if m := reTaxLabel.FindStringIndex(rest); m != nil && m[0] < end {
		end = m[0]
	}
	if m := reLegalSuffix.FindStringIndex(rest); m != nil && m[1] <= end {
		// include the closing marker in the name ("... SA")
		end = m[1]
	}

	name := strings.TrimSpace(text[loc[0] : loc[1]+end])
	name = strings.TrimRight(name, decorative)
	if runeLen(name) <= 3 {
		return ""
	}
	return name
}

// supplierByFirstLine falls back to the first plausible header line: longer
// than 3 characters, not a generic document header, not an amount or
// tax-id line, not starting with a digit or decorative punctuation.
func supplierByFirstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		t := strings.TrimSpace(line)
		if t == "" || runeLen(t) <= 3 {
			continue
		}
		lower := strings.ToLower(t)
		if containsAny(lower, headerWords) {
			continue
		}
		if reTotal.MatchString(t) || reVat.MatchString(t) || reTaxLabel.MatchString(t) {
			continue
		}
		first, _ := firstRune(t)
		if unicode.IsDigit(first) || strings.ContainsRune(decorative, first) {
			continue
		}
		t = strings.Trim(t, decorative)
		if runeLen(t) <= 3 {
			continue
		}
		return t
	}
	return ""
}

// extractDocNumber returns the first labelled token that carries at least
// one digit, so the "BON" of a "BON FISCAL" header never yields "FISCAL".
func extractDocNumber(text string) string {
	for _, m := range reDocNumber.FindAllStringSubmatch(text, -1) {
		if strings.ContainsAny(m[1], "0123456789") {
			return m[1]
		}
	}
	return ""
}

func extractDate(text string) *time.Time {
	if m := reDateDMY.FindStringSubmatch(text); m != nil {
		if d := makeDate(m[3], m[2], m[1]); d != nil {
			return d
		}
	}
	if m := reDateYMD.FindStringSubmatch(text); m != nil {
		if d := makeDate(m[1], m[2], m[3]); d != nil {
			return d
		}
	}
	return nil
}

// makeDate validates the calendar date; two-digit years read as 2000s.
func makeDate(year, month, day string) *time.Time {
	y := atoi(year)
	if len(year) == 2 {
		y += 2000
	}
	mo, d := atoi(month), atoi(day)
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return nil
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(mo) || t.Day() != d {
		return nil
	}
	return &t
}

func (p *Parser) extractAmounts(text string, rec *entity.ParsedReceipt) {
	// Totals: receipts restate subtotals before the true total, so the last
	// label match wins. Known heuristic limitation, kept deliberately.
	if matches := reTotal.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		last := matches[len(matches)-1]
		if v, ok := ParseAmount(last[1]); ok {
			rec.TotalAmount = &v
		}
	}

	// VAT line: first match wins.
	if m := reVat.FindStringSubmatch(text); m != nil {
		if rate, ok := ParseRate(m[1]); ok {
			if amt, ok2 := ParseAmount(m[2]); ok2 {
				rec.VatRatePercent = &rate
				rec.VatAmount = &amt
			}
		}
	}

	switch {
	case rec.TotalAmount != nil && rec.VatAmount != nil:
		net := rec.TotalAmount.Sub(*rec.VatAmount).Round(2)
		rec.NetAmount = &net
	case rec.TotalAmount != nil:
		rate := p.fallbackRate()
		divisor := decimal.NewFromInt(1).Add(rate.Div(decimal.NewFromInt(100)))
		net := rec.TotalAmount.DivRound(divisor, 2)
		vat := rec.TotalAmount.Sub(net).Round(2)
		rec.NetAmount = &net
		rec.VatAmount = &vat
		rec.VatRatePercent = &rate
	}
}

func (p *Parser) fallbackRate() decimal.Decimal {
	if p.rates == nil {
		return statutoryStandardRate
	}
	rate := p.rates.DefaultRate(context.Background())
	if rate.IsZero() {
		return statutoryStandardRate
	}
	return rate
}

// score is the additive confidence heuristic, advisory only. The UI flags
// low scores for mandatory manual review.
func score(rec *entity.ParsedReceipt) int {
	s := 0
	if runeLen(rec.SupplierName) > 3 {
		s += 25
	}
	if rec.SupplierTaxID != "" {
		s += 25
	}
	if rec.DocumentNumber != "" {
		s += 20
	}
	if rec.TotalAmount != nil && rec.TotalAmount.IsPositive() {
		s += 20
	}
	if rec.Date != nil {
		s += 10
	}
	if s > 100 {
		s = 100
	}
	return s
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}

func runeLen(s string) int { return len([]rune(s)) }

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
