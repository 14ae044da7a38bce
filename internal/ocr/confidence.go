package ocr

import (
	"regexp"
	"strings"
)

var (
	reDateish   = regexp.MustCompile(`\b\d{1,2}[./-]\d{1,2}[./-]\d{2,4}\b|\b\d{4}-\d{2}-\d{2}\b`)
	reCurrency  = regexp.MustCompile(`\b(lei|ron)\b`)
	reAmountish = regexp.MustCompile(`\b\d+(?:\.\d{3})*,\d{2}\b|\b\d+\.\d{2}\b`)
	reTaxIDish  = regexp.MustCompile(`(?i)\b(?:cif|cui|cod fiscal)\b`)
)

// heuristicConfidence estimates recognition quality from receipt artifacts
// in the decoded text (date-ish, currency-ish, amount-ish, tax-id-ish).
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reDateish.MatchString(txtL) {
		score += 0.2
	}
	if reCurrency.MatchString(txtL) {
		score += 0.15
	}
	if reAmountish.MatchString(txtL) {
		score += 0.15
	}
	if reTaxIDish.MatchString(txtL) {
		score += 0.1
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
