package constants

import (
	"strings"
)

// ExpenseCategory is the closed set of deductible expense categories for a
// rideshare driver.
type ExpenseCategory string

const (
	CategoryFuel        ExpenseCategory = "fuel"
	CategoryRepairs     ExpenseCategory = "repairs"
	CategoryInsurance   ExpenseCategory = "insurance"
	CategoryCarWash     ExpenseCategory = "car-wash"
	CategoryService     ExpenseCategory = "service"
	CategoryConsumables ExpenseCategory = "consumables"
	CategoryParking     ExpenseCategory = "parking"
	CategoryFines       ExpenseCategory = "fines"
	CategoryCommissions ExpenseCategory = "commissions"
	CategoryOther       ExpenseCategory = "other"
)

var allCategories = []ExpenseCategory{
	CategoryFuel,
	CategoryRepairs,
	CategoryInsurance,
	CategoryCarWash,
	CategoryService,
	CategoryConsumables,
	CategoryParking,
	CategoryFines,
	CategoryCommissions,
	CategoryOther,
}

func AllCategories() []ExpenseCategory {
	out := make([]ExpenseCategory, len(allCategories))
	copy(out, allCategories)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps user-supplied labels (Romanian or English, any case)
// onto the closed category set. Unknown labels map to CategoryOther.
func Canonicalize(input string) (ExpenseCategory, bool) {
	if input == "" {
		return CategoryOther, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]ExpenseCategory{
		"combustibil": CategoryFuel,
		"carburant":   CategoryFuel,
		"benzina":     CategoryFuel,
		"motorina":    CategoryFuel,
		"reparatii":   CategoryRepairs,
		"reparații":   CategoryRepairs,
		"asigurare":   CategoryInsurance,
		"rca":         CategoryInsurance,
		"casco":       CategoryInsurance,
		"spalatorie":  CategoryCarWash,
		"spălătorie":  CategoryCarWash,
		"car wash":    CategoryCarWash,
		"carwash":     CategoryCarWash,
		"revizie":     CategoryService,
		"itp":         CategoryService,
		"consumabile": CategoryConsumables,
		"parcare":     CategoryParking,
		"amenda":      CategoryFines,
		"amendă":      CategoryFines,
		"amenzi":      CategoryFines,
		"comision":    CategoryCommissions,
		"comisioane":  CategoryCommissions,
		"altele":      CategoryOther,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}

	return CategoryOther, false
}
