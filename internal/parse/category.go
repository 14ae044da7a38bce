package parse

import (
	"strings"

	"github.com/rocont/driverledger/constants"
)

// categoryRule maps one expense category to the Romanian keywords and brand
// names that identify it on a receipt. Rules are evaluated in order; the
// first category with any matching keyword wins.
type categoryRule struct {
	category constants.ExpenseCategory
	keywords []string
}

// Keyword lists mix diacritic and plain spellings because OCR output is
// inconsistent about Romanian diacritics.
var categoryRules = []categoryRule{
	{constants.CategoryFuel, []string{
		"petrom", "omv", "rompetrol", "lukoil", "mol ", "socar", "gazprom",
		"benzina", "benzină", "motorina", "motorină", "combustibil",
		"carburant", "gpl", "peco",
	}},
	{constants.CategoryRepairs, []string{
		"reparat", "reparați", "piese auto", "vulcaniz", "tinichigerie",
		"mecanic", "autoservice", "service auto",
	}},
	{constants.CategoryInsurance, []string{
		"asigurar", "asigurăr", "rca", "casco", "allianz", "groupama",
		"omniasig", "generali", "euroins", "asirom",
	}},
	{constants.CategoryCarWash, []string{
		"spalator", "spălător", "car wash", "carwash",
	}},
	{constants.CategoryService, []string{
		"revizie", "itp", "schimb ulei", "intretinere", "întreținere",
		"mentenanta", "mentenanță",
	}},
	{constants.CategoryConsumables, []string{
		"consumabile", "lichid parbriz", "stergatoare", "ștergătoare",
		"antigel", "becuri auto",
	}},
	{constants.CategoryParking, []string{
		"parcare", "parking", "parcari", "parcări",
	}},
	{constants.CategoryFines, []string{
		"amenda", "amendă", "amenzi", "contraventie", "contravenție",
		"politia rutiera", "poliția rutieră",
	}},
	{constants.CategoryCommissions, []string{
		"uber", "bolt", "free now", "freenow", "comision platforma",
		"comision platformă", "comision",
	}},
}

// classify picks the expense category for a receipt from the lower-cased
// concatenation of supplier name and raw text. No match means CategoryOther.
func classify(supplierName, rawText string) constants.ExpenseCategory {
	haystack := strings.ToLower(supplierName + "\n" + rawText)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.category
			}
		}
	}
	return constants.CategoryOther
}

// descriptionTemplates generate the human-readable draft description per
// category. The supplier name is interpolated when known.
var descriptionTemplates = map[constants.ExpenseCategory]string{
	constants.CategoryFuel:        "Combustibil",
	constants.CategoryRepairs:     "Reparații auto",
	constants.CategoryInsurance:   "Asigurare auto",
	constants.CategoryCarWash:     "Spălătorie auto",
	constants.CategoryService:     "Service auto",
	constants.CategoryConsumables: "Consumabile auto",
	constants.CategoryParking:     "Parcare",
	constants.CategoryFines:       "Amendă",
	constants.CategoryCommissions: "Comision platformă",
}

func describe(category constants.ExpenseCategory, supplierName string) string {
	prefix, ok := descriptionTemplates[category]
	if !ok {
		prefix = "Cheltuială"
	}
	return strings.TrimSpace(prefix + " " + supplierName)
}
