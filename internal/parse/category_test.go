package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rocont/driverledger/constants"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		supplier string
		raw      string
		want     constants.ExpenseCategory
	}{
		{"petrom brand", "SC PETROM SA", "", constants.CategoryFuel},
		{"fuel keyword", "STATIA VEST", "MOTORINA 45L", constants.CategoryFuel},
		{"gpl", "", "GPL AUTO 20L", constants.CategoryFuel},
		{"repairs", "AUTOSERVICE EST", "", constants.CategoryRepairs},
		{"insurance rca", "", "POLITA RCA 12 LUNI", constants.CategoryInsurance},
		{"insurance brand", "ALLIANZ TIRIAC", "", constants.CategoryInsurance},
		{"car wash", "SPALATORIE AUTO NOVA", "", constants.CategoryCarWash},
		{"service itp", "", "INSPECTIE ITP", constants.CategoryService},
		{"consumables", "", "LICHID PARBRIZ 5L", constants.CategoryConsumables},
		{"parking", "PARCARE CENTRU", "", constants.CategoryParking},
		{"fine", "", "AMENDA CONTRAVENTIE", constants.CategoryFines},
		{"platform commission", "", "COMISION BOLT", constants.CategoryCommissions},
		{"no match", "MAGAZIN UNIVERSAL", "PAINE LAPTE", constants.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.supplier, tt.raw))
		})
	}
}

func TestClassify_FirstRuleWins(t *testing.T) {
	// fuel is checked before commissions, so a fuel receipt paid through a
	// platform app still lands on fuel
	got := classify("SC OMV SRL", "plata prin UBER wallet")
	assert.Equal(t, constants.CategoryFuel, got)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Combustibil SC PETROM SA", describe(constants.CategoryFuel, "SC PETROM SA"))
	assert.Equal(t, "Parcare", describe(constants.CategoryParking, ""))
	assert.Equal(t, "Cheltuială MAGAZIN X", describe(constants.CategoryOther, "MAGAZIN X"))
}
