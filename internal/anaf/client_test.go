package anaf

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchCompanyByTaxID(t *testing.T) {
	var gotBody []map[string]string
	registry := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"cod": 200,
			"found": [{
				"date_generale": {
					"cui": 1234567,
					"denumire": "OMV PETROM SA",
					"adresa": "Str. Coralilor 22, Bucuresti",
					"nrRegCom": "J40/8302/1997"
				},
				"inregistrare_scop_Tva": {"scpTVA": true}
			}]
		}`))
	}))
	defer registry.Close()

	c := NewClient(Config{BaseURL: registry.URL}, zap.NewNop())

	company, err := c.FetchCompanyByTaxID(context.Background(), "RO 123-45-67")
	require.NoError(t, err)

	// request carries the bare digits
	require.Len(t, gotBody, 1)
	assert.Equal(t, "1234567", gotBody[0]["cui"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, gotBody[0]["data"])

	assert.Equal(t, "RO1234567", company.TaxID)
	assert.Equal(t, "OMV PETROM SA", company.Name)
	assert.Equal(t, "Str. Coralilor 22, Bucuresti", company.Address)
	assert.Equal(t, "J40/8302/1997", company.RegistryNo)
	assert.True(t, company.VatPayer)
}

func TestFetchCompanyByTaxID_NotFound(t *testing.T) {
	registry := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cod": 200, "found": []}`))
	}))
	defer registry.Close()

	c := NewClient(Config{BaseURL: registry.URL}, zap.NewNop())

	_, err := c.FetchCompanyByTaxID(context.Background(), "RO999999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchCompanyByTaxID_ServerError(t *testing.T) {
	registry := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer registry.Close()

	c := NewClient(Config{BaseURL: registry.URL}, zap.NewNop())

	_, err := c.FetchCompanyByTaxID(context.Background(), "RO1234567")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestFetchCompanyByTaxID_InvalidID(t *testing.T) {
	c := NewClient(Config{}, zap.NewNop())

	_, err := c.FetchCompanyByTaxID(context.Background(), "abc")
	assert.Error(t, err)
}

func TestNormalizeTaxID(t *testing.T) {
	assert.Equal(t, "RO1234567", NormalizeTaxID("RO1234567"))
	assert.Equal(t, "RO1234567", NormalizeTaxID("1234567"))
	assert.Equal(t, "RO1234567", NormalizeTaxID("RO 123 45-67"))
	assert.Equal(t, "", NormalizeTaxID("abc"))
	assert.Equal(t, "", NormalizeTaxID(""))
}
