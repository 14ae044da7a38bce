package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var rateColumns = []string{"id", "rate_percentage", "effective_from", "effective_to", "is_default", "description"}

func TestVatRateRepository_ListRates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewVatRateRepository(mock, zap.NewNop())

	newFrom := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	oldFrom := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	oldTo := newFrom

	mock.ExpectQuery(`SELECT id, rate_percentage::text`).
		WillReturnRows(pgxmock.NewRows(rateColumns).
			AddRow(uuid.New(), "21", newFrom, nil, true, "cota standard").
			AddRow(uuid.New(), "19", oldFrom, &oldTo, false, ""))

	rates, err := repo.ListRates(context.Background())

	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.True(t, rates[0].RatePercentage.Equal(decimal.NewFromInt(21)))
	assert.True(t, rates[0].IsDefault)
	assert.Nil(t, rates[0].EffectiveTo)
	assert.True(t, rates[1].RatePercentage.Equal(decimal.NewFromInt(19)))
	require.NotNil(t, rates[1].EffectiveTo)
	assert.Equal(t, newFrom, *rates[1].EffectiveTo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVatRateRepository_ListRates_MalformedPercentage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewVatRateRepository(mock, zap.NewNop())

	mock.ExpectQuery(`SELECT id, rate_percentage::text`).
		WillReturnRows(pgxmock.NewRows(rateColumns).
			AddRow(uuid.New(), "not-a-number", time.Now(), nil, false, ""))

	_, err = repo.ListRates(context.Background())
	assert.Error(t, err)
}

func TestVatRateRepository_ActiveRateOn(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewVatRateRepository(mock, zap.NewNop())

	date := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE effective_from <= \$1`).
		WithArgs(date).
		WillReturnRows(pgxmock.NewRows(rateColumns).
			AddRow(uuid.New(), "21", from, nil, true, "cota standard"))

	rate, err := repo.ActiveRateOn(context.Background(), date)

	require.NoError(t, err)
	require.NotNil(t, rate)
	assert.True(t, rate.RatePercentage.Equal(decimal.NewFromInt(21)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVatRateRepository_ActiveRateOn_NoMatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewVatRateRepository(mock, zap.NewNop())

	date := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE effective_from <= \$1`).
		WithArgs(date).
		WillReturnRows(pgxmock.NewRows(rateColumns))

	rate, err := repo.ActiveRateOn(context.Background(), date)

	require.NoError(t, err)
	assert.Nil(t, rate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
