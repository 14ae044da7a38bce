package vat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rocont/driverledger/internal/entity"
)

type fakeStore struct {
	rates     []entity.VatRate
	listErr   error
	listCalls int
}

func (f *fakeStore) ListRates(context.Context) ([]entity.VatRate, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rates, nil
}

func (f *fakeStore) ActiveRateOn(_ context.Context, date time.Time) (*entity.VatRate, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	for _, r := range f.rates {
		if r.Covers(date) {
			rec := r
			return &rec, nil
		}
	}
	return nil, nil
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func statutoryRates() []entity.VatRate {
	return []entity.VatRate{
		{
			ID:             uuid.New(),
			RatePercentage: decimal.NewFromInt(19),
			EffectiveFrom:  time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
			EffectiveTo:    datePtr(2025, 8, 1),
			Description:    "cota standard",
		},
		{
			ID:             uuid.New(),
			RatePercentage: decimal.NewFromInt(21),
			EffectiveFrom:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			IsDefault:      true,
			Description:    "cota standard",
		},
	}
}

func TestActiveRate_PicksWindow(t *testing.T) {
	r := NewResolver(&fakeStore{rates: statutoryRates()}, zap.NewNop())

	before := r.ActiveRate(context.Background(), time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC))
	assert.True(t, before.Equal(decimal.NewFromInt(19)))

	// window start is inclusive
	onBoundary := r.ActiveRate(context.Background(), time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, onBoundary.Equal(decimal.NewFromInt(21)))

	after := r.ActiveRate(context.Background(), time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	assert.True(t, after.Equal(decimal.NewFromInt(21)))
}

func TestActiveRate_NoDataFallsBackToDefault(t *testing.T) {
	r := NewResolver(&fakeStore{listErr: errors.New("db down")}, zap.NewNop())

	rate := r.ActiveRate(context.Background(), time.Now())
	assert.True(t, rate.Equal(decimal.NewFromInt(19)))
}

func TestActiveRate_NilStore(t *testing.T) {
	r := NewResolver(nil, zap.NewNop())

	rate := r.ActiveRate(context.Background(), time.Now())
	assert.True(t, rate.Equal(decimal.NewFromInt(19)))
}

func TestDefaultRate(t *testing.T) {
	r := NewResolver(&fakeStore{rates: statutoryRates()}, zap.NewNop())
	assert.True(t, r.DefaultRate(context.Background()).Equal(decimal.NewFromInt(21)))

	empty := NewResolver(&fakeStore{}, zap.NewNop())
	assert.True(t, empty.DefaultRate(context.Background()).Equal(decimal.NewFromInt(19)))
}

func TestRates_SnapshotReused(t *testing.T) {
	store := &fakeStore{rates: statutoryRates()}
	r := NewResolver(store, zap.NewNop())

	_ = r.DefaultRate(context.Background())
	_ = r.DefaultRate(context.Background())
	_ = r.ActiveRate(context.Background(), time.Now())

	assert.Equal(t, 1, store.listCalls)
}

func TestRates_StaleSnapshotServedOnOutage(t *testing.T) {
	store := &fakeStore{rates: statutoryRates()}
	r := NewResolver(store, zap.NewNop())

	// warm the snapshot, then break the store and force a refresh
	assert.True(t, r.DefaultRate(context.Background()).Equal(decimal.NewFromInt(21)))
	store.listErr = errors.New("db down")
	r.cache.Delete(freshKey)

	assert.True(t, r.DefaultRate(context.Background()).Equal(decimal.NewFromInt(21)))
}

func TestCalculateVat(t *testing.T) {
	r := NewResolver(&fakeStore{rates: statutoryRates()}, zap.NewNop())

	rate := decimal.NewFromInt(19)
	vatAmt, total := r.CalculateVat(context.Background(), decimal.RequireFromString("100.00"), &rate)
	assert.True(t, vatAmt.Equal(decimal.RequireFromString("19.00")))
	assert.True(t, total.Equal(decimal.RequireFromString("119.00")))

	// nil rate -> default (21)
	vatAmt, total = r.CalculateVat(context.Background(), decimal.RequireFromString("100.00"), nil)
	assert.True(t, vatAmt.Equal(decimal.RequireFromString("21.00")))
	assert.True(t, total.Equal(decimal.RequireFromString("121.00")))
}

func TestCalculateNetFromTotal_RoundTrip(t *testing.T) {
	r := NewResolver(&fakeStore{rates: statutoryRates()}, zap.NewNop())

	rate := decimal.NewFromInt(21)
	net, vatAmt := r.CalculateNetFromTotal(context.Background(), decimal.RequireFromString("121.00"), &rate)
	assert.True(t, net.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, vatAmt.Equal(decimal.RequireFromString("21.00")))

	// derived parts always re-add to the total
	total := decimal.RequireFromString("150.00")
	net, vatAmt = r.CalculateNetFromTotal(context.Background(), total, &rate)
	assert.True(t, net.Add(vatAmt).Equal(total))
}

func TestRateOptions(t *testing.T) {
	rates := statutoryRates()
	r := NewResolver(&fakeStore{rates: rates}, zap.NewNop())
	r.now = func() time.Time { return time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC) }

	opts := r.RateOptions(context.Background())

	// canonical tiers 0/11/21 plus the closed 19% record, deduplicated
	require.Len(t, opts, 4)
	assert.Equal(t, "0%", opts[0].Label)
	assert.Equal(t, "11%", opts[1].Label)
	assert.Equal(t, "19% (cota standard)", opts[2].Label)
	assert.False(t, opts[2].IsActive)
	assert.True(t, opts[3].Value.Equal(decimal.NewFromInt(21)))
	assert.True(t, opts[3].IsActive)
}

func TestRateOptions_NoStore(t *testing.T) {
	r := NewResolver(nil, zap.NewNop())

	opts := r.RateOptions(context.Background())
	require.Len(t, opts, 3)
	for i, want := range []string{"0", "11", "21"} {
		assert.True(t, opts[i].Value.Equal(decimal.RequireFromString(want)))
		assert.False(t, opts[i].IsActive)
	}
}

func TestIsValidRate(t *testing.T) {
	r := NewResolver(&fakeStore{rates: statutoryRates()}, zap.NewNop())
	ctx := context.Background()

	// canonical tiers always pass
	assert.True(t, r.IsValidRate(ctx, decimal.NewFromInt(0), nil))
	assert.True(t, r.IsValidRate(ctx, decimal.NewFromInt(11), nil))
	assert.True(t, r.IsValidRate(ctx, decimal.NewFromInt(21), nil))

	// 19 only inside its historical window
	inWindow := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	outWindow := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, r.IsValidRate(ctx, decimal.NewFromInt(19), &inWindow))
	assert.False(t, r.IsValidRate(ctx, decimal.NewFromInt(19), &outWindow))

	// never a selectable rate
	assert.False(t, r.IsValidRate(ctx, decimal.NewFromInt(17), nil))
}
