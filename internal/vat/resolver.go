// Package vat resolves the legally-effective Romanian VAT rate for a given
// date from time-versioned reference data, and derives net/VAT/total
// amounts. All read paths are total: reference-data outages degrade to the
// cached snapshot and finally to hardcoded statutory rates, never to an
// error surfaced to a save operation.
package vat

import (
	"context"
	"fmt"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rocont/driverledger/internal/entity"
)

const (
	ratesKey   = "vat_rates"
	freshKey   = "vat_rates_fresh"
	refreshTTL = time.Hour
)

// fallbackDefaultRate is returned when reference data is unreachable and no
// record is flagged as default.
var fallbackDefaultRate = decimal.NewFromInt(19)

// canonicalTiers are the statutory rate tiers in force since 2025-08-01:
// zero, reduced, standard. They are always offered and always valid, with
// or without reference data.
var canonicalTiers = []decimal.Decimal{
	decimal.NewFromInt(0),
	decimal.NewFromInt(11),
	decimal.NewFromInt(21),
}

// RateStore is the reference-data read interface the resolver depends on.
type RateStore interface {
	// ListRates returns all rate records in stable order:
	// effective_from descending, id ascending.
	ListRates(ctx context.Context) ([]entity.VatRate, error)
	// ActiveRateOn resolves the record covering date directly against the
	// store. Returns nil when no record covers the date.
	ActiveRateOn(ctx context.Context, date time.Time) (*entity.VatRate, error)
}

// RateOption is one selectable rate for a form dropdown.
type RateOption struct {
	Value    decimal.Decimal `json:"value"`
	Label    string          `json:"label"`
	IsActive bool            `json:"is_active"`
}

// Resolver answers rate queries from an in-process snapshot of the rate
// table, refreshed on a fixed TTL. Concurrent readers may transiently see a
// stale snapshot during refresh; rates change on known legislative dates,
// so no stronger consistency is needed.
type Resolver struct {
	store  RateStore
	cache  *gocache.Cache
	logger *zap.Logger
	now    func() time.Time
}

func NewResolver(store RateStore, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		store:  store,
		cache:  gocache.New(refreshTTL, 2*refreshTTL),
		logger: logger,
		now:    time.Now,
	}
}

// rates returns the current snapshot, refreshing it when older than the TTL
// or empty. A failed refresh falls back to the previous snapshot.
func (r *Resolver) rates(ctx context.Context) []entity.VatRate {
	if _, fresh := r.cache.Get(freshKey); fresh {
		if cached, ok := r.cache.Get(ratesKey); ok {
			return cached.([]entity.VatRate)
		}
	}

	if r.store != nil {
		fetched, err := r.store.ListRates(ctx)
		if err == nil {
			sortRates(fetched)
			// snapshot survives expiry so outages degrade to stale data
			r.cache.Set(ratesKey, fetched, gocache.NoExpiration)
			r.cache.Set(freshKey, struct{}{}, refreshTTL)
			return fetched
		}
		r.logger.Warn("vat: rate refresh failed, serving stale snapshot", zap.Error(err))
	}

	if cached, ok := r.cache.Get(ratesKey); ok {
		return cached.([]entity.VatRate)
	}
	return nil
}

// sortRates orders records by effective_from descending, id ascending, the
// deterministic pick order when windows overlap.
func sortRates(rates []entity.VatRate) {
	sort.SliceStable(rates, func(i, j int) bool {
		if !rates[i].EffectiveFrom.Equal(rates[j].EffectiveFrom) {
			return rates[i].EffectiveFrom.After(rates[j].EffectiveFrom)
		}
		return rates[i].ID.String() < rates[j].ID.String()
	})
}

// ActiveRate returns the rate legally in force on date. Resolution order:
// cached snapshot, direct store query, default rate.
func (r *Resolver) ActiveRate(ctx context.Context, date time.Time) decimal.Decimal {
	for _, rec := range r.rates(ctx) {
		if rec.Covers(date) {
			return rec.RatePercentage
		}
	}
	if r.store != nil {
		rec, err := r.store.ActiveRateOn(ctx, date)
		if err == nil && rec != nil {
			return rec.RatePercentage
		}
		if err != nil {
			r.logger.Warn("vat: active-rate lookup failed", zap.Time("date", date), zap.Error(err))
		}
	}
	return r.DefaultRate(ctx)
}

// DefaultRate returns the record flagged as default, or the hardcoded
// statutory fallback when none is flagged.
func (r *Resolver) DefaultRate(ctx context.Context) decimal.Decimal {
	for _, rec := range r.rates(ctx) {
		if rec.IsDefault {
			return rec.RatePercentage
		}
	}
	return fallbackDefaultRate
}

// CalculateVat derives VAT and total from a net amount. A nil rate means
// the default rate. Amounts round half-up to 2 decimals.
func (r *Resolver) CalculateVat(ctx context.Context, net decimal.Decimal, rate *decimal.Decimal) (vatAmount, totalAmount decimal.Decimal) {
	pct := r.pick(ctx, rate)
	vatAmount = net.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
	totalAmount = net.Add(vatAmount)
	return vatAmount, totalAmount
}

// CalculateNetFromTotal derives net and VAT from a tax-inclusive total.
func (r *Resolver) CalculateNetFromTotal(ctx context.Context, total decimal.Decimal, rate *decimal.Decimal) (netAmount, vatAmount decimal.Decimal) {
	pct := r.pick(ctx, rate)
	divisor := decimal.NewFromInt(1).Add(pct.Div(decimal.NewFromInt(100)))
	netAmount = total.DivRound(divisor, 2)
	vatAmount = total.Sub(netAmount).Round(2)
	return netAmount, vatAmount
}

func (r *Resolver) pick(ctx context.Context, rate *decimal.Decimal) decimal.Decimal {
	if rate != nil {
		return *rate
	}
	return r.DefaultRate(ctx)
}

// RateOptions lists the canonical statutory tiers plus every rate present
// in reference data, deduplicated by value, sorted ascending, each flagged
// whether it is currently inside its effective window.
func (r *Resolver) RateOptions(ctx context.Context) []RateOption {
	records := r.rates(ctx)
	now := r.now()

	seen := map[string]*RateOption{}
	order := make([]string, 0, len(canonicalTiers)+len(records))

	add := func(value decimal.Decimal, label string, active bool) {
		key := value.String()
		if opt, ok := seen[key]; ok {
			if active {
				opt.IsActive = true
			}
			if opt.Label == "" {
				opt.Label = label
			}
			return
		}
		seen[key] = &RateOption{Value: value, Label: label, IsActive: active}
		order = append(order, key)
	}

	for _, tier := range canonicalTiers {
		add(tier, fmt.Sprintf("%s%%", tier.String()), false)
	}
	for _, rec := range records {
		label := fmt.Sprintf("%s%%", rec.RatePercentage.String())
		if rec.Description != "" {
			label = fmt.Sprintf("%s%% (%s)", rec.RatePercentage.String(), rec.Description)
		}
		add(rec.RatePercentage, label, rec.Covers(now))
	}

	opts := make([]RateOption, 0, len(order))
	for _, key := range order {
		opts = append(opts, *seen[key])
	}
	sort.Slice(opts, func(i, j int) bool {
		return opts[i].Value.LessThan(opts[j].Value)
	})
	return opts
}

// IsValidRate reports whether rate is selectable: the canonical tiers are
// always valid; other values must match a reference record, covering date
// when one is given.
func (r *Resolver) IsValidRate(ctx context.Context, rate decimal.Decimal, date *time.Time) bool {
	for _, tier := range canonicalTiers {
		if rate.Equal(tier) {
			return true
		}
	}
	for _, rec := range r.rates(ctx) {
		if !rec.RatePercentage.Equal(rate) {
			continue
		}
		if date == nil || rec.Covers(*date) {
			return true
		}
	}
	return false
}
