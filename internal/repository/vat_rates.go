package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rocont/driverledger/internal/entity"
)

// VatRateRepository reads the time-versioned VAT reference data.
type VatRateRepository interface {
	ListRates(ctx context.Context) ([]entity.VatRate, error)
	ActiveRateOn(ctx context.Context, date time.Time) (*entity.VatRate, error)
}

type vatRateRepository struct {
	db     DB
	logger *zap.Logger
}

func NewVatRateRepository(db DB, logger *zap.Logger) VatRateRepository {
	return &vatRateRepository{db: db, logger: logger}
}

const listRatesSQL = `
SELECT id, rate_percentage::text, effective_from, effective_to, is_default, COALESCE(description, '')
FROM vat_rates
ORDER BY effective_from DESC, id`

func (r *vatRateRepository) ListRates(ctx context.Context) ([]entity.VatRate, error) {
	rows, err := r.db.Query(ctx, listRatesSQL)
	if err != nil {
		r.logger.Error("failed to list vat rates", zap.Error(err))
		return nil, eris.Wrap(err, "repository: list vat rates")
	}
	defer rows.Close()

	var rates []entity.VatRate
	for rows.Next() {
		rate, err := scanVatRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "repository: list vat rates")
	}
	return rates, nil
}

const activeRateSQL = `
SELECT id, rate_percentage::text, effective_from, effective_to, is_default, COALESCE(description, '')
FROM vat_rates
WHERE effective_from <= $1 AND (effective_to IS NULL OR effective_to > $1)
ORDER BY effective_from DESC, id
LIMIT 1`

func (r *vatRateRepository) ActiveRateOn(ctx context.Context, date time.Time) (*entity.VatRate, error) {
	rows, err := r.db.Query(ctx, activeRateSQL, date)
	if err != nil {
		return nil, eris.Wrap(err, "repository: active vat rate")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, eris.Wrap(err, "repository: active vat rate")
		}
		return nil, nil
	}
	rate, err := scanVatRate(rows)
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func scanVatRate(rows pgx.Rows) (entity.VatRate, error) {
	var (
		rate    entity.VatRate
		id      uuid.UUID
		pctText string
	)
	if err := rows.Scan(&id, &pctText, &rate.EffectiveFrom, &rate.EffectiveTo, &rate.IsDefault, &rate.Description); err != nil {
		return entity.VatRate{}, eris.Wrap(err, "repository: scan vat rate")
	}
	pct, err := decimal.NewFromString(pctText)
	if err != nil {
		return entity.VatRate{}, eris.Wrapf(err, "repository: rate %s has malformed percentage", id)
	}
	rate.ID = id
	rate.RatePercentage = pct
	return rate, nil
}
