package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rocont/driverledger/constants"
	"github.com/rocont/driverledger/internal/entity"
)

// DB is the subset of pgxpool.Pool the repositories use; satisfied by
// pgxmock in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ReceiptRepository persists user-reviewed expense records.
type ReceiptRepository interface {
	Insert(ctx context.Context, rec *entity.Receipt) (*entity.Receipt, error)
	List(ctx context.Context, from, to *time.Time) ([]*entity.Receipt, error)
}

type receiptRepository struct {
	db     DB
	logger *zap.Logger
}

func NewReceiptRepository(db DB, logger *zap.Logger) ReceiptRepository {
	return &receiptRepository{db: db, logger: logger}
}

const insertReceiptSQL = `
INSERT INTO receipts (
	supplier_name, supplier_tax_id, document_number, tx_date,
	total_amount, net_amount, vat_amount, vat_rate_percent,
	category, description, raw_text
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, created_at, updated_at`

func (r *receiptRepository) Insert(ctx context.Context, rec *entity.Receipt) (*entity.Receipt, error) {
	row := r.db.QueryRow(ctx, insertReceiptSQL,
		rec.SupplierName,
		rec.SupplierTaxID,
		rec.DocumentNumber,
		rec.TxDate,
		rec.TotalAmount.StringFixed(2),
		decString(rec.NetAmount),
		decString(rec.VatAmount),
		decString(rec.VatRatePercent),
		string(rec.Category),
		rec.Description,
		rec.RawText,
	)

	saved := *rec
	if err := row.Scan(&saved.ID, &saved.CreatedAt, &saved.UpdatedAt); err != nil {
		r.logger.Error("failed to insert receipt", zap.String("supplier", rec.SupplierName), zap.Error(err))
		return nil, eris.Wrap(err, "repository: insert receipt")
	}
	return &saved, nil
}

const listReceiptsSQL = `
SELECT id, supplier_name, supplier_tax_id, document_number, tx_date,
	total_amount::text, net_amount::text, vat_amount::text, vat_rate_percent::text,
	category, description, created_at, updated_at
FROM receipts
WHERE ($1::date IS NULL OR tx_date >= $1)
  AND ($2::date IS NULL OR tx_date <= $2)
ORDER BY tx_date, created_at`

func (r *receiptRepository) List(ctx context.Context, from, to *time.Time) ([]*entity.Receipt, error) {
	rows, err := r.db.Query(ctx, listReceiptsSQL, from, to)
	if err != nil {
		r.logger.Error("failed to list receipts", zap.Error(err))
		return nil, eris.Wrap(err, "repository: list receipts")
	}
	defer rows.Close()

	var recs []*entity.Receipt
	for rows.Next() {
		var (
			rec      entity.Receipt
			total    string
			net      *string
			vatAmt   *string
			vatRate  *string
			category string
		)
		if err := rows.Scan(
			&rec.ID, &rec.SupplierName, &rec.SupplierTaxID, &rec.DocumentNumber, &rec.TxDate,
			&total, &net, &vatAmt, &vatRate,
			&category, &rec.Description, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "repository: scan receipt")
		}

		totalDec, err := decimal.NewFromString(total)
		if err != nil {
			return nil, eris.Wrapf(err, "repository: receipt %s has malformed total", rec.ID)
		}
		rec.TotalAmount = totalDec
		if rec.NetAmount, err = decFromString(net); err != nil {
			return nil, eris.Wrapf(err, "repository: receipt %s has malformed net amount", rec.ID)
		}
		if rec.VatAmount, err = decFromString(vatAmt); err != nil {
			return nil, eris.Wrapf(err, "repository: receipt %s has malformed vat amount", rec.ID)
		}
		if rec.VatRatePercent, err = decFromString(vatRate); err != nil {
			return nil, eris.Wrapf(err, "repository: receipt %s has malformed vat rate", rec.ID)
		}
		rec.Category, _ = constants.Canonicalize(category)
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "repository: list receipts")
	}
	return recs, nil
}

func decString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func decFromString(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
