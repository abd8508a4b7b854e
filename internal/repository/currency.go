package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/commerce-admin/internal/model/store"
	"github.com/deppfellow/commerce-admin/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

// CurrencyRepository reads the seeded currency catalog.
type CurrencyRepository interface {
	WithTx(tx pgx.Tx) CurrencyRepository
	GetCurrency(ctx context.Context, code string) (*store.Currency, error)
}

type currencyRepository struct {
	db DBTX
}

func NewCurrencyRepository(db DBTX) CurrencyRepository {
	return &currencyRepository{db: db}
}

func (r *currencyRepository) WithTx(tx pgx.Tx) CurrencyRepository {
	return &currencyRepository{db: tx}
}

func (r *currencyRepository) GetCurrency(ctx context.Context, code string) (*store.Currency, error) {
	rows, err := r.db.Query(ctx, `
		SELECT code, symbol, symbol_native, name
		FROM currencies
		WHERE code = $1`,
		code,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query currency %s: %w", code, err)
	}

	c, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[store.Currency])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NoRows("currencies")
		}
		return nil, fmt.Errorf("failed to collect currency %s: %w", code, err)
	}

	return c, nil
}
