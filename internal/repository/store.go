package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/commerce-admin/internal/model/store"
	"github.com/deppfellow/commerce-admin/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StoreRepository reads the store aggregate and toggles its enabled currencies.
type StoreRepository interface {
	WithTx(tx pgx.Tx) StoreRepository

	// GetStore loads the store with its enabled currencies.
	GetStore(ctx context.Context) (*store.Store, error)

	// GetStoreForUpdate is GetStore with the store row locked until the
	// surrounding transaction ends.
	GetStoreForUpdate(ctx context.Context) (*store.Store, error)

	// AddCurrency enables code and reports whether a row was inserted.
	AddCurrency(ctx context.Context, storeID uuid.UUID, code string) (bool, error)

	// RemoveCurrency disables code and reports whether a row was deleted.
	RemoveCurrency(ctx context.Context, storeID uuid.UUID, code string) (bool, error)
}

type storeRepository struct {
	db DBTX
}

func NewStoreRepository(db DBTX) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) WithTx(tx pgx.Tx) StoreRepository {
	return &storeRepository{db: tx}
}

const selectStore = `
	SELECT id, name, default_currency_code, created_at, updated_at
	FROM stores
	ORDER BY created_at
	LIMIT 1`

func (r *storeRepository) GetStore(ctx context.Context) (*store.Store, error) {
	return r.getStore(ctx, selectStore)
}

func (r *storeRepository) GetStoreForUpdate(ctx context.Context) (*store.Store, error) {
	return r.getStore(ctx, selectStore+" FOR UPDATE")
}

func (r *storeRepository) getStore(ctx context.Context, query string) (*store.Store, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query store: %w", err)
	}

	s, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[store.Store])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NoRows("stores")
		}
		return nil, fmt.Errorf("failed to collect store: %w", err)
	}

	s.Currencies, err = r.listCurrencies(ctx, s.ID)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (r *storeRepository) listCurrencies(ctx context.Context, storeID uuid.UUID) ([]store.Currency, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.code, c.symbol, c.symbol_native, c.name
		FROM store_currencies sc
		JOIN currencies c ON c.code = sc.currency_code
		WHERE sc.store_id = $1
		ORDER BY sc.created_at, c.code`,
		storeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query store currencies: %w", err)
	}

	currencies, err := pgx.CollectRows(rows, pgx.RowToStructByName[store.Currency])
	if err != nil {
		return nil, fmt.Errorf("failed to collect store currencies: %w", err)
	}

	return currencies, nil
}

func (r *storeRepository) AddCurrency(ctx context.Context, storeID uuid.UUID, code string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO store_currencies (store_id, currency_code)
		VALUES ($1, $2)
		ON CONFLICT (store_id, currency_code) DO NOTHING`,
		storeID, code,
	)
	if err != nil {
		return false, fmt.Errorf("failed to add store currency %s: %w", code, err)
	}

	if tag.RowsAffected() > 0 {
		if err := r.touch(ctx, storeID); err != nil {
			return false, err
		}
	}

	return tag.RowsAffected() > 0, nil
}

func (r *storeRepository) RemoveCurrency(ctx context.Context, storeID uuid.UUID, code string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM store_currencies
		WHERE store_id = $1 AND currency_code = $2`,
		storeID, code,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove store currency %s: %w", code, err)
	}

	if tag.RowsAffected() > 0 {
		if err := r.touch(ctx, storeID); err != nil {
			return false, err
		}
	}

	return tag.RowsAffected() > 0, nil
}

func (r *storeRepository) touch(ctx context.Context, storeID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `UPDATE stores SET updated_at = now() WHERE id = $1`, storeID); err != nil {
		return fmt.Errorf("failed to touch store: %w", err)
	}
	return nil
}
