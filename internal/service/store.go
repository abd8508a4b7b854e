package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/commerce-admin/internal/errs"
	"github.com/deppfellow/commerce-admin/internal/model/store"
	"github.com/deppfellow/commerce-admin/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type StoreService struct {
	stores     repository.StoreRepository
	currencies repository.CurrencyRepository
	cache      *StoreCache
}

func NewStoreService(repos *repository.Repositories, cache *StoreCache) *StoreService {
	return &StoreService{
		stores:     repos.Store,
		currencies: repos.Currency,
		cache:      cache,
	}
}

// WithTx returns a copy whose repositories run on tx.
func (s *StoreService) WithTx(tx pgx.Tx) *StoreService {
	return &StoreService{
		stores:     s.stores.WithTx(tx),
		currencies: s.currencies.WithTx(tx),
		cache:      s.cache,
	}
}

func errStoreNotFound() *errs.HTTPError {
	return errs.NewNotFoundError("Store not found", true, errs.Code("STORE_NOT_FOUND"))
}

// Retrieve returns the store with its enabled currencies.
func (s *StoreService) Retrieve(ctx context.Context) (*store.Store, error) {
	if st, ok := s.cache.Get(ctx); ok {
		return st, nil
	}

	gen, cacheable := s.cache.Generation(ctx)

	st, err := s.stores.GetStore(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errStoreNotFound()
		}
		return nil, fmt.Errorf("retrieving store: %w", err)
	}

	if cacheable {
		s.cache.Set(ctx, st, gen)
	}
	return st, nil
}

// lockStore loads the store row FOR UPDATE so concurrent currency changes
// serialize on it.
func (s *StoreService) lockStore(ctx context.Context) (*store.Store, error) {
	st, err := s.stores.GetStoreForUpdate(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errStoreNotFound()
		}
		return nil, fmt.Errorf("locking store: %w", err)
	}
	return st, nil
}

// AddCurrency enables code on the store and returns the updated store.
// Enabling a currency that is already enabled changes nothing.
func (s *StoreService) AddCurrency(ctx context.Context, code string) (*store.Store, error) {
	code = store.NormalizeCode(code)

	st, err := s.lockStore(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.currencies.GetCurrency(ctx, code); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NewConflictError(
				fmt.Sprintf("Currency %s is not available in the currency catalog", code),
				true,
				errs.Code("CURRENCY_NOT_IN_CATALOG"),
			)
		}
		return nil, fmt.Errorf("looking up currency %s: %w", code, err)
	}

	if st.HasCurrency(code) {
		zerolog.Ctx(ctx).Debug().Str("currency", code).Msg("currency already enabled")
		return st, nil
	}

	if _, err := s.stores.AddCurrency(ctx, st.ID, code); err != nil {
		return nil, fmt.Errorf("adding currency %s: %w", code, err)
	}

	return s.reload(ctx)
}

// RemoveCurrency disables code on the store. The default currency cannot be
// removed; removing a currency that is not enabled changes nothing.
func (s *StoreService) RemoveCurrency(ctx context.Context, code string) (*store.Store, error) {
	code = store.NormalizeCode(code)

	st, err := s.lockStore(ctx)
	if err != nil {
		return nil, err
	}

	if st.DefaultCurrencyCode == code {
		return nil, errs.NewConflictError(
			"The default currency cannot be removed from the store",
			true,
			errs.Code("DEFAULT_CURRENCY_REQUIRED"),
		)
	}

	if !st.HasCurrency(code) {
		return st, nil
	}

	if _, err := s.stores.RemoveCurrency(ctx, st.ID, code); err != nil {
		return nil, fmt.Errorf("removing currency %s: %w", code, err)
	}

	return s.reload(ctx)
}

func (s *StoreService) reload(ctx context.Context) (*store.Store, error) {
	st, err := s.stores.GetStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("reloading store: %w", err)
	}
	return st, nil
}

// InvalidateCache drops the cached store. Call it after the transaction that
// changed the store has committed.
func (s *StoreService) InvalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("store cache invalidation failed")
	}
}
