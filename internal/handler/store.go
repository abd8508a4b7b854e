package handler

import (
	"context"

	"github.com/deppfellow/commerce-admin/internal/database"
	"github.com/deppfellow/commerce-admin/internal/model/store"
	"github.com/deppfellow/commerce-admin/internal/server"
	"github.com/deppfellow/commerce-admin/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

type StoreHandler struct {
	Handler
	tx     database.TxManager
	stores *service.StoreService
}

func NewStoreHandler(s *server.Server, tx database.TxManager, stores *service.StoreService) *StoreHandler {
	return &StoreHandler{
		Handler: NewHandler(s),
		tx:      tx,
		stores:  stores,
	}
}

func (h *StoreHandler) GetStore(c echo.Context, _ *store.GetStorePayload) (*store.StoreResponse, error) {
	st, err := h.stores.Retrieve(c.Request().Context())
	if err != nil {
		return nil, err
	}
	return &store.StoreResponse{Store: st}, nil
}

// AddCurrency enables the {code} currency on the store.
func (h *StoreHandler) AddCurrency(c echo.Context, payload *store.AddCurrencyPayload) (*store.StoreResponse, error) {
	return h.mutate(c, func(ctx context.Context, stores *service.StoreService) (*store.Store, error) {
		return stores.AddCurrency(ctx, payload.Code)
	})
}

// RemoveCurrency disables the {code} currency on the store.
func (h *StoreHandler) RemoveCurrency(c echo.Context, payload *store.RemoveCurrencyPayload) (*store.StoreResponse, error) {
	return h.mutate(c, func(ctx context.Context, stores *service.StoreService) (*store.Store, error) {
		return stores.RemoveCurrency(ctx, payload.Code)
	})
}

// mutate runs op in one transaction and drops the cached store once it has
// committed.
func (h *StoreHandler) mutate(
	c echo.Context,
	op func(ctx context.Context, stores *service.StoreService) (*store.Store, error),
) (*store.StoreResponse, error) {
	ctx := c.Request().Context()

	var updated *store.Store
	err := h.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		updated, err = op(ctx, h.stores.WithTx(tx))
		return err
	})
	if err != nil {
		return nil, err
	}

	h.stores.InvalidateCache(ctx)

	return &store.StoreResponse{Store: updated}, nil
}
