// Package store models the shop-wide configuration aggregate and the
// currency catalog it draws from.
package store

import (
	"slices"

	"github.com/deppfellow/commerce-admin/internal/model"
)

// Currency is a catalog entry. Currencies are seeded by migrations; the API
// only enables or disables them on the store.
type Currency struct {
	Code         string `json:"code" db:"code"`
	Symbol       string `json:"symbol" db:"symbol"`
	SymbolNative string `json:"symbol_native" db:"symbol_native"`
	Name         string `json:"name" db:"name"`
}

// Store is the single store record of the deployment.
type Store struct {
	model.Base
	Name                string     `json:"name" db:"name"`
	DefaultCurrencyCode string     `json:"default_currency_code" db:"default_currency_code"`
	Currencies          []Currency `json:"currencies" db:"-"`
}

// HasCurrency reports whether code is enabled on the store.
func (s *Store) HasCurrency(code string) bool {
	return slices.ContainsFunc(s.Currencies, func(c Currency) bool {
		return c.Code == code
	})
}
