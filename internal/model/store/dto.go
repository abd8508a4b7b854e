package store

import (
	"strings"

	"github.com/deppfellow/commerce-admin/internal/validation"
	"golang.org/x/text/currency"
)

// ------------------------------------------------------------

// GetStorePayload has no inputs; it exists so GET /admin/store runs through
// the same bind/validate pipeline as every other route.
type GetStorePayload struct{}

func (p *GetStorePayload) Validate() error {
	return nil
}

// ------------------------------------------------------------

// CurrencyCodePayload is the {code} path parameter shared by the add and
// remove currency routes. Any request body is ignored.
type CurrencyCodePayload struct {
	Code string `param:"code" json:"-" validate:"required,len=3,alpha"`
}

func (p *CurrencyCodePayload) BindsPathParamsOnly() {}

// Validate normalizes the code to lowercase and checks it against ISO 4217.
// Whether the store's catalog carries the currency is checked later, inside
// the transaction.
func (p *CurrencyCodePayload) Validate() error {
	p.Code = NormalizeCode(p.Code)

	if err := validation.Validator().Struct(p); err != nil {
		return err
	}

	if _, err := currency.ParseISO(strings.ToUpper(p.Code)); err != nil {
		return validation.CustomValidationErrors{{
			Field:   "code",
			Message: "must be an ISO 4217 currency code",
		}}
	}

	return nil
}

// NormalizeCode lowercases and trims a currency code; codes are stored lowercase.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

type AddCurrencyPayload struct {
	CurrencyCodePayload
}

type RemoveCurrencyPayload struct {
	CurrencyCodePayload
}

// ------------------------------------------------------------

// StoreResponse is the {"store": ...} envelope.
type StoreResponse struct {
	Store *Store `json:"store"`
}
