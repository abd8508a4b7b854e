package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/commerce-admin/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	Email     string  `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"omitempty,max=5"`
	Role      string  `json:"role" validate:"omitempty,oneof=admin member"`
}

func (p *signupPayload) Validate() error {
	return Validator().Struct(p)
}

type customPayload struct {
	Code string `param:"code"`
}

func (p *customPayload) Validate() error {
	if p.Code != "eur" {
		return CustomValidationErrors{{Field: "code", Message: "must be eur"}}
	}
	return nil
}

func newContext(method, body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func requireBadRequest(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusBadRequest, httpErr.Status)
	return httpErr
}

func TestBindAndValidateAcceptsValidPayload(t *testing.T) {
	c := newContext(http.MethodPost, `{"email":"user@example.com","role":"admin"}`)
	payload := &signupPayload{}

	require.NoError(t, BindAndValidate(c, payload))
	assert.Equal(t, "user@example.com", payload.Email)
}

func TestBindAndValidateReportsFieldsByWireName(t *testing.T) {
	c := newContext(http.MethodPost, `{"email":"not-an-email","first_name":"Alexander","role":"owner"}`)

	httpErr := requireBadRequest(t, BindAndValidate(c, &signupPayload{}))

	assert.Equal(t, "Validation failed", httpErr.Message)
	assert.ElementsMatch(t, []errs.FieldError{
		{Field: "email", Error: "must be a valid email address"},
		{Field: "first_name", Error: "must not exceed 5 characters"},
		{Field: "role", Error: "must be one of: admin member"},
	}, httpErr.Errors)
}

func TestBindAndValidateRejectsMalformedJSON(t *testing.T) {
	c := newContext(http.MethodPost, `{"email":`)

	httpErr := requireBadRequest(t, BindAndValidate(c, &signupPayload{}))

	assert.Empty(t, httpErr.Errors)
	assert.NotEmpty(t, httpErr.Message)
}

func TestBindAndValidateCustomErrors(t *testing.T) {
	c := newContext(http.MethodPost, "")
	c.SetParamNames("code")
	c.SetParamValues("usd")

	httpErr := requireBadRequest(t, BindAndValidate(c, &customPayload{}))

	assert.Equal(t, []errs.FieldError{{Field: "code", Error: "must be eur"}}, httpErr.Errors)
}


type pathCodePayload struct {
	customPayload
}

func (p *pathCodePayload) BindsPathParamsOnly() {}

func TestBindAndValidatePathParamsOnlyIgnoresBody(t *testing.T) {
	for _, body := range []string{`{"Code":"usd"}`, `{"code":`} {
		c := newContext(http.MethodPost, body)
		c.SetParamNames("code")
		c.SetParamValues("eur")

		payload := &pathCodePayload{}
		require.NoError(t, BindAndValidate(c, payload), body)
		assert.Equal(t, "eur", payload.Code)
	}
}
