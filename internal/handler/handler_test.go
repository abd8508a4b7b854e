package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/deppfellow/commerce-admin/internal/config"
	"github.com/deppfellow/commerce-admin/internal/errs"
	"github.com/deppfellow/commerce-admin/internal/middleware"
	"github.com/deppfellow/commerce-admin/internal/model/store"
	"github.com/deppfellow/commerce-admin/internal/repository"
	"github.com/deppfellow/commerce-admin/internal/repository/repositorytest"
	"github.com/deppfellow/commerce-admin/internal/server"
	"github.com/deppfellow/commerce-admin/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeJobs struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeJobs) EnqueueWelcomeEmail(_ context.Context, to, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type testEnv struct {
	e    *echo.Echo
	db   *repositorytest.DB
	tx   *repositorytest.TxManager
	jobs *fakeJobs
}

// failingReloadStore fails every GetStore, so a currency change fails after
// its write.
type failingReloadStore struct {
	repository.StoreRepository
}

func (r failingReloadStore) WithTx(pgx.Tx) repository.StoreRepository {
	return r
}

func (failingReloadStore) GetStore(context.Context) (*store.Store, error) {
	return nil, errors.New("connection reset")
}

func newTestEnv(t *testing.T, overrides ...func(*repository.Repositories)) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	s := &server.Server{Config: &config.Config{}, Logger: &logger}

	db := repositorytest.NewDB()
	tx := &repositorytest.TxManager{DB: db}
	jobs := &fakeJobs{}
	repos := db.Repositories()
	for _, override := range overrides {
		override(repos)
	}

	stores := NewStoreHandler(s, tx, service.NewStoreService(repos, service.NewStoreCache(nil, 60)))
	users := NewUserHandler(s, tx, service.NewUserService(repos, bcrypt.MinCost), jobs)

	e := echo.New()
	e.HTTPErrorHandler = middleware.NewGlobalMiddlewares(s).GlobalErrorHandler
	e.GET("/admin/store", Handle(stores.GetStore, http.StatusOK))
	e.POST("/admin/store/currencies/:code", Handle(stores.AddCurrency, http.StatusOK))
	e.DELETE("/admin/store/currencies/:code", Handle(stores.RemoveCurrency, http.StatusOK))
	e.GET("/admin/users", Handle(users.ListUsers, http.StatusOK))
	e.POST("/admin/users", Handle(users.CreateUser, http.StatusOK))
	e.GET("/admin/users/:id", Handle(users.GetUser, http.StatusOK))

	return &testEnv{e: e, db: db, tx: tx, jobs: jobs}
}

func (env *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	if body == "" {
		return env.send(httptest.NewRequest(method, path, nil))
	}
	return env.doWithType(method, path, body, echo.MIMEApplicationJSON)
}

func (env *testEnv) doWithType(method, path, body, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, contentType)
	return env.send(req)
}

func (env *testEnv) send(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func currencyCodes(st *store.Store) []string {
	codes := make([]string, 0, len(st.Currencies))
	for _, c := range st.Currencies {
		codes = append(codes, c.Code)
	}
	return codes
}

// ------------------------------------------------------------

func TestAddCurrency(t *testing.T) {
	env := newTestEnv(t)
	env.db.SeedStore("usd")

	rec := env.do(http.MethodPost, "/admin/store/currencies/EUR", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[store.StoreResponse](t, rec)
	require.NotNil(t, res.Store)
	assert.ElementsMatch(t, []string{"usd", "eur"}, currencyCodes(res.Store))
	assert.Equal(t, 1, env.tx.Calls())
}

func TestAddCurrencyTwiceKeepsOneEntry(t *testing.T) {
	env := newTestEnv(t)
	env.db.SeedStore("usd")

	first := env.do(http.MethodPost, "/admin/store/currencies/eur", "")
	second := env.do(http.MethodPost, "/admin/store/currencies/eur", "")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	res := decode[store.StoreResponse](t, second)
	assert.ElementsMatch(t, []string{"usd", "eur"}, currencyCodes(res.Store))
	assert.Equal(t, 1, env.db.StoreWrites())
}

func TestAddCurrencyUsesPathCodeOnly(t *testing.T) {
	env := newTestEnv(t)
	env.db.SeedStore("usd")

	rec := env.do(http.MethodPost, "/admin/store/currencies/eur", `{"code":"dkk"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.ElementsMatch(t, []string{"usd", "eur"}, currencyCodes(decode[store.StoreResponse](t, rec).Store))

	rec = env.doWithType(http.MethodPost, "/admin/store/currencies/dkk", "ignored", echo.MIMETextPlain)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.ElementsMatch(t, []string{"usd", "eur", "dkk"}, currencyCodes(decode[store.StoreResponse](t, rec).Store))

	rec = env.doWithType(http.MethodDelete, "/admin/store/currencies/dkk", `{"code":"usd"}`, echo.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.ElementsMatch(t, []string{"usd", "eur"}, currencyCodes(decode[store.StoreResponse](t, rec).Store))
}

func TestAddCurrencyRollsBackWhenReloadFails(t *testing.T) {
	env := newTestEnv(t, func(repos *repository.Repositories) {
		repos.Store = failingReloadStore{StoreRepository: repos.Store}
	})
	env.db.SeedStore("usd")

	rec := env.do(http.MethodPost, "/admin/store/currencies/eur", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Zero(t, env.db.StoreWrites())
	assert.Equal(t, []string{"usd"}, currencyCodes(env.db.Store()))
	assert.Equal(t, 1, env.tx.Calls())
}

func TestAddCurrencyWithoutStore(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/admin/store/currencies/eur", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "STORE_NOT_FOUND", decode[errs.HTTPError](t, rec).Code)
	assert.Zero(t, env.db.StoreWrites())
}

func TestAddCurrencyInputErrors(t *testing.T) {
	env := newTestEnv(t)
	env.db.SeedStore("usd")

	cases := map[string]int{
		"/admin/store/currencies/eu":   http.StatusBadRequest,
		"/admin/store/currencies/e1r":  http.StatusBadRequest,
		"/admin/store/currencies/qqq":  http.StatusBadRequest,
		"/admin/store/currencies/jpy":  http.StatusConflict,
		"/admin/store/currencies/euro": http.StatusBadRequest,
	}

	for path, status := range cases {
		rec := env.do(http.MethodPost, path, "")
		assert.Equal(t, status, rec.Code, path)
	}
	assert.Zero(t, env.db.StoreWrites())
}

func TestRemoveCurrency(t *testing.T) {
	env := newTestEnv(t)
	env.db.SeedStore("usd")

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/admin/store/currencies/dkk", "").Code)

	rec := env.do(http.MethodDelete, "/admin/store/currencies/dkk", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"usd"}, currencyCodes(decode[store.StoreResponse](t, rec).Store))

	rec = env.do(http.MethodDelete, "/admin/store/currencies/usd", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetStore(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/admin/store", "").Code)

	seeded := env.db.SeedStore("usd")
	rec := env.do(http.MethodGet, "/admin/store", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, seeded.ID, decode[store.StoreResponse](t, rec).Store.ID)
}

// ------------------------------------------------------------

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/admin/users",
		`{"email":"ada@example.com","first_name":"Ada","role":"admin","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[map[string]map[string]any](t, rec)
	u := body["user"]
	require.NotNil(t, u)
	assert.Equal(t, "ada@example.com", u["email"])
	assert.Equal(t, "Ada", u["first_name"])
	assert.Equal(t, "admin", u["role"])
	assert.NotEmpty(t, u["id"])
	assert.NotContains(t, u, "password")
	assert.NotContains(t, u, "password_hash")
	assert.NotContains(t, u, "api_token")
	assert.NotContains(t, rec.Body.String(), "s3cret")

	stored := env.db.Users()
	require.Len(t, stored, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored[0].PasswordHash), []byte("s3cret")))

	assert.Equal(t, []string{"ada@example.com"}, env.jobs.sent)
	assert.Equal(t, 1, env.tx.Calls())
}

func TestCreateUserDefaultsRole(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/admin/users", `{"email":"bob@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "member", decode[map[string]map[string]any](t, rec)["user"]["role"])
}

func TestCreateUserRejectsInvalidInputBeforePersistence(t *testing.T) {
	bodies := []string{
		`{"email":"not-an-email","password":"pw"}`,
		`{"password":"pw"}`,
		`{"email":"ada@example.com"}`,
		`{"email":"ada@example.com","password":""}`,
		`{"email":"ada@example.com","password":"pw","role":"owner"}`,
		`{"email":`,
	}

	for _, body := range bodies {
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/admin/users", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Zero(t, env.db.UserWrites(), body)
		assert.Zero(t, env.tx.Calls(), body)
		assert.Empty(t, env.jobs.sent, body)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/admin/users", `{"email":"ada@example.com","password":"pw"}`).Code)
	rec := env.do(http.MethodPost, "/admin/users", `{"email":"ADA@example.com","password":"pw"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "USER_ALREADY_EXISTS", decode[errs.HTTPError](t, rec).Code)
	assert.Equal(t, 1, env.db.UserWrites())
}

func TestCreateUserSucceedsWhenEnqueueFails(t *testing.T) {
	env := newTestEnv(t)
	env.jobs.err = errors.New("redis unavailable")

	rec := env.do(http.MethodPost, "/admin/users", `{"email":"ada@example.com","password":"pw"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.db.UserWrites())
}

func TestGetAndListUsers(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/admin/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"users":[]}`, rec.Body.String())

	created := env.do(http.MethodPost, "/admin/users", `{"email":"ada@example.com","password":"pw"}`)
	id := decode[map[string]map[string]any](t, created)["user"]["id"].(string)

	rec = env.do(http.MethodGet, "/admin/users/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password_hash")

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/admin/users/not-a-uuid", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/admin/users/6f1c3c8e-8a4e-4d8e-9a53-2b7c1e0f5d11", "").Code)
}

// ------------------------------------------------------------

type namePayload struct {
	Name string `query:"name"`
}

func (p *namePayload) Validate() error { return nil }

func TestHandleAllocatesPayloadPerRequest(t *testing.T) {
	var seen []*namePayload
	h := Handle(func(c echo.Context, p *namePayload) (string, error) {
		seen = append(seen, p)
		return p.Name, nil
	}, http.StatusOK)

	e := echo.New()
	for _, q := range []string{"/?name=a", "/"} {
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, q, nil), rec)))
	}

	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1])
	assert.Equal(t, "", seen[1].Name)
}

type valuePayload struct{}

func (valuePayload) Validate() error { return nil }

func TestHandleRejectsNonPointerPayload(t *testing.T) {
	assert.Panics(t, func() {
		Handle(func(c echo.Context, p valuePayload) (string, error) { return "", nil }, http.StatusOK)
	})
}
