// Package repositorytest provides in-memory repositories and a transaction
// manager for tests that exercise services and handlers without Postgres.
//
// The fakes keep Postgres' observable contract: missing rows come back as
// wrapped pgx.ErrNoRows, duplicate emails fail with a unique violation, and
// store currencies behave as a set.
package repositorytest

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/deppfellow/commerce-admin/internal/database"
	"github.com/deppfellow/commerce-admin/internal/model"
	"github.com/deppfellow/commerce-admin/internal/model/store"
	"github.com/deppfellow/commerce-admin/internal/model/user"
	"github.com/deppfellow/commerce-admin/internal/repository"
	"github.com/deppfellow/commerce-admin/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the shared in-memory state behind the fake repositories.
type DB struct {
	mu          sync.Mutex
	store       *store.Store
	catalog     map[string]store.Currency
	users       []user.User
	storeWrites int
	userWrites  int
}

// NewDB returns a catalog seeded with usd, eur and dkk and no store.
func NewDB() *DB {
	return &DB{
		catalog: map[string]store.Currency{
			"usd": {Code: "usd", Symbol: "$", SymbolNative: "$", Name: "US Dollar"},
			"eur": {Code: "eur", Symbol: "€", SymbolNative: "€", Name: "Euro"},
			"dkk": {Code: "dkk", Symbol: "Dkr", SymbolNative: "kr", Name: "Danish Krone"},
		},
	}
}

// SeedStore creates the store with the given default currency enabled.
func (db *DB) SeedStore(defaultCode string) *store.Store {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now().UTC()
	db.store = &store.Store{
		Base:                model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:                "Commerce Store",
		DefaultCurrencyCode: defaultCode,
		Currencies:          []store.Currency{db.catalog[defaultCode]},
	}
	return cloneStore(db.store)
}

// StoreWrites counts currency rows inserted or deleted.
func (db *DB) StoreWrites() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.storeWrites
}

// UserWrites counts user rows inserted.
func (db *DB) UserWrites() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.userWrites
}

// Users returns a copy of every stored user, password hashes included.
func (db *DB) Users() []user.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	return slices.Clone(db.users)
}

// Repositories returns repository implementations backed by db.
func (db *DB) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Store:    &StoreRepository{db: db},
		Currency: &CurrencyRepository{db: db},
		User:     &UserRepository{db: db},
	}
}

// Store returns a copy of the store, or nil when none was seeded.
func (db *DB) Store() *store.Store {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.store == nil {
		return nil
	}
	return cloneStore(db.store)
}

type state struct {
	store       *store.Store
	users       []user.User
	storeWrites int
	userWrites  int
}

func (db *DB) snapshot() state {
	db.mu.Lock()
	defer db.mu.Unlock()

	st := state{
		users:       slices.Clone(db.users),
		storeWrites: db.storeWrites,
		userWrites:  db.userWrites,
	}
	if db.store != nil {
		st.store = cloneStore(db.store)
	}
	return st
}

func (db *DB) restore(st state) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.store = st.store
	db.users = st.users
	db.storeWrites = st.storeWrites
	db.userWrites = st.userWrites
}

func cloneStore(s *store.Store) *store.Store {
	c := *s
	c.Currencies = slices.Clone(s.Currencies)
	return &c
}

// ------------------------------------------------------------

type StoreRepository struct {
	db *DB
}

func (r *StoreRepository) WithTx(pgx.Tx) repository.StoreRepository {
	return r
}

func (r *StoreRepository) GetStore(context.Context) (*store.Store, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.store == nil {
		return nil, sqlerr.NoRows("stores")
	}
	return cloneStore(r.db.store), nil
}

func (r *StoreRepository) GetStoreForUpdate(ctx context.Context) (*store.Store, error) {
	return r.GetStore(ctx)
}

func (r *StoreRepository) AddCurrency(_ context.Context, storeID uuid.UUID, code string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.store == nil || r.db.store.ID != storeID {
		return false, &pgconn.PgError{Code: "23503", TableName: "store_currencies", ColumnName: "store_id"}
	}
	c, ok := r.db.catalog[code]
	if !ok {
		return false, &pgconn.PgError{Code: "23503", TableName: "store_currencies", ColumnName: "currency_code"}
	}
	if r.db.store.HasCurrency(code) {
		return false, nil
	}

	r.db.store.Currencies = append(r.db.store.Currencies, c)
	r.db.store.UpdatedAt = time.Now().UTC()
	r.db.storeWrites++
	return true, nil
}

func (r *StoreRepository) RemoveCurrency(_ context.Context, storeID uuid.UUID, code string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.store == nil || r.db.store.ID != storeID {
		return false, nil
	}

	before := len(r.db.store.Currencies)
	r.db.store.Currencies = slices.DeleteFunc(r.db.store.Currencies, func(c store.Currency) bool {
		return c.Code == code
	})
	if len(r.db.store.Currencies) == before {
		return false, nil
	}

	r.db.storeWrites++
	return true, nil
}

// ------------------------------------------------------------

type CurrencyRepository struct {
	db *DB
}

func (r *CurrencyRepository) WithTx(pgx.Tx) repository.CurrencyRepository {
	return r
}

func (r *CurrencyRepository) GetCurrency(_ context.Context, code string) (*store.Currency, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.catalog[code]
	if !ok {
		return nil, sqlerr.NoRows("currencies")
	}
	return &c, nil
}

// ------------------------------------------------------------

type UserRepository struct {
	db *DB
}

func (r *UserRepository) WithTx(pgx.Tx) repository.UserRepository {
	return r
}

func (r *UserRepository) CreateUser(_ context.Context, u *user.User) (*user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return nil, &pgconn.PgError{
				Code:           "23505",
				TableName:      "users",
				ConstraintName: "users_email_key",
			}
		}
	}

	created := *u
	now := time.Now().UTC()
	created.ID = uuid.New()
	created.CreatedAt = now
	created.UpdatedAt = now
	r.db.users = append(r.db.users, created)
	r.db.userWrites++

	return &created, nil
}

func (r *UserRepository) find(match func(user.User) bool) (*user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, sqlerr.NoRows("users")
}

func (r *UserRepository) GetUserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.ID == id })
}

func (r *UserRepository) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.Email == email })
}

func (r *UserRepository) GetUserByAPIToken(_ context.Context, token string) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.APIToken != nil && *u.APIToken == token })
}

func (r *UserRepository) ListUsers(context.Context) ([]user.User, error) {
	return r.db.Users(), nil
}

// ------------------------------------------------------------

// TxManager runs units of work without a real transaction and counts them.
// When DB is set, a unit of work that returns an error or panics has its
// writes to DB undone, as a rolled back transaction would.
type TxManager struct {
	DB *DB

	mu    sync.Mutex
	calls int
}

var _ database.TxManager = (*TxManager)(nil)

func (m *TxManager) WithTx(ctx context.Context, fn database.TxFunc) (err error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.DB == nil {
		return fn(ctx, nil)
	}

	saved := m.DB.snapshot()
	defer func() {
		if p := recover(); p != nil {
			m.DB.restore(saved)
			panic(p)
		}
		if err != nil {
			m.DB.restore(saved)
		}
	}()

	return fn(ctx, nil)
}

// Calls reports how many transactions were opened.
func (m *TxManager) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
