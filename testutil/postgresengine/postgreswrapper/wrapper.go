package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/softdelete-go/safedelete/postgresengine"
	"github.com/AntonStoeckl/softdelete-go/testutil/postgresengine/config"
)

// Engine type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

// BooksTable is the table every wrapper store is bound to.
const BooksTable = "books"

const createBooksTable = `CREATE TABLE IF NOT EXISTS books (
	id         BIGINT PRIMARY KEY,
	title      TEXT NOT NULL,
	deleted_at TIMESTAMPTZ NULL
)`

// Wrapper abstracts over the connection types a Store can be created from.
type Wrapper interface {
	Store() *postgresengine.Store
	Exec(ctx context.Context, query string) error
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store *postgresengine.Store
}

func (w *PGXPoolWrapper) Store() *postgresengine.Store {
	return w.store
}

func (w *PGXPoolWrapper) Exec(ctx context.Context, query string) error {
	_, err := w.pool.Exec(ctx, query)
	return err
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db    *sql.DB
	store *postgresengine.Store
}

func (w *SQLDBWrapper) Store() *postgresengine.Store {
	return w.store
}

func (w *SQLDBWrapper) Exec(ctx context.Context, query string) error {
	_, err := w.db.ExecContext(ctx, query)
	return err
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db    *sqlx.DB
	store *postgresengine.Store
}

func (w *SQLXWrapper) Store() *postgresengine.Store {
	return w.store
}

func (w *SQLXWrapper) Exec(ctx context.Context, query string) error {
	_, err := w.db.ExecContext(ctx, query)
	return err
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the wrapper selected by ADAPTER_TYPE, with an empty books table.
// The wrapper is closed when the test ends.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	wrapper := createWrapper(t, options...)
	t.Cleanup(wrapper.Close)

	ctx := context.Background()
	require.NoError(t, wrapper.Exec(ctx, createBooksTable), "error creating the books table")
	require.NoError(t, wrapper.Exec(ctx, "TRUNCATE TABLE books"), "error cleaning up the books table")

	return wrapper
}

func createWrapper(t testing.TB, options ...postgresengine.Option) Wrapper {
	engineTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	switch engineTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolSingleConfig())
		require.NoError(t, err, "error connecting to DB pool in test setup")

		store, err := postgresengine.NewStoreFromPGXPool(connPool, BooksTable, options...)
		require.NoError(t, err, "error creating store")

		return &PGXPoolWrapper{pool: connPool, store: store}

	case typeSQLDB:
		db := config.PostgresSQLDBSingleConfig()

		store, err := postgresengine.NewStoreFromSQLDB(db, BooksTable, options...)
		require.NoError(t, err, "error creating store")

		return &SQLDBWrapper{db: db, store: store}

	case typeSQLXDB:
		db := config.PostgresSQLXSingleConfig()

		store, err := postgresengine.NewStoreFromSQLX(db, BooksTable, options...)
		require.NoError(t, err, "error creating store")

		return &SQLXWrapper{db: db, store: store}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", engineTypeFromEnv))
	}
}

// GivenBook inserts a book row. A non-nil deletedAt makes it a soft-deleted book.
func GivenBook(t testing.TB, wrapper Wrapper, id int64, title string, deletedAt *time.Time) {
	row := goqu.Record{"id": id, "title": title, "deleted_at": nil}
	if deletedAt != nil {
		row["deleted_at"] = *deletedAt
	}

	insertSQL, _, err := goqu.Dialect("postgres").Insert(BooksTable).Rows(row).ToSQL()
	require.NoError(t, err, "error in arranging test data")

	require.NoError(t, wrapper.Exec(context.Background(), insertSQL), "error in arranging test data")
}
