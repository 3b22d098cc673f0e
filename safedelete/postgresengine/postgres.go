package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/softdelete-go/safedelete"
	"github.com/AntonStoeckl/softdelete-go/safedelete/postgresengine/internal/adapters"
)

const (
	dialectPostgres  = "postgres"
	aliasVisibleRows = "visible_rows"
	defaultIDColumn  = "id"
)

// Record is one fetched row keyed by column name.
type Record map[string]any

// Records is an alias type for a slice of Record.
type Records = []Record

// IsDeleted reports whether the deleted-marker column of the record holds a value.
func (r Record) IsDeleted(fieldName string) bool {
	return r[fieldName] != nil
}

// Store executes safedelete.Query values against one PostgreSQL table
// and soft-deletes, hard-deletes, and undeletes its rows.
type Store struct {
	db               adapters.DBAdapter
	tableName        string
	columns          []string
	config           safedelete.Config
	clock            func() time.Time
	logger           safedelete.Logger
	contextualLogger safedelete.ContextualLogger
	metricsCollector safedelete.MetricsCollector
	tracingCollector safedelete.TracingCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, tableName string, options ...Option) (*Store, error) {
	if db == nil {
		return nil, safedelete.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), tableName, options...)
}

// NewStoreFromPGXPoolAndReplica creates a new Store that writes to db and reads from replica
// when the context carries safedelete.EventualConsistency.
func NewStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, tableName string, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, safedelete.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), tableName, options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, tableName string, options ...Option) (*Store, error) {
	if db == nil {
		return nil, safedelete.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), tableName, options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, tableName string, options ...Option) (*Store, error) {
	if db == nil {
		return nil, safedelete.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), tableName, options...)
}

func newStore(db adapters.DBAdapter, tableName string, options ...Option) (*Store, error) {
	if tableName == "" {
		return nil, safedelete.ErrEmptyTableName
	}

	s := &Store{
		db:        db,
		tableName: tableName,
		config:    safedelete.DefaultConfig(),
		clock:     time.Now,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	if len(s.columns) == 0 {
		s.columns = []string{defaultIDColumn, columnName(s.config.FieldName)}
	}

	return s, nil
}

// Config returns the safedelete.Config the Store builds its queries with.
func (s *Store) Config() safedelete.Config {
	return s.config
}

// All returns a query over the table with the configured default visibility.
func (s *Store) All() *safedelete.Query {
	return s.QueryWithVisibility(s.config.DefaultVisibility)
}

// AllWithDeleted returns a query that includes soft-deleted rows.
func (s *Store) AllWithDeleted() *safedelete.Query {
	return s.QueryWithVisibility(safedelete.DeletedVisible)
}

// DeletedOnly returns a query that selects only soft-deleted rows.
func (s *Store) DeletedOnly() *safedelete.Query {
	return s.QueryWithVisibility(safedelete.DeletedOnlyVisible)
}

// QueryWithVisibility returns a query over the table with the given visibility.
func (s *Store) QueryWithVisibility(visibility safedelete.Visibility) *safedelete.Query {
	columns := make([]any, len(s.columns))
	for i, column := range s.columns {
		columns[i] = column
	}

	dataset := goqu.Dialect(dialectPostgres).From(s.tableName).Select(columns...)

	return safedelete.NewQuery(dataset, visibility, s.config)
}

// Fetch runs the query and returns its rows.
// The visibility predicate is added while the query is compiled.
func (s *Store) Fetch(ctx context.Context, q *safedelete.Query) (Records, error) {
	ctx, span := s.startOperationSpan(ctx, operationFetch, q)

	sqlQuery, args, buildErr := q.ToSQL()
	if buildErr != nil {
		return nil, s.failBuild(ctx, span, operationFetch, buildErr)
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery, args...)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, operationFetch, duration)

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		s.failOperation(ctx, span, operationFetch, errorTypeDatabaseQuery, duration)

		return nil, errors.Join(safedelete.ErrQueryingFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	records, scanErr := s.scanRecords(ctx, rows)
	if scanErr != nil {
		s.failOperation(ctx, span, operationFetch, errorTypeRowScan, time.Since(start))

		return nil, scanErr
	}

	duration = time.Since(start)
	s.logOperation(
		ctx,
		logMsgFetchCompleted,
		logAttrRowCount, len(records),
		logAttrVisibility, q.EffectiveVisibility().String(),
		logAttrDurationMS, toMilliseconds(duration),
	)
	s.succeedOperation(ctx, span, operationFetch, int64(len(records)), duration)

	return records, nil
}

// scanRecords converts database rows into Records.
func (s *Store) scanRecords(ctx context.Context, rows adapters.DBRows) (Records, error) {
	columns, columnsErr := rows.Columns()
	if columnsErr != nil {
		s.logError(ctx, logMsgScanRowFailed, columnsErr)

		return nil, errors.Join(safedelete.ErrScanningDBRowFailed, columnsErr)
	}

	records := make(Records, 0)

	for rows.Next() {
		values := make([]any, len(columns))
		destinations := make([]any, len(columns))

		for i := range values {
			destinations[i] = &values[i]
		}

		if scanErr := rows.Scan(destinations...); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)

			return nil, errors.Join(safedelete.ErrScanningDBRowFailed, scanErr)
		}

		record := make(Record, len(columns))
		for i, column := range columns {
			record[column] = values[i]
		}

		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		s.logError(ctx, logMsgScanRowFailed, rowsErr)

		return nil, errors.Join(safedelete.ErrScanningDBRowFailed, rowsErr)
	}

	return records, nil
}

// Count returns the number of rows the query selects, limits included.
func (s *Store) Count(ctx context.Context, q *safedelete.Query) (int64, error) {
	ctx, span := s.startOperationSpan(ctx, operationCount, q)

	countStmt := goqu.Dialect(dialectPostgres).
		From(q.Compiler().As(aliasVisibleRows)).
		Select(goqu.COUNT(goqu.Star()))

	sqlQuery, args, buildErr := countStmt.ToSQL()
	if buildErr != nil {
		return 0, s.failBuild(ctx, span, operationCount, buildErr)
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery, args...)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, operationCount, duration)

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		s.failOperation(ctx, span, operationCount, errorTypeDatabaseQuery, duration)

		return 0, errors.Join(safedelete.ErrQueryingFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	var count int64

	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			s.failOperation(ctx, span, operationCount, errorTypeRowScan, duration)

			return 0, errors.Join(safedelete.ErrScanningDBRowFailed, scanErr)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		s.logError(ctx, logMsgScanRowFailed, rowsErr)
		s.failOperation(ctx, span, operationCount, errorTypeRowScan, duration)

		return 0, errors.Join(safedelete.ErrScanningDBRowFailed, rowsErr)
	}

	duration = time.Since(start)
	s.logOperation(
		ctx,
		logMsgCountCompleted,
		logAttrRowCount, count,
		logAttrVisibility, q.EffectiveVisibility().String(),
		logAttrDurationMS, toMilliseconds(duration),
	)
	s.succeedOperation(ctx, span, operationCount, count, duration)

	return count, nil
}

// Delete removes the rows the query selects according to the configured delete policy:
// SoftDelete stamps the deleted marker on rows that are not deleted yet,
// HardDelete removes them, NoDelete refuses with safedelete.ErrDeleteNotAllowed.
func (s *Store) Delete(ctx context.Context, q *safedelete.Query) (int64, error) {
	switch s.config.DeletePolicy {
	case safedelete.HardDelete:
		return s.HardDelete(ctx, q)

	case safedelete.NoDelete:
		s.logWarn(ctx, logMsgDeleteRefused, logAttrTable, s.tableName, logAttrPolicy, s.config.DeletePolicy.String())

		return 0, safedelete.ErrDeleteNotAllowed

	default:
		return s.softDelete(ctx, q)
	}
}

func (s *Store) softDelete(ctx context.Context, q *safedelete.Query) (int64, error) {
	ctx, span := s.startOperationSpan(ctx, operationSoftDelete, q)

	if !q.CanFilter() {
		s.failOperation(ctx, span, operationSoftDelete, errorTypeLimitedQuery, 0)

		return 0, safedelete.ErrLimitedQuery
	}

	conditions := s.conditionsOf(q)

	if !(q.FilterApplied() && q.EffectiveVisibility().ExcludesDeleted()) {
		conditions = append(conditions, goqu.I(s.config.FieldName).IsNull())
	}

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(s.tableName).
		Set(goqu.Record{columnName(s.config.FieldName): s.clock()}).
		Where(conditions...)

	sqlQuery, args, buildErr := updateStmt.ToSQL()
	if buildErr != nil {
		return 0, s.failBuild(ctx, span, operationSoftDelete, buildErr)
	}

	return s.executeWrite(ctx, span, operationSoftDelete, sqlQuery, args)
}

// HardDelete physically removes the rows the query selects, regardless of the delete policy.
func (s *Store) HardDelete(ctx context.Context, q *safedelete.Query) (int64, error) {
	ctx, span := s.startOperationSpan(ctx, operationHardDelete, q)

	if !q.CanFilter() {
		s.failOperation(ctx, span, operationHardDelete, errorTypeLimitedQuery, 0)

		return 0, safedelete.ErrLimitedQuery
	}

	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(s.tableName).
		Where(s.conditionsOf(q)...)

	sqlQuery, args, buildErr := deleteStmt.ToSQL()
	if buildErr != nil {
		return 0, s.failBuild(ctx, span, operationHardDelete, buildErr)
	}

	return s.executeWrite(ctx, span, operationHardDelete, sqlQuery, args)
}

// Undelete clears the deleted marker of the soft-deleted rows the query selects.
// The query must be able to see deleted rows, e.g. built with AllWithDeleted or DeletedOnly.
func (s *Store) Undelete(ctx context.Context, q *safedelete.Query) (int64, error) {
	ctx, span := s.startOperationSpan(ctx, operationUndelete, q)

	if q.EffectiveVisibility().ExcludesDeleted() {
		s.failOperation(ctx, span, operationUndelete, errorTypeInvisibleQuery, 0)

		return 0, safedelete.ErrUndeleteInvisibleQuery
	}

	if !q.CanFilter() {
		s.failOperation(ctx, span, operationUndelete, errorTypeLimitedQuery, 0)

		return 0, safedelete.ErrLimitedQuery
	}

	conditions := s.conditionsOf(q)

	if !(q.FilterApplied() && q.EffectiveVisibility() == safedelete.DeletedOnlyVisible) {
		conditions = append(conditions, goqu.I(s.config.FieldName).IsNotNull())
	}

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(s.tableName).
		Set(goqu.Record{columnName(s.config.FieldName): nil}).
		Where(conditions...)

	sqlQuery, args, buildErr := updateStmt.ToSQL()
	if buildErr != nil {
		return 0, s.failBuild(ctx, span, operationUndelete, buildErr)
	}

	return s.executeWrite(ctx, span, operationUndelete, sqlQuery, args)
}

// conditionsOf compiles the query (adding the visibility predicate if due) and returns its WHERE expressions.
func (s *Store) conditionsOf(q *safedelete.Query) []exp.Expression {
	conditions := make([]exp.Expression, 0, 2)

	if where := q.Conditions(); where != nil && !where.IsEmpty() {
		conditions = append(conditions, where)
	}

	return conditions
}

// executeWrite runs an UPDATE or DELETE and returns the number of rows affected.
func (s *Store) executeWrite(
	ctx context.Context,
	span safedelete.SpanContext,
	operation string,
	sqlQuery string,
	args []any,
) (int64, error) {

	start := time.Now()
	result, execErr := s.db.Exec(ctx, sqlQuery, args...)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, operation, duration)

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		s.failOperation(ctx, span, operation, errorTypeDatabaseExec, duration)

		return 0, errors.Join(safedelete.ErrExecFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		s.failOperation(ctx, span, operation, errorTypeRowsAffected, duration)

		return 0, errors.Join(safedelete.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	s.logOperation(
		ctx,
		operation,
		logAttrTable, s.tableName,
		logAttrRowsAffected, rowsAffected,
		logAttrDurationMS, toMilliseconds(duration),
	)
	s.succeedOperation(ctx, span, operation, rowsAffected, duration)

	return rowsAffected, nil
}

// failBuild logs and records a statement that could not be generated.
func (s *Store) failBuild(ctx context.Context, span safedelete.SpanContext, operation string, buildErr error) error {
	s.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrOperation, operation)
	s.failOperation(ctx, span, operation, errorTypeBuildQuery, 0)

	return errors.Join(safedelete.ErrBuildingQueryFailed, buildErr)
}

// closeRows closes database rows and logs any errors.
func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// columnName strips a table qualifier, SET clauses only take bare column names.
func columnName(fieldName string) string {
	if i := strings.LastIndex(fieldName, "."); i >= 0 {
		return fieldName[i+1:]
	}

	return fieldName
}
