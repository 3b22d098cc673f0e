package safedelete

import (
	"errors"
)

var (
	// ErrInvalidVisibility is returned when a visibility mode is unknown.
	ErrInvalidVisibility = errors.New("invalid visibility mode")

	// ErrInvalidDeletePolicy is returned when a delete policy is unknown.
	ErrInvalidDeletePolicy = errors.New("invalid delete policy")

	// ErrEmptyFieldName is returned when the deleted-marker field name is empty.
	ErrEmptyFieldName = errors.New("deleted marker field name must not be empty")

	// ErrEmptyVisibilityField is returned when the visibility trigger field name is empty.
	ErrEmptyVisibilityField = errors.New("visibility field name must not be empty")

	// ErrUnsupportedConfigFormat is returned when a config file has neither a YAML nor a JSON extension.
	ErrUnsupportedConfigFormat = errors.New("unsupported config file format")

	// ErrReadingConfigFailed is returned when a config file cannot be read.
	ErrReadingConfigFailed = errors.New("reading config failed")

	// ErrDecodingConfigFailed is returned when a config file cannot be decoded.
	ErrDecodingConfigFailed = errors.New("decoding config failed")

	ErrEmptyTableName        = errors.New("empty table name supplied")
	ErrEmptyColumns          = errors.New("at least one column must be selected")
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
	ErrNilClock              = errors.New("clock must not be nil")

	// ErrDeleteNotAllowed is returned when a delete is requested under the NoDelete policy.
	ErrDeleteNotAllowed = errors.New("delete not allowed by policy")

	// ErrUndeleteInvisibleQuery is returned when Undelete gets a query that cannot see deleted rows.
	ErrUndeleteInvisibleQuery = errors.New("undelete needs a query that can see deleted rows")

	// ErrLimitedQuery is returned when a delete or undelete gets a query with a limit or offset.
	ErrLimitedQuery = errors.New("cannot delete or undelete through a limited query")

	ErrBuildingQueryFailed       = errors.New("building query failed")
	ErrQueryingFailed            = errors.New("querying rows failed")
	ErrScanningDBRowFailed       = errors.New("scanning db row failed")
	ErrExecFailed                = errors.New("executing statement failed")
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
)
