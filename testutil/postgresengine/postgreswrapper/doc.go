// Package postgreswrapper creates soft-delete stores for integration tests on the adapter
// chosen by the ADAPTER_TYPE environment variable ("pgx.pool" (default), "sql.db" or "sqlx.db")
// and arranges the books table the tests run against.
package postgreswrapper
