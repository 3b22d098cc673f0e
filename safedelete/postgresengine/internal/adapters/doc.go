// Package adapters provide database adapter implementations for the PostgreSQL soft-delete store.
//
// Three client libraries are supported: pgxpool.Pool, sql.DB, and sqlx.DB.
// All of them are exposed through the DBAdapter interface so that the store
// builds and runs its statements the same way regardless of the connection type.
package adapters
