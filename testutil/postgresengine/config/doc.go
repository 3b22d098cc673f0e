// Package config provides PostgreSQL connections for the integration tests of the soft-delete store.
//
// It contains factory functions for each supported adapter (pgxpool.Pool, sql.DB, sqlx.DB),
// for a single test database and for a primary/replica pair.
package config
