// Package helper provides test doubles and arrangement helpers shared by the package tests:
// slog handler, metrics and tracing spies, go-sqlmock backed databases and unique IDs.
package helper
