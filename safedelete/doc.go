// Package safedelete provides soft-delete visibility filtering for goqu select queries.
//
// Rows are soft-deleted by stamping a deleted-marker column (deleted_at by default).
// A Query carries one of four visibility modes and adds the matching predicate
// to its dataset right before the dataset is compiled to SQL or limited:
//
//   - DeletedInvisible: deleted_at IS NULL
//   - DeletedVisible: no predicate
//   - DeletedOnlyVisible: deleted_at IS NOT NULL
//   - DeletedVisibleByField: like DeletedInvisible, until a Filter call names the
//     configured visibility field, then like DeletedVisible
//
// The predicate is added at most once per Query and clones inherit that fact,
// so a Query can be compiled, counted, and limited without stacking predicates.
//
// Common usage pattern:
//
//	cfg := safedelete.DefaultConfig()
//	ds := goqu.Dialect("postgres").From("books").Select("id", "title", "deleted_at")
//
//	q := safedelete.NewQuery(ds, safedelete.DeletedInvisible, cfg).
//		Filter(goqu.Ex{"author": "Le Guin"}).
//		Slice(0, 20)
//
//	sql, _, err := q.ToSQL()
//	// SELECT "id", "title", "deleted_at" FROM "books"
//	// WHERE (("author" = 'Le Guin') AND ("deleted_at" IS NULL)) LIMIT 20
//
// Configuration can be loaded from YAML or JSON with LoadConfig.
// The postgresengine subpackage executes queries and performs soft deletes,
// hard deletes and undeletes against PostgreSQL.
package safedelete
