// Package postgresengine runs safedelete.Query values against PostgreSQL.
//
// A Store is bound to one table. It hands out queries with the configured visibility
// (All, AllWithDeleted, DeletedOnly), executes them (Fetch, Count) and writes through them
// (Delete, HardDelete, Undelete). Writes reuse the WHERE conditions of the query, so
//
//	store.Delete(ctx, store.All().Filter(goqu.Ex{"author_id": 3}))
//
// stamps the deleted marker on the visible books of author 3 only.
//
// Stores can be created from a pgxpool.Pool (optionally with a read replica), a sql.DB or a sqlx.DB.
// Logging, metrics and tracing are optional and configured with Options.
package postgresengine
