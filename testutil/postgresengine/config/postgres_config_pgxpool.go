package config

import (
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPGXPoolSingleConfig creates a pgxpool.Config for the test database.
func PostgresPGXPoolSingleConfig() *pgxpool.Config {
	return pgxPoolConfig(PostgresSingleDSN(), 20)
}

// PostgresPGXPoolPrimaryConfig creates a pgxpool.Config for the primary node.
func PostgresPGXPoolPrimaryConfig() *pgxpool.Config {
	return pgxPoolConfig(PostgresPrimaryDSN(), 20)
}

// PostgresPGXPoolReplicaConfig creates a pgxpool.Config for the replica node.
func PostgresPGXPoolReplicaConfig() *pgxpool.Config {
	return pgxPoolConfig(PostgresReplicaDSN(), 20)
}

func pgxPoolConfig(dsn string, maxConns int32) *pgxpool.Config {
	const defaultMinConnections = int32(2)
	const defaultMaxConnLifetime = time.Hour
	const defaultMaxConnIdleTime = time.Minute * 5
	const defaultHealthCheckPeriod = time.Minute
	const defaultConnectTimeout = time.Second * 5

	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatal("Failed to create a config, error: ", err)
	}

	dbConfig.MaxConns = maxConns
	dbConfig.MinConns = defaultMinConnections
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	return dbConfig
}
