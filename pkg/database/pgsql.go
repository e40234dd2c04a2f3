package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationName tags the ledger's sessions in pg_stat_activity unless the
// URL already names one.
const ApplicationName = "consignment_backend"

// LedgerPoolConfig parses the consignment ledger's database URL.
func LedgerPoolConfig(databaseURL string) (*pgxpool.Config, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("consignment ledger database URL is not set")
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid consignment ledger database URL: %w", err)
	}
	if config.ConnConfig.RuntimeParams["application_name"] == "" {
		config.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	}
	return config, nil
}

// NewPgxPool opens the pool backing the settlement, credit, cash and register
// ledgers and pings it once.
func NewPgxPool(ctx context.Context, databaseURL string, logger *slog.Logger) (*pgxpool.Pool, error) {
	config, err := LedgerPoolConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open consignment ledger pool: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("consignment ledger database unreachable: %w", err)
	}

	logger.Info("Consignment ledger database connected",
		slog.String("database", config.ConnConfig.Database),
		slog.String("application_name", config.ConnConfig.RuntimeParams["application_name"]),
		slog.Int("max_conns", int(config.MaxConns)))
	return pool, nil
}

// ClosePgxPool drains the ledger pool on shutdown.
func ClosePgxPool(pool *pgxpool.Pool, logger *slog.Logger) {
	if pool == nil {
		return
	}
	pool.Close()
	logger.Info("Consignment ledger database pool closed")
}
