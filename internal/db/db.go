package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mbti-bot/internal/config"
)

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Configuración razonable para ambientes iniciales.
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

// InitSchema crea las tablas de resultados e historial si no existen.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const resultsTable = `
		CREATE TABLE IF NOT EXISTS mbti_results (
			user_id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			result TEXT NOT NULL,
			subtype TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	const historyTable = `
		CREATE TABLE IF NOT EXISTS mbti_history (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			username TEXT NOT NULL,
			result TEXT NOT NULL,
			subtype TEXT NOT NULL,
			scores JSONB NOT NULL,
			at_scores JSONB NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	const historyIndex = `
		CREATE INDEX IF NOT EXISTS mbti_history_user_ts_idx
		ON mbti_history (user_id, timestamp)
	`
	for _, stmt := range []string{resultsTable, historyTable, historyIndex} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
