package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escherba/phraser/internal/config"
)

// ConfigRow is one phrase config: Name identifies where it came from and
// Body holds the config text.
type ConfigRow struct {
	Name string
	Body string
}

type Store struct {
	pool    *pgxpool.Pool
	channel string
}

func New(ctx context.Context, cfg config.Config) (*Store, error) {
	dsn := cfg.DSN()
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Postgres.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Postgres.MaxIdleConns)
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return &Store{pool: pool, channel: cfg.Listener.Channel}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// LoadPhraseConfigs loads every enabled phrase config, ordered by name.
func (s *Store) LoadPhraseConfigs(ctx context.Context) ([]ConfigRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT name, body
		FROM phrase_configs
		WHERE enabled
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query phrase configs: %w", err)
	}
	defer rows.Close()

	var out []ConfigRow
	for rows.Next() {
		var r ConfigRow
		if err := rows.Scan(&r.Name, &r.Body); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Name = "postgres:" + r.Name
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListenChannel() string {
	if s.channel == "" {
		return "phrase_config_change"
	}
	return s.channel
}

func (s *Store) PgxPool() *pgxpool.Pool {
	if s.pool == nil {
		panic(errors.New("pgx pool is nil"))
	}
	return s.pool
}
