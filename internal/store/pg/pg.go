// Package pg implementa el Store sobre PostgreSQL usando pgxpool.
// Content e indexer viven en columnas JSONB; los filtros de query se
// traducen a contención (@>) y extracción de paths (#>).
package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/prism/internal/domain/repository"
	"github.com/dropDatabas3/prism/internal/store"
)

func init() {
	store.Register("postgres", func(ctx context.Context, cfg store.Config) (store.Store, error) {
		return Connect(ctx, cfg)
	})
}

// Store es el backend PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Connect abre el pool, lo dimensiona según cfg y verifica conectividad.
func Connect(ctx context.Context, cfg store.Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	} else {
		poolCfg.MinConns = 2
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping failed: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Content() repository.ContentRepository      { return &contentRepo{pool: s.pool} }
func (s *Store) Tokens() repository.SecurityTokenRepository { return &tokenRepo{pool: s.pool} }
func (s *Store) Roles() repository.RoleRepository           { return &roleRepo{pool: s.pool} }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Pool expone el pool crudo para migraciones.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }
