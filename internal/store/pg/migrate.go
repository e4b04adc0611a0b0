package pg

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/prism/internal/observability/logger"
	"github.com/dropDatabas3/prism/migrations"
)

// migrationFilePattern: {version}_{name}.sql
var migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

type migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrate aplica las migraciones embebidas pendientes, en orden de versión.
// Retorna la cantidad aplicada.
func Migrate(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	migs, err := parseMigrations()
	if err != nil {
		return 0, err
	}

	const ensure = `
		CREATE TABLE IF NOT EXISTS schema_migration (
			version    INTEGER     PRIMARY KEY,
			name       TEXT        NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	if _, err := pool.Exec(ctx, ensure); err != nil {
		return 0, fmt.Errorf("pg: create schema_migration: %w", err)
	}

	applied := map[int]bool{}
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migration`)
	if err != nil {
		return 0, fmt.Errorf("pg: read schema_migration: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return 0, err
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	n := 0
	for _, m := range migs {
		if applied[m.Version] {
			continue
		}
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			return n, fmt.Errorf("pg: migration %04d_%s: %w", m.Version, m.Name, err)
		}
		if _, err := pool.Exec(ctx,
			`INSERT INTO schema_migration (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
			return n, fmt.Errorf("pg: record migration %d: %w", m.Version, err)
		}
		logger.L().Info("migration applied",
			logger.Int("version", m.Version), logger.String("name", m.Name))
		n++
	}
	return n, nil
}

func parseMigrations() ([]migration, error) {
	var migs []migration
	err := fs.WalkDir(migrations.PostgresFS, migrations.PostgresDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		matches := migrationFilePattern.FindStringSubmatch(filepath.Base(path))
		if matches == nil {
			return nil
		}
		version, _ := strconv.Atoi(matches[1])
		content, err := migrations.PostgresFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		migs = append(migs, migration{Version: version, Name: matches[2], SQL: string(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	return migs, nil
}
