// Package store define el contrato de persistencia del engine y la factory
// que selecciona el backend según configuración (postgres o memoria).
package store

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/prism/internal/domain/repository"
)

// Store agrupa los repositorios que expone un backend.
type Store interface {
	Content() repository.ContentRepository
	Tokens() repository.SecurityTokenRepository
	Roles() repository.RoleRepository

	// Ping verifica que el backend esté accesible.
	Ping(ctx context.Context) error

	// Close libera recursos (pool de conexiones, etc).
	Close() error
}

// Config parametriza la apertura de un Store.
type Config struct {
	// Driver: "postgres" | "memory".
	Driver string
	// DSN es la cadena de conexión (solo postgres).
	DSN string
	// MaxConns / MinConns dimensionan el pool (solo postgres).
	MaxConns int
	MinConns int
}

// opener abre un Store concreto. Los adapters se registran en init().
type opener func(ctx context.Context, cfg Config) (Store, error)

var openers = map[string]opener{}

// Register registra un adapter bajo un nombre de driver. Panic en duplicados:
// es un error de programación, no de runtime.
func Register(driver string, fn opener) {
	if _, dup := openers[driver]; dup {
		panic("store: duplicate driver " + driver)
	}
	openers[driver] = fn
}

// Open abre el Store indicado por cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	fn, ok := openers[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
	return fn(ctx, cfg)
}
