// Package memory implementa el Store en memoria, protegido por mutex.
// Mismo contrato que el adapter postgres; pensado para desarrollo y tests.
// Nada sobrevive al reinicio del proceso.
package memory

import (
	"context"

	"github.com/dropDatabas3/prism/internal/domain/repository"
	"github.com/dropDatabas3/prism/internal/store"
)

func init() {
	store.Register("memory", func(_ context.Context, _ store.Config) (store.Store, error) {
		return New(), nil
	})
}

// Store es el backend en memoria.
type Store struct {
	content *contentRepo
	tokens  *tokenRepo
	roles   *roleRepo
}

// New crea un Store vacío.
func New() *Store {
	return &Store{
		content: newContentRepo(),
		tokens:  newTokenRepo(),
		roles:   newRoleRepo(),
	}
}

func (s *Store) Content() repository.ContentRepository       { return s.content }
func (s *Store) Tokens() repository.SecurityTokenRepository  { return s.tokens }
func (s *Store) Roles() repository.RoleRepository            { return s.roles }
func (s *Store) Ping(context.Context) error                  { return nil }
func (s *Store) Close() error                                { return nil }
