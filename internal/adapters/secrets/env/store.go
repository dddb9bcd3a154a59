package env

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/ports"
)

var ErrReadOnly = errors.New("environment secret store is read-only")

type lookupFunc func(name string) (string, bool)

// Store reads secrets from environment variables. Keys map to variable names
// through an explicit table; unknown keys fall back to an upper-cased form of
// the key with separators replaced by underscores.
type Store struct {
	lookup lookupFunc
	names  map[string]string
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(names map[string]string) *Store {
	return &Store{lookup: os.LookupEnv, names: names}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := s.variableFor(key)
	value, ok := s.lookup(name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("env secret %q (%s): %w", key, name, domain.ErrSecretNotFound)
	}

	return strings.TrimSpace(value), nil
}

func (s *Store) Put(ctx context.Context, key string, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("env put %q: %w", key, ErrReadOnly)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("env delete %q: %w", key, ErrReadOnly)
}

func (s *Store) variableFor(key string) string {
	if name, ok := s.names[key]; ok {
		return name
	}

	return strings.ToUpper(strings.NewReplacer("/", "_", "-", "_", ".", "_", ":", "_").Replace(key))
}
