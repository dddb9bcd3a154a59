package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	envstore "github.com/bnema/taskmate/internal/adapters/secrets/env"
	filestore "github.com/bnema/taskmate/internal/adapters/secrets/file"
	"github.com/bnema/taskmate/internal/ports"
)

// Store tries each backend in order. Reads and writes stop at the first
// backend that succeeds; deletes reach every backend.
type Store struct {
	backends []ports.SecretStore
}

var _ ports.SecretStore = (*Store)(nil)

var (
	errNoBackends = errors.New("secret store chain has no backends")
	errNilBackend = errors.New("secret store backend is nil")
)

func NewStore(backends ...ports.SecretStore) *Store {
	store, err := NewStoreChecked(backends...)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(backends ...ports.SecretStore) (*Store, error) {
	if len(backends) == 0 {
		return nil, errNoBackends
	}
	for i, backend := range backends {
		if backend == nil {
			return nil, fmt.Errorf("backend %d: %w", i, errNilBackend)
		}
	}

	return &Store{backends: backends}, nil
}

// NewEnvFirstWithFileFallback reads keys from the environment first and keeps
// written keys in files under fileRoot.
func NewEnvFirstWithFileFallback(envNames map[string]string, fileRoot string) (*Store, error) {
	return NewStoreChecked(envstore.NewStore(envNames), filestore.NewStore(fileRoot))
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	var failures []failure
	for i, backend := range s.backends {
		err := backend.Put(ctx, key, value)
		if err == nil {
			return nil
		}
		if shouldSkipFallback(err) {
			return err
		}
		failures = append(failures, failure{index: i, op: "put", err: err})
	}

	return combined(failures)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var failures []failure
	for i, backend := range s.backends {
		value, err := backend.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if shouldSkipFallback(err) {
			return "", err
		}
		failures = append(failures, failure{index: i, op: "get", err: err})
	}

	return "", combined(failures)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	var (
		failures  []failure
		succeeded bool
	)
	for i, backend := range s.backends {
		err := backend.Delete(ctx, key)
		if err == nil {
			succeeded = true
			continue
		}
		if shouldSkipFallback(err) {
			return err
		}
		failures = append(failures, failure{index: i, op: "delete", err: err})
	}
	if succeeded {
		return nil
	}

	return combined(failures)
}

type failure struct {
	index int
	op    string
	err   error
}

// combined keeps every backend error reachable through errors.Is.
func combined(failures []failure) error {
	parts := make([]string, 0, len(failures))
	args := make([]any, 0, len(failures))
	for _, f := range failures {
		label := "fallback"
		if f.index == 0 {
			label = "primary"
		}
		parts = append(parts, label+" backend "+f.op+" failed: %w")
		args = append(args, f.err)
	}

	return fmt.Errorf(strings.Join(parts, "; "), args...)
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
