package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	filestore "github.com/lynnxiaofeng/parkyoga/internal/adapters/secrets/file"
	passstore "github.com/lynnxiaofeng/parkyoga/internal/adapters/secrets/pass"
	"github.com/lynnxiaofeng/parkyoga/internal/ports"
)

// Store reads and writes the primary backend and falls back to the second
// one when the primary fails or misses. Deletes reach both backends so a
// stale copy can never resurface.
type Store struct {
	primary  ports.SecretStore
	fallback ports.SecretStore
	logger   hclog.Logger
}

var _ ports.SecretStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary secret store is nil")
	errNilFallbackStore = errors.New("fallback secret store is nil")
)

func NewStore(primary ports.SecretStore, fallback ports.SecretStore) *Store {
	store, err := NewStoreChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(primary ports.SecretStore, fallback ports.SecretStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback, logger: hclog.NewNullLogger()}, nil
}

func NewPassFirstWithFileFallback(fileRoot string) (*Store, error) {
	return NewStoreChecked(passstore.NewStore(), filestore.NewStore(fileRoot))
}

func (s *Store) WithLogger(logger hclog.Logger) *Store {
	if logger != nil {
		s.logger = logger.Named("secrets")
	}
	return s
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	err := s.primary.Put(ctx, key, value)
	if err == nil {
		if delErr := s.fallback.Delete(ctx, key); delErr != nil {
			s.logger.Debug("could not drop fallback copy", "key", key, "error", delErr)
		}
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	s.logger.Debug("primary put failed, using fallback", "key", key, "error", err)
	fallbackErr := s.fallback.Put(ctx, key, value)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.primary.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}

	fallbackValue, fallbackErr := s.fallback.Get(ctx, key)
	if fallbackErr == nil {
		return fallbackValue, nil
	}
	if errors.Is(err, ports.ErrSecretNotFound) && errors.Is(fallbackErr, ports.ErrSecretNotFound) {
		return "", fmt.Errorf("secret %q: %w", key, ports.ErrSecretNotFound)
	}

	return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

// Delete succeeds when the fallback copy is gone; a failing primary is only
// logged because it is commonly just unavailable.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.primary.Delete(ctx, key)
	if err != nil && shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Delete(ctx, key)
	switch {
	case fallbackErr == nil:
		if err != nil {
			s.logger.Debug("primary delete failed", "key", key, "error", err)
		}
		return nil
	case err == nil:
		return fmt.Errorf("fallback backend delete failed: %w", fallbackErr)
	default:
		return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", err, fallbackErr)
	}
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
