package ports

import (
	"context"
	"errors"
)

// Keys under which the signed-in session is persisted.
const (
	SessionTokenKey = "parkyoga/session/token"
	SessionUserKey  = "parkyoga/session/user"
)

var ErrSecretNotFound = errors.New("secret not found")

// SecretStore is a small key/value store for credentials. Get returns an
// error wrapping ErrSecretNotFound when the key has never been written or
// was deleted; Delete of a missing key succeeds.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
