package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/lynnxiaofeng/parkyoga/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutUsesPassInsert(t *testing.T) {
	t.Parallel()

	called := false
	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			called = true
			assert.Equal(t, []string{"insert", "-m", "-f", ports.SessionTokenKey}, args)
			assert.Equal(t, "tok-123\n", input)
			return "", "", nil
		},
	}

	require.NoError(t, store.Put(context.Background(), ports.SessionTokenKey, "tok-123"))
	assert.True(t, called)
}

func TestStoreGetUsesPassShowAndTrimsTrailingNewline(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"show", ports.SessionUserKey}, args)
			assert.Empty(t, input)
			return "{\"username\":\"alice\"}\r\n", "", nil
		},
	}

	value, err := store.Get(context.Background(), ports.SessionUserKey)
	require.NoError(t, err)
	assert.Equal(t, `{"username":"alice"}`, value)
}

func TestStoreGetMapsMissingEntryToNotFound(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "Error: parkyoga/session/token is not in the password store.", errors.New("exit status 1")
		},
	}

	_, err := store.Get(context.Background(), ports.SessionTokenKey)
	require.ErrorIs(t, err, ports.ErrSecretNotFound)
}

func TestStoreDeleteIgnoresMissingEntry(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"rm", "-f", ports.SessionTokenKey}, args)
			return "", "Error: parkyoga/session/token is not in the password store.", errors.New("exit status 1")
		},
	}

	require.NoError(t, store.Delete(context.Background(), ports.SessionTokenKey))
}

func TestStoreGetReturnsClearError(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "gpg: decryption failed: No secret key", errors.New("exit status 2")
		},
	}

	_, err := store.Get(context.Background(), ports.SessionTokenKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrSecretNotFound)
	assert.ErrorContains(t, err, "pass get")
	assert.ErrorContains(t, err, ports.SessionTokenKey)
	assert.ErrorContains(t, err, "decryption failed")
}

func TestStoreSkipsCommandOnCanceledContext(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(context.Context, string, ...string) (string, string, error) {
			t.Fatal("pass must not run after cancellation")
			return "", "", nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, ports.SessionTokenKey)
	require.ErrorIs(t, err, context.Canceled)
}
