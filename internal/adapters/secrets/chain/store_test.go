package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lynnxiaofeng/parkyoga/internal/ports"
	portmocks "github.com/lynnxiaofeng/parkyoga/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const tokenKey = ports.SessionTokenKey

func TestStoreGetUsesPrimaryWhenItSucceeds(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, tokenKey).Return("from-pass", nil).Once()

	value, err := store.Get(context.Background(), tokenKey)
	require.NoError(t, err)
	assert.Equal(t, "from-pass", value)
}

func TestStoreGetFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, tokenKey).Return("", errors.New("pass unavailable")).Once()
	fallback.EXPECT().Get(mock.Anything, tokenKey).Return("from-file", nil).Once()

	value, err := store.Get(context.Background(), tokenKey)
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetReportsNotFoundWhenBothMiss(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, tokenKey).Return("", fmt.Errorf("pass: %w", ports.ErrSecretNotFound)).Once()
	fallback.EXPECT().Get(mock.Anything, tokenKey).Return("", fmt.Errorf("file: %w", ports.ErrSecretNotFound)).Once()

	_, err := store.Get(context.Background(), tokenKey)
	require.ErrorIs(t, err, ports.ErrSecretNotFound)
	assert.NotContains(t, err.Error(), "primary backend")
}

func TestStoreGetReturnsCombinedErrorWhenBothBackendsFail(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, tokenKey).Return("", errors.New("pass failed")).Once()
	fallback.EXPECT().Get(mock.Anything, tokenKey).Return("", errors.New("file failed")).Once()

	_, err := store.Get(context.Background(), tokenKey)
	require.Error(t, err)
	assert.ErrorContains(t, err, "primary backend")
	assert.ErrorContains(t, err, "fallback backend")
	assert.ErrorContains(t, err, "pass failed")
	assert.ErrorContains(t, err, "file failed")
}

func TestStorePutFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Put(mock.Anything, tokenKey, "tok").Return(errors.New("pass failed")).Once()
	fallback.EXPECT().Put(mock.Anything, tokenKey, "tok").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), tokenKey, "tok"))
}

func TestStorePutDropsFallbackCopyWhenPrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Put(mock.Anything, tokenKey, "tok").Return(nil).Once()
	fallback.EXPECT().Delete(mock.Anything, tokenKey).Return(errors.New("read-only")).Once()

	require.NoError(t, store.Put(context.Background(), tokenKey, "tok"))
}

func TestStoreDeleteReachesBothBackends(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Delete(mock.Anything, tokenKey).Return(nil).Once()
	fallback.EXPECT().Delete(mock.Anything, tokenKey).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), tokenKey))
}

func TestStoreDeleteToleratesUnavailablePrimary(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Delete(mock.Anything, tokenKey).Return(errors.New("pass failed")).Once()
	fallback.EXPECT().Delete(mock.Anything, tokenKey).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), tokenKey))
}

func TestStoreDeleteFailsWhenFallbackCopySurvives(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Delete(mock.Anything, tokenKey).Return(nil).Once()
	fallback.EXPECT().Delete(mock.Anything, tokenKey).Return(errors.New("permission denied")).Once()

	err := store.Delete(context.Background(), tokenKey)
	require.Error(t, err)
	assert.ErrorContains(t, err, "permission denied")
}

func TestStoreGetDoesNotFallbackOnCanceledContextError(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, tokenKey).Return("", context.Canceled).Once()

	_, err := store.Get(context.Background(), tokenKey)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewStoreCheckedRejectsNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStoreChecked(nil, portmocks.NewMockSecretStore(t))
	require.ErrorIs(t, err, errNilPrimaryStore)

	_, err = NewStoreChecked(portmocks.NewMockSecretStore(t), nil)
	require.ErrorIs(t, err, errNilFallbackStore)
}
