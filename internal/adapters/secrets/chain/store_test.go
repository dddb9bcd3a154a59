package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/taskmate/internal/domain"
	portmocks "github.com/bnema/taskmate/internal/ports/mocks"
)

const openAIKey = "taskmate/llm/openai/api_key"

func TestStoreGetUsesPrimaryWhenItSucceeds(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, openAIKey).Return("from-env", nil).Once()

	value, err := store.Get(context.Background(), openAIKey)
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)
}

func TestStoreGetFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, openAIKey).Return("", domain.ErrSecretNotFound).Once()
	fallback.EXPECT().Get(mock.Anything, openAIKey).Return("from-file", nil).Once()

	value, err := store.Get(context.Background(), openAIKey)
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetReturnsCombinedErrorWhenAllBackendsFail(t *testing.T) {
	t.Parallel()

	first := portmocks.NewMockSecretStore(t)
	second := portmocks.NewMockSecretStore(t)
	third := portmocks.NewMockSecretStore(t)
	store := NewStore(first, second, third)

	first.EXPECT().Get(mock.Anything, openAIKey).Return("", errors.New("env failed")).Once()
	second.EXPECT().Get(mock.Anything, openAIKey).Return("", domain.ErrSecretNotFound).Once()
	third.EXPECT().Get(mock.Anything, openAIKey).Return("", errors.New("file failed")).Once()

	_, err := store.Get(context.Background(), openAIKey)
	require.Error(t, err)
	assert.ErrorContains(t, err, "primary backend get failed: env failed")
	assert.ErrorContains(t, err, "fallback backend get failed: file failed")
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStorePutFallsBackWhenPrimaryIsReadOnly(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Put(mock.Anything, openAIKey, "secret").Return(errors.New("read-only")).Once()
	fallback.EXPECT().Put(mock.Anything, openAIKey, "secret").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), openAIKey, "secret"))
}

func TestStorePutDoesNotCallFallbackWhenPrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Put(mock.Anything, openAIKey, "secret").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), openAIKey, "secret"))
}

func TestStoreDeleteReachesEveryBackend(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Delete(mock.Anything, openAIKey).Return(errors.New("read-only")).Once()
	fallback.EXPECT().Delete(mock.Anything, openAIKey).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), openAIKey))
}

func TestStoreDeleteFailsWhenNoBackendSucceeds(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Delete(mock.Anything, openAIKey).Return(errors.New("read-only")).Once()
	fallback.EXPECT().Delete(mock.Anything, openAIKey).Return(errors.New("disk full")).Once()

	err := store.Delete(context.Background(), openAIKey)
	assert.ErrorContains(t, err, "disk full")
}

func TestStoreGetDoesNotFallbackOnCanceledContextError(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, openAIKey).Return("", context.Canceled).Once()

	_, err := store.Get(context.Background(), openAIKey)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewStoreCheckedRejectsMissingBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStoreChecked()
	require.ErrorIs(t, err, errNoBackends)

	_, err = NewStoreChecked(portmocks.NewMockSecretStore(t), nil)
	require.ErrorIs(t, err, errNilBackend)
}

func TestEnvFirstWithFileFallbackWritesToFile(t *testing.T) {
	t.Parallel()

	store, err := NewEnvFirstWithFileFallback(map[string]string{openAIKey: "TASKMATE_TEST_UNSET_OPENAI_KEY"}, t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), openAIKey, "sk-file"))
	value, err := store.Get(context.Background(), openAIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", value)

	require.NoError(t, store.Delete(context.Background(), openAIKey))
	_, err = store.Get(context.Background(), openAIKey)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}
