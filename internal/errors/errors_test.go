package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryFromCode(t *testing.T) {
	tests := []struct {
		code     string
		category Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodePublishFailed, CategoryStorage},
		{ErrCodeEmbedderUnavailable, CategoryEmbedding},
		{ErrCodeInvalidQuery, CategoryQuery},
		{ErrCodeInternal, CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
		})
	}
}

func TestPublishError_IsFatal(t *testing.T) {
	// Given: a publish failure
	err := PublishError("rename failed", nil)

	// Then: it must abort the build
	assert.True(t, IsFatal(err))
	assert.False(t, IsRetryable(err))
}

func TestEmbeddingUnavailable_IsWarningNotFatal(t *testing.T) {
	err := EmbeddingUnavailable("model missing", nil)

	assert.True(t, IsUnavailable(err))
	assert.False(t, IsFatal(err))
	assert.Equal(t, SeverityWarning, err.Severity)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	var got *WikiError = Wrap(ErrCodeStorageFailed, nil)
	assert.Nil(t, got)
}

func TestIs_MatchesByCode(t *testing.T) {
	// Given: a wrapped storage error
	cause := errors.New("disk full")
	err := fmt.Errorf("saving version: %w", StorageError("write failed", cause))

	// Then: errors.Is matches by code, errors.As recovers the cause chain
	assert.True(t, errors.Is(err, New(ErrCodeStorageFailed, "", nil)))

	var we *WikiError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, ErrCodeStorageFailed, we.Code)
	assert.True(t, errors.Is(we, we)) // self-match
	assert.ErrorIs(t, we, cause)
}

func TestGetCode_NonWikiError(t *testing.T) {
	assert.Equal(t, "", GetCode(errors.New("plain")))
}

func TestWithDetail_Chains(t *testing.T) {
	err := StorageError("write failed", nil).
		WithDetail("path", "/tmp/x").
		WithDetail("hash", "abc123")

	assert.Equal(t, "/tmp/x", err.Details["path"])
	assert.Equal(t, "abc123", err.Details["hash"])
}
