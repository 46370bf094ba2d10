package store

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCodeThroughWrapping(t *testing.T) {
	err := NotFound("topic %q not found", "abc")
	assert.True(t, IsCode(err, ErrCodeNotFound))
	assert.False(t, IsCode(err, ErrCodeConnectionFailed))

	// Codes survive pkg/errors wrapping.
	wrapped := errors.Wrap(err, "loading topic")
	assert.True(t, IsCode(wrapped, ErrCodeNotFound))

	assert.False(t, IsCode(errors.New("plain"), ErrCodeNotFound))
	assert.False(t, IsCode(nil, ErrCodeNotFound))
}

func TestStoreErrorMessages(t *testing.T) {
	err := DimensionMismatch(1536, 768)
	assert.Contains(t, err.Error(), "1536")
	assert.Contains(t, err.Error(), "768")
	assert.Contains(t, err.Error(), string(ErrCodeDimensionMismatch))

	cause := errors.New("dial tcp: connection refused")
	conn := ConnectionFailed(cause, "ping failed")
	require.ErrorIs(t, conn, cause)
	assert.Contains(t, conn.Error(), "ping failed")
}
