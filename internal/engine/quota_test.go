package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaEnforcer_WithinLimit(t *testing.T) {
	q := NewQuotaEnforcer(3)

	for i := 0; i < 3; i++ {
		assert.NoError(t, q.Check(1), "commit %d should be allowed", i+1)
	}
	assert.Equal(t, 3, q.Current())
	assert.Equal(t, 3, q.MaxDepth())
}

func TestQuotaEnforcer_ExceedsLimit(t *testing.T) {
	q := NewQuotaEnforcer(2)
	require.NoError(t, q.Check(7))
	require.NoError(t, q.Check(7))

	err := q.Check(7)
	require.Error(t, err)

	var de *DepthExceededError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, int64(7), de.SaveID)
	assert.Equal(t, 3, de.Depth)
	assert.Equal(t, 2, de.Limit)
	assert.Equal(t, ErrCodeCommitDepthExceeded, de.RuntimeError())
}

func TestQuotaEnforcer_Reset(t *testing.T) {
	q := NewQuotaEnforcer(1)
	require.NoError(t, q.Check(1))
	q.Reset()
	assert.NoError(t, q.Check(1))
}

func TestIsDepthExceededError_Wrapped(t *testing.T) {
	err := fmt.Errorf("commit: %w", &DepthExceededError{SaveID: 1, Depth: 33, Limit: 32})

	assert.True(t, IsDepthExceededError(err))
	assert.True(t, IsCommitDepthExceeded(err))
	assert.False(t, IsDepthExceededError(fmt.Errorf("other")))
}
