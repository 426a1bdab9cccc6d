package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/reelsync/internal/service"
)

func TestRuntimeError_Error(t *testing.T) {
	err := &RuntimeError{Code: ErrCodeNoSave, Message: "commit needs a synced save"}
	assert.Equal(t, "NO_SAVE: commit needs a synced save", err.Error())

	err.SaveID = 4
	assert.Equal(t, "NO_SAVE: commit needs a synced save (save=4)", err.Error())
}

func TestErrorHelpers(t *testing.T) {
	noSave := fmt.Errorf("wrapped: %w", newNoSaveError("rewind"))
	rewind := fmt.Errorf("wrapped: %w", &UnresolvableRewindError{ID: "zz"})
	coded := &RuntimeError{Code: ErrCodeUnresolvableRewind, Message: "x"}

	assert.True(t, IsNoSave(noSave))
	assert.False(t, IsNoSave(rewind))
	assert.True(t, IsUnresolvableRewind(rewind))
	assert.True(t, IsUnresolvableRewind(coded))
	assert.False(t, IsUnresolvableRewind(noSave))
	assert.False(t, IsCommitDepthExceeded(noSave))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want RuntimeErrorCode
	}{
		{"nil", nil, ""},
		{"runtime", newNoSaveError("commit"), ErrCodeNoSave},
		{"rewind", &UnresolvableRewindError{ID: "zz"}, ErrCodeUnresolvableRewind},
		{"depth", fmt.Errorf("x: %w", &DepthExceededError{}), ErrCodeCommitDepthExceeded},
		{"unauthorized", fmt.Errorf("list saves: %w", service.ErrUnauthorized), ErrCodeUnauthorized},
		{"other", errors.New("boom"), ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}
