package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewServeCommand(&RootOptions{Format: "text", Config: DefaultConfig()})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"--server", "http://127.0.0.1:1",
		"--manifest", storyManifest,
		"--addr", "127.0.0.1:0",
		"--no-sync",
	})

	assert.NoError(t, cmd.ExecuteContext(ctx))
}

func TestServe_InitialSyncFailure(t *testing.T) {
	srv := unauthorizedServer(t)

	buf := &bytes.Buffer{}
	cmd := NewServeCommand(&RootOptions{Format: "text", Config: DefaultConfig()})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--server", srv.URL, "--manifest", storyManifest, "--addr", "127.0.0.1:0"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Error ["+ErrCodeUnauthorized+"]")
}
