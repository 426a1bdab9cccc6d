package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{storyManifest})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "✓ Manifest valid: 7 storylet(s), 10 video(s), 1 ending(s)")
	assert.Contains(t, out, "chapter 00: 1 storylet(s), 2 video(s)")
	assert.Contains(t, out, "chapter 01:")
}

func TestValidate_ValidJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{storyManifest})
	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string         `json:"status"`
		Data   ValidateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 7, resp.Data.Storylets)
	assert.NotEmpty(t, resp.Data.Chapters)
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"testdata/bad_manifest.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeManifest)

	out := buf.String()
	assert.Contains(t, out, "✗ 2 problems found")
	assert.Contains(t, out, "[E103]")
	assert.Contains(t, out, "[E104]")
}

func TestValidate_NotFound(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/story.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, buf.String(), "not found")
}
