package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSchema(t *testing.T) {
	schema, err := BuildSchema()
	require.NoError(t, err)

	for _, name := range []string{"manifest", "save", "instruction", "client_message", "server_message"} {
		def, ok := schema.Definitions[name]
		require.True(t, ok, "definition %s", name)
		assert.NotEmpty(t, def.Title)
	}
}

func TestSchemaCommand_Stdout(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewSchemaCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "reelsync", doc["title"])
	assert.Contains(t, buf.String(), `"server_message"`)
}

func TestSchemaCommand_WritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "reelsync.schema.json")

	buf := &bytes.Buffer{}
	cmd := NewSchemaCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--out", out})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "✓ Wrote schema with 5 definitions")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"client_message"`)
	assert.Contains(t, string(data), `"storylets"`)
}
