package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/roach88/reelsync/internal/api"
	"github.com/roach88/reelsync/internal/graph"
	"github.com/roach88/reelsync/internal/ir"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	Out string
}

// SchemaResult reports where the schema was written.
type SchemaResult struct {
	Path        string   `json:"path"`
	Definitions []string `json:"definitions"`
}

// schemaTypes are the documents described by the schema, by definition name.
var schemaTypes = []struct {
	name        string
	title       string
	description string
	typ         reflect.Type
}{
	{"manifest", "Content Manifest", "Storylets, their videos, endings and chapter markers.", reflect.TypeOf(graph.Manifest{})},
	{"save", "Save Snapshot", "A save as returned by the save service.", reflect.TypeOf(ir.Save{})},
	{"instruction", "Playback Instruction", "One queued video with its loop flag and action groups.", reflect.TypeOf(ir.Instruction{})},
	{"client_message", "Client Message", "A command sent over the live API.", reflect.TypeOf(api.ClientMessage{})},
	{"server_message", "Server Message", "A state push or command reply from the live API.", reflect.TypeOf(api.ServerMessage{})},
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Emit the JSON schema of manifests, saves and API messages",
		Long: `Emit a JSON schema whose definitions describe the content manifest,
save snapshots, playback instructions and the live API messages.

Without --out the schema is written to stdout.

Examples:
  reelsync schema
  reelsync schema --out schema/reelsync.schema.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output path for the JSON schema")

	return cmd
}

// BuildSchema reflects every document type into one schema.
func BuildSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}

	defs := jsonschema.Definitions{}
	for _, st := range schemaTypes {
		s := reflector.ReflectFromType(st.typ)
		if s == nil {
			return nil, fmt.Errorf("failed to reflect %s schema", st.name)
		}
		s.Version = ""
		s.Title = st.title
		s.Description = st.description
		defs[st.name] = s
	}

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "reelsync",
		Description: "Documents read and written by reelsync.",
		Definitions: defs,
	}, nil
}

func runSchema(opts *SchemaOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	schema, err := BuildSchema()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("marshal schema: %v", err), nil)
	}
	data = append(data, '\n')

	if opts.Out == "" {
		_, err := formatter.Writer.Write(data)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(opts.Out), 0o755); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("create output dir: %v", err), nil)
	}
	if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("write schema: %v", err), nil)
	}

	result := &SchemaResult{Path: opts.Out}
	for _, st := range schemaTypes {
		result.Definitions = append(result.Definitions, st.name)
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Wrote schema with %d definitions to %s\n", len(result.Definitions), opts.Out)
	return nil
}
