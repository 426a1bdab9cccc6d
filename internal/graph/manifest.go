package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/reelsync/internal/ir"
)

// Manifest is the content description the index is built from.
type Manifest struct {
	Storylets           []StoryletEntry          `json:"storylets" yaml:"storylets"`
	Endings             map[string]ir.EndingKind `json:"endings,omitempty" yaml:"endings,omitempty"`
	ChapterEndingVideos []string                 `json:"chapter_ending_videos,omitempty" yaml:"chapter_ending_videos,omitempty"`
	ValueChangeVideos   []string                 `json:"value_change_videos,omitempty" yaml:"value_change_videos,omitempty"`
}

// StoryletEntry is one story node and its videos in play order.
type StoryletEntry struct {
	ID     string   `json:"id" yaml:"id"`
	Videos []string `json:"videos" yaml:"videos"`
}

// Format identifies a manifest encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatFromPath picks the manifest format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported manifest extension %q (want .json, .yaml, .yml or .cue)", filepath.Ext(path))
	}
}

// LoadManifest reads and decodes a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(data, format, path)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

// ParseManifest decodes manifest bytes in the given format. filename is used
// for CUE positions only.
func ParseManifest(data []byte, format Format, filename string) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, err
		}
	case FormatCUE:
		ctx := cuecontext.New()
		v := ctx.CompileBytes(data, cue.Filename(filename))
		if err := v.Validate(cue.Concrete(true)); err != nil {
			return nil, formatCUEError(err)
		}
		if err := v.Decode(&m); err != nil {
			return nil, formatCUEError(err)
		}
	default:
		return nil, fmt.Errorf("unknown manifest format %q", format)
	}
	return &m, nil
}

// CUEError is a CUE evaluation error with its source position.
type CUEError struct {
	Message string
	Pos     token.Pos
}

func (e *CUEError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// formatCUEError keeps the first error that carries a position.
func formatCUEError(err error) error {
	var ce cueerrors.Error
	if !errors.As(err, &ce) {
		return err
	}
	errs := cueerrors.Errors(ce)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &CUEError{Message: first.Error(), Pos: positions[0]}
	}
	return err
}
