package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/reelsync/internal/graph"
	"github.com/roach88/reelsync/internal/ir"
)

// LoadError is a failure to load a command input, with the code the
// command reports it under.
type LoadError struct {
	Code    string
	Message string
	Details any
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// failLoad reports a LoadError through the formatter. Other errors are
// reported as generic.
func failLoad(f *OutputFormatter, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		return f.Fail(ExitCommandError, le.Code, le.Message, le.Details)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}

// LoadManifest reads a manifest file and reports every validation problem
// rather than stopping at the first.
func LoadManifest(path string) (*graph.Manifest, error) {
	if path == "" {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "no manifest given (use --manifest or " + EnvManifest + ")"}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("manifest not found: %s", path)}
	}
	m, err := graph.LoadManifest(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeManifest, Message: err.Error()}
	}
	return m, nil
}

// LoadIndex loads a manifest and builds its index.
func LoadIndex(path string) (*graph.Index, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	idx, err := graph.Build(m)
	if err != nil {
		var inv *graph.InvalidManifestError
		if errors.As(err, &inv) {
			return nil, &LoadError{Code: ErrCodeManifest, Message: err.Error(), Details: inv.Problems}
		}
		return nil, &LoadError{Code: ErrCodeManifest, Message: err.Error()}
	}
	return idx, nil
}

// LoadSave reads a save snapshot in wire JSON. A {"game": ...} envelope,
// as returned by the save service, is unwrapped.
func LoadSave(path string) (*ir.Save, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("save file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeInvalidInput, Message: fmt.Sprintf("read %s: %v", path, err)}
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidInput, Message: fmt.Sprintf("decode %s: %v", path, err)}
	}
	if game, ok := env["game"]; ok {
		data = game
	}

	var save ir.Save
	if err := json.Unmarshal(data, &save); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidInput, Message: fmt.Sprintf("decode %s: %v", path, err)}
	}
	return &save, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
