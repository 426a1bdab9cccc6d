package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted sync run.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Manifest is the story manifest path, relative to the scenario file.
	Manifest string `yaml:"manifest"`

	// Server scripts the save service.
	Server ServerScript `yaml:"server"`

	// Roll lists possibility draw outcomes in order. Draws past the end
	// miss.
	Roll []bool `yaml:"roll,omitempty"`

	// MaxCommitDepth overrides the engine's commit quota when positive.
	MaxCommitDepth int `yaml:"max_commit_depth,omitempty"`

	// Steps are the engine operations to run.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and the trace.
	Assertions []Assertion `yaml:"assertions"`
}

// ServerScript is the scripted save server.
type ServerScript struct {
	// Saves are held by the server from the start; list and fetch serve
	// them.
	Saves []SaveSpec `yaml:"saves"`

	// Act lists the responses to successive act calls.
	Act []SaveSpec `yaml:"act,omitempty"`

	// Jump maps a storylet to the response of a jump there.
	Jump map[string]SaveSpec `yaml:"jump,omitempty"`

	// Copy is the response to a copy call.
	Copy *SaveSpec `yaml:"copy,omitempty"`
}

// SaveSpec is a save snapshot in the compact line syntax.
type SaveSpec struct {
	ID      int64    `yaml:"id"`
	Lines   []string `yaml:"lines,omitempty"`
	Actions []string `yaml:"actions,omitempty"`
	Visited []string `yaml:"visited,omitempty"`
}

// Step is one engine operation.
type Step struct {
	// Op is one of the Op constants.
	Op string `yaml:"op"`

	// Index and Key select the choice for commit. Key wins when both are
	// set.
	Index *int   `yaml:"index,omitempty"`
	Key   string `yaml:"key,omitempty"`

	// ID is the rewind target.
	ID string `yaml:"id,omitempty"`

	// SaveID is the save to copy.
	SaveID int64 `yaml:"save_id,omitempty"`

	// ExpectError is the error code the step must fail with. Empty means
	// the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step ops.
const (
	OpFullSync        = "full_sync"
	OpSpeculativeSync = "speculative_sync"
	OpCommit          = "commit"
	OpRewind          = "rewind"
	OpStart           = "start"
	OpAdvance         = "advance"
	OpCopy            = "copy"
	OpNewSave         = "new_save"
	OpReset           = "reset"
)

// Assertion validates the final state or the trace.
type Assertion struct {
	// Type is one of the Assert constants.
	Type string `yaml:"type"`

	// Videos is the expected queue (queue_videos).
	Videos []string `yaml:"videos,omitempty"`

	// Loop is the expected loop flag (last_loop).
	Loop *bool `yaml:"loop,omitempty"`

	// Groups are the expected group types (group_types).
	Groups []string `yaml:"groups,omitempty"`

	// Indices are the expected act indices (commits).
	Indices []int `yaml:"indices,omitempty"`

	// Cursor and Video are the expected cursor state and current video
	// (cursor). An empty Video is not checked.
	Cursor string `yaml:"cursor,omitempty"`
	Video  string `yaml:"video,omitempty"`

	// Count is the expected trigger count (trigger_count).
	Count *int `yaml:"count,omitempty"`

	// Step and Code select a trace entry and its error code (error).
	Step *int   `yaml:"step,omitempty"`
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertQueueVideos  = "queue_videos"
	AssertLastLoop     = "last_loop"
	AssertGroupTypes   = "group_types"
	AssertCommits      = "commits"
	AssertCursor       = "cursor"
	AssertTriggerCount = "trigger_count"
	AssertError        = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// The manifest path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if s.Manifest != "" && !filepath.IsAbs(s.Manifest) {
		s.Manifest = filepath.Join(filepath.Dir(path), s.Manifest)
	}
	if _, err := os.Stat(s.Manifest); err != nil {
		return nil, fmt.Errorf("invalid scenario: manifest: %w", err)
	}
	return s, nil
}

// ParseScenario decodes and validates a scenario. The manifest path is
// left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Manifest == "" {
		return fmt.Errorf("manifest is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, sv := range s.Server.Saves {
		if err := validateSave(fmt.Sprintf("server.saves[%d]", i), sv); err != nil {
			return err
		}
	}
	for i, sv := range s.Server.Act {
		if err := validateSave(fmt.Sprintf("server.act[%d]", i), sv); err != nil {
			return err
		}
	}
	for storylet, sv := range s.Server.Jump {
		if err := validateSave(fmt.Sprintf("server.jump[%s]", storylet), sv); err != nil {
			return err
		}
	}
	if s.Server.Copy != nil {
		if err := validateSave("server.copy", *s.Server.Copy); err != nil {
			return err
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateSave(where string, sv SaveSpec) error {
	if sv.ID <= 0 {
		return fmt.Errorf("%s: id must be positive", where)
	}
	if _, err := sv.toSave(); err != nil {
		return fmt.Errorf("%s: %w", where, err)
	}
	return nil
}

func validateStep(index int, step Step) error {
	switch step.Op {
	case OpFullSync, OpSpeculativeSync, OpStart, OpAdvance, OpNewSave, OpReset:
	case OpCommit:
		if step.Index == nil && step.Key == "" {
			return fmt.Errorf("steps[%d]: index or key is required for commit", index)
		}
	case OpRewind:
		if step.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for rewind", index)
		}
	case OpCopy:
		if step.SaveID <= 0 {
			return fmt.Errorf("steps[%d]: save_id is required for copy", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertQueueVideos, AssertGroupTypes, AssertCommits:
		// an empty list asserts an empty result
	case AssertLastLoop:
		if a.Loop == nil {
			return fmt.Errorf("assertions[%d]: loop is required for last_loop", index)
		}
	case AssertCursor:
		if a.Cursor == "" {
			return fmt.Errorf("assertions[%d]: cursor is required for cursor", index)
		}
	case AssertTriggerCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for trigger_count", index)
		}
	case AssertError:
		if a.Step == nil {
			return fmt.Errorf("assertions[%d]: step is required for error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
