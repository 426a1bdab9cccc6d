package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// SuiteResult summarises a run over several scenario files.
type SuiteResult struct {
	Total    int            `json:"total"`
	Passed   int            `json:"passed"`
	Failed   int            `json:"failed"`
	Failures []SuiteFailure `json:"failures,omitempty"`
}

// SuiteFailure is one failed scenario.
type SuiteFailure struct {
	Path     string   `json:"path"`
	Scenario string   `json:"scenario,omitempty"`
	Errors   []string `json:"errors"`
}

// FindScenarios returns path itself when it is a file, or the .yaml and
// .yml files directly inside it, sorted.
func FindScenarios(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// RunSuite loads and runs every scenario at path. A scenario that fails to
// load or set up counts as failed.
func RunSuite(path string) (*SuiteResult, error) {
	files, err := FindScenarios(path)
	if err != nil {
		return nil, fmt.Errorf("find scenarios: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", path)
	}

	res := &SuiteResult{}
	for _, f := range files {
		res.Total++

		s, err := LoadScenario(f)
		if err != nil {
			res.fail(f, "", []string{err.Error()})
			continue
		}
		r, err := Run(s)
		if err != nil {
			res.fail(f, s.Name, []string{err.Error()})
			continue
		}
		if !r.Pass {
			res.fail(f, s.Name, r.Errors)
			continue
		}
		res.Passed++
	}
	return res, nil
}

func (r *SuiteResult) fail(path, name string, errs []string) {
	r.Failed++
	r.Failures = append(r.Failures, SuiteFailure{Path: path, Scenario: name, Errors: errs})
}
