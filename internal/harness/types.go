package harness

// TraceEntry records the engine state after one step.
type TraceEntry struct {
	Step   int      `json:"step"`
	Op     string   `json:"op"`
	Calls  []string `json:"calls"`
	Error  string   `json:"error,omitempty"`
	SaveID int64    `json:"save_id"`
	Cursor string   `json:"cursor"`
	Queue  []string `json:"queue"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates overall test success: every step failed or succeeded
	// as expected and every assertion held.
	Pass bool `json:"pass"`

	// Trace holds one entry per step, in order.
	Trace []TraceEntry `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEntry{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
