package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reelsync/internal/compiler"
	"github.com/roach88/reelsync/internal/engine"
	"github.com/roach88/reelsync/internal/ir"
	"github.com/roach88/reelsync/internal/resolver"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Manifest string
	Prev     string
	Target   string
	Rewind   string
	Hit      bool
}

// CompileResult is one offline pass.
type CompileResult struct {
	SaveID  int64            `json:"save_id"`
	Delta   DiffResult       `json:"delta"`
	Stats   compiler.Stats   `json:"stats"`
	Queue   []ir.Instruction `json:"queue"`
	Rule    string           `json:"rule,omitempty"`
	Cleared bool             `json:"cleared"`
	DeadEnd bool             `json:"dead_end"`
	Commit  *CommitResult    `json:"commit,omitempty"`
}

// CommitResult is the round-trip the pass asks for.
type CommitResult struct {
	Selector string `json:"selector"`
	Index    int    `json:"index"`
	Resolved bool   `json:"resolved"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <save.json>",
		Short: "Run one offline pass over a save snapshot",
		Long: `Compile a save snapshot into a playback queue without a server.

With --prev the previous snapshot is compiled first and the new one is
diffed against it, exactly as a live sync would. Possibility draws miss
unless --hit is given. Nothing is committed; the requested commit is
printed instead.

Examples:
  reelsync compile save.json --manifest story.yaml
  reelsync compile next.json --prev prev.json --manifest story.yaml
  reelsync compile save.json --manifest story.yaml --target a01_a002_a001 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Manifest, "manifest", "m", "", "content manifest (.yaml, .json or .cue)")
	cmd.Flags().StringVar(&opts.Prev, "prev", "", "previously held save snapshot")
	cmd.Flags().StringVar(&opts.Target, "target", "", "story node to resume emission from")
	cmd.Flags().StringVar(&opts.Rewind, "rewind", "", "video to rewind the queue to")
	cmd.Flags().BoolVar(&opts.Hit, "hit", false, "possibility draws succeed")

	return cmd
}

func runCompile(opts *CompileOptions, savePath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	idx, err := LoadIndex(pick(opts.Manifest, opts.Config.Manifest))
	if err != nil {
		return failLoad(formatter, err)
	}
	next, err := LoadSave(savePath)
	if err != nil {
		return failLoad(formatter, err)
	}

	res := resolver.New(resolver.WithRoller(resolver.RollerFunc(func(float64) bool { return opts.Hit })))
	state := &resolver.State{}

	var prev *ir.Save
	var queue []ir.Instruction
	if opts.Prev != "" {
		prev, err = LoadSave(opts.Prev)
		if err != nil {
			return failLoad(formatter, err)
		}
		base, err := engine.Pass(engine.PassInput{Next: prev, State: state}, idx, res)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeGeneric, fmt.Sprintf("compile %s: %v", opts.Prev, err), nil)
		}
		if !base.Outcome.DeadEnd {
			queue = base.Queue
		}
		formatter.VerboseLog("Held queue from %s: %d instruction(s)", opts.Prev, len(queue))
	}

	out, err := engine.Pass(engine.PassInput{
		Prev:   prev,
		Queue:  queue,
		Next:   next,
		Target: opts.Target,
		Rewind: opts.Rewind,
		State:  state,
	}, idx, res)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, fmt.Sprintf("compile %s: %v", savePath, err), nil)
	}

	result := &CompileResult{
		SaveID:  next.ID,
		Delta:   newDiffResult(out.Delta),
		Stats:   out.Stats,
		Queue:   out.Queue,
		Rule:    out.Outcome.Rule,
		Cleared: out.Outcome.Cleared,
		DeadEnd: out.Outcome.DeadEnd,
	}
	if result.Queue == nil {
		result.Queue = []ir.Instruction{}
	}
	if c := out.Outcome.Commit; c != nil {
		index, ok := engine.ResolveIndex(c.Selector, c.Refs)
		result.Commit = &CommitResult{Selector: c.Selector.String(), Index: index, Resolved: ok}
	}

	return outputCompile(formatter, result)
}

func outputCompile(f *OutputFormatter, r *CompileResult) error {
	if f.JSON() {
		return f.Success(r)
	}

	w := f.Writer
	fmt.Fprintf(w, "✓ Compiled save %d: %d %s (%s, replayed %d)\n\n",
		r.SaveID, len(r.Queue), plural(len(r.Queue), "instruction", "instructions"), r.Delta.Kind, r.Stats.Replayed)
	writeQueue(w, r.Queue)

	if r.Rule != "" {
		fmt.Fprintf(w, "\nResolved by %s", r.Rule)
		if r.Cleared {
			fmt.Fprint(w, " (pending actions cleared)")
		}
		fmt.Fprintln(w)
	}
	if r.DeadEnd {
		fmt.Fprintln(w, "Dead end: the queue above would be abandoned")
	}
	if r.Commit != nil {
		if r.Commit.Resolved {
			fmt.Fprintf(w, "Commit: act(%d) for %s\n", r.Commit.Index, r.Commit.Selector)
		} else {
			fmt.Fprintf(w, "Commit: %s cannot be resolved without pending actions\n", r.Commit.Selector)
		}
	}
	return nil
}
