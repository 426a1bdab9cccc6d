package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reelsync/internal/engine"
	"github.com/roach88/reelsync/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Manifest string
	SaveID   int64
}

// ReplayOutput is the determinism check over one or more saves.
type ReplayOutput struct {
	Deterministic bool         `json:"deterministic"`
	Saves         []SaveReplay `json:"saves"`
}

// SaveReplay is the check of one save's journal.
type SaveReplay struct {
	SaveID     int64                 `json:"save_id"`
	Passes     []engine.ReplayResult `json:"passes"`
	Mismatches int                   `json:"mismatches"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run journaled passes and check they reproduce",
		Long: `Re-run every journaled pass from its recorded snapshots and held queue,
and compare the recomputed queue hash and resolver rule with the journal.

Exit codes:
  0 - every pass reproduced
  1 - at least one pass differs
  2 - command error (missing database, bad manifest)

Examples:
  reelsync replay --db ./reelsync.db --manifest story.yaml
  reelsync replay --db ./reelsync.db --manifest story.yaml --save 3 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal database path (or "+EnvDB+")")
	cmd.Flags().StringVarP(&opts.Manifest, "manifest", "m", "", "content manifest (or "+EnvManifest+")")
	cmd.Flags().Int64Var(&opts.SaveID, "save", 0, "only replay this save")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openJournal(pick(opts.Database, opts.Config.DB))
	if err != nil {
		return failLoad(formatter, err)
	}
	defer st.Close()

	idx, err := LoadIndex(pick(opts.Manifest, opts.Config.Manifest))
	if err != nil {
		return failLoad(formatter, err)
	}

	saveIDs := []int64{opts.SaveID}
	if opts.SaveID == 0 {
		saveIDs, err = st.ListSaveIDs(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("list saves: %v", err), nil)
		}
	}

	out := &ReplayOutput{Deterministic: true, Saves: make([]SaveReplay, 0, len(saveIDs))}
	for _, id := range saveIDs {
		results, err := engine.VerifyJournal(ctx, st, idx, id)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		sr := SaveReplay{SaveID: id, Passes: results}
		for _, r := range results {
			if !r.Match {
				sr.Mismatches++
			}
		}
		if sr.Mismatches > 0 {
			out.Deterministic = false
		}
		formatter.VerboseLog("Save %d: %d pass(es), %d mismatch(es)", id, len(results), sr.Mismatches)
		out.Saves = append(out.Saves, sr)
	}

	if err := outputReplay(formatter, out); err != nil {
		return err
	}
	if !out.Deterministic {
		return NewExitError(ExitFailure, "replay produced different queues")
	}
	return nil
}

func outputReplay(f *OutputFormatter, out *ReplayOutput) error {
	if f.JSON() {
		return f.Success(out)
	}

	w := f.Writer
	for _, s := range out.Saves {
		fmt.Fprintf(w, "Save %d: %d %s\n", s.SaveID, len(s.Passes), plural(len(s.Passes), "pass", "passes"))
		for _, p := range s.Passes {
			mark := "✓"
			if !p.Match {
				mark = "✗"
			}
			fmt.Fprintf(w, "  %s seq %d %s", mark, p.Seq, p.PassID)
			if p.Rule != "" {
				fmt.Fprintf(w, " (%s)", p.Rule)
			}
			if !p.Match {
				fmt.Fprintf(w, " want %s/%s got %s/%s", short(p.WantQueue), p.Rule, short(p.GotQueue), p.GotRule)
			}
			fmt.Fprintln(w)
		}
	}
	if out.Deterministic {
		fmt.Fprintln(w, "✓ Replay deterministic")
	} else {
		fmt.Fprintln(w, "✗ Replay differs from the journal")
	}
	return nil
}

// openJournal opens an existing journal. A missing file is reported
// rather than created.
func openJournal(path string) (*store.Store, error) {
	if path == "" {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "no journal given (use --db or " + EnvDB + ")"}
	}
	if !fileExists(path) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("journal not found: %s", path)}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStore, Message: fmt.Sprintf("open journal: %v", err)}
	}
	return st, nil
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
