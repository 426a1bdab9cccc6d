package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/reelsync/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	SaveID   int64
}

// TraceResult lists the journaled passes of a save.
type TraceResult struct {
	SaveID int64        `json:"save_id"`
	Passes []store.Pass `json:"passes"`
	Stats  TraceStats   `json:"stats"`
}

// TraceStats counts passes by outcome.
type TraceStats struct {
	Total     int `json:"total"`
	Rollbacks int `json:"rollbacks"`
	Commits   int `json:"commits"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "List the journaled passes of a save",
		Long: `List every journaled pass of a save in sequence order: the delta
kind, how many lines were rolled back and appended, the resulting queue
length, the resolver rule and the index committed.

Examples:
  reelsync trace --db ./reelsync.db --save 3
  reelsync trace --db ./reelsync.db --save 3 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal database path (or "+EnvDB+")")
	cmd.Flags().Int64Var(&opts.SaveID, "save", 0, "save id (required)")
	_ = cmd.MarkFlagRequired("save")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
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

	passes, err := st.ReadPasses(ctx, opts.SaveID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("read passes: %v", err), nil)
	}

	result := &TraceResult{SaveID: opts.SaveID, Passes: passes, Stats: TraceStats{Total: len(passes)}}
	for _, p := range passes {
		if p.Kind == "rollback" {
			result.Stats.Rollbacks++
		}
		if p.CommitIndex >= 0 {
			result.Stats.Commits++
		}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	if len(passes) == 0 {
		fmt.Fprintf(formatter.Writer, "No passes journaled for save %d\n", opts.SaveID)
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tKIND\tDIV\t-\t+\tQUEUE\tRULE\tCOMMIT")
	for _, p := range passes {
		commit := "-"
		if p.CommitIndex >= 0 {
			commit = fmt.Sprint(p.CommitIndex)
		}
		rule := p.Rule
		if rule == "" {
			rule = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			p.Seq, p.Kind, p.Divergence, p.RolledBack, p.Appended, p.QueueLen, rule, commit)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(formatter.Writer, "\n%d %s, %d rollback(s), %d commit(s)\n",
		result.Stats.Total, plural(result.Stats.Total, "pass", "passes"), result.Stats.Rollbacks, result.Stats.Commits)
	return nil
}
