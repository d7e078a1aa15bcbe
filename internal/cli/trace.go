package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rsolver/pkg/network/reduce"
	"github.com/matzehuels/rsolver/pkg/pipeline"
)

type traceFlags struct {
	seed    uint64
	random  bool
	maxIter int
	plain   bool
}

// traceCommand creates the trace command.
func (c *CLI) traceCommand() *cobra.Command {
	var flags traceFlags

	cmd := &cobra.Command{
		Use:   "trace FILE",
		Short: "Step through every rewrite of a reduction",
		Long: `Reduce the netlist in FILE and browse the rewrites in the order they were
applied. Each step lists the resistors it removed and the ones it added.

Use --plain to print the steps instead of opening the viewer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") {
				flags.random = true
			}
			return c.runTrace(cmd.Context(), cmd.OutOrStdout(), args[0], flags)
		},
	}

	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "seed for the random triangle picker (implies --random)")
	cmd.Flags().BoolVar(&flags.random, "random", false, "pick wye and delta candidates at random")
	cmd.Flags().IntVar(&flags.maxIter, "max-iter", 0, "iteration limit (0 scales with network size)")
	cmd.Flags().BoolVar(&flags.plain, "plain", false, "print steps without the interactive viewer")

	return cmd
}

func (c *CLI) runTrace(ctx context.Context, w io.Writer, path string, flags traceFlags) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return err
	}
	defer runner.Close()

	nl, err := runner.Load(ctx, path)
	if err != nil {
		return err
	}

	var trace reduce.Trace
	res, err := runner.Solve(ctx, nl, pipeline.Options{
		Random:        flags.random,
		Seed:          flags.seed,
		MaxIterations: flags.maxIter,
		Observer:      &trace,
	})
	if err != nil {
		return pipeline.Classify(err)
	}

	title := res.Name
	if title == "" {
		title = path
	}
	if flags.plain {
		printTrace(w, title, trace)
		printStats(w, res.Stats, false)
		return nil
	}

	_, err = tea.NewProgram(newTraceModel(title, trace), tea.WithContext(ctx), tea.WithOutput(w)).Run()
	return err
}

// printTrace writes one numbered line per step.
func printTrace(w io.Writer, title string, trace reduce.Trace) {
	fmt.Fprintln(w, StyleTitle.Render(title))
	if len(trace) == 0 {
		printInfo(w, "Nothing to reduce")
		return
	}
	width := len(fmt.Sprint(len(trace)))
	for i, s := range trace {
		fmt.Fprintf(w, "%s %s\n", StyleDim.Render(fmt.Sprintf("%*d", width, i+1)), s)
	}
}
