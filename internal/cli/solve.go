package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rsolver/pkg/netlist"
	"github.com/matzehuels/rsolver/pkg/pipeline"
)

// solveFlags holds the flags of the solve command.
type solveFlags struct {
	seed    uint64
	random  bool
	maxIter int
	verify  bool
	refresh bool
	noCache bool
	output  string
	format  string
	json    bool
}

func (f solveFlags) options() pipeline.Options {
	return pipeline.Options{
		Random:        f.random,
		Seed:          f.seed,
		MaxIterations: f.maxIter,
		Verify:        f.verify,
		Refresh:       f.refresh,
	}
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var flags solveFlags

	cmd := &cobra.Command{
		Use:   "solve FILE",
		Short: "Compute equivalent resistances between terminals",
		Long: `Reduce the netlist in FILE (TOML, YAML or JSON) and print the equivalent
resistance between every pair of terminals.

With -o the reduced network is written as a netlist; its format follows the
file extension unless --format is given.`,
		Example: `  rsolver solve bridge.toml
  rsolver solve mesh.yaml --random --seed 7 --verify
  rsolver solve mesh.yaml -o reduced.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") {
				flags.random = true
			}
			return c.runSolve(cmd.Context(), cmd.OutOrStdout(), args[0], flags)
		},
	}

	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "seed for the random triangle picker (implies --random)")
	cmd.Flags().BoolVar(&flags.random, "random", false, "pick wye and delta candidates at random")
	cmd.Flags().IntVar(&flags.maxIter, "max-iter", 0, "iteration limit (0 scales with network size)")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "check the result against nodal analysis")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the reduced netlist to this file")
	cmd.Flags().StringVar(&flags.format, "format", "", "netlist format for -o: toml, yaml or json")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print the result as JSON")

	return cmd
}

func (c *CLI) runSolve(ctx context.Context, w io.Writer, path string, flags solveFlags) error {
	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	var spin *Spinner
	if !flags.json {
		spin = newSpinner(ctx, os.Stderr, "Reducing "+path+"...")
		spin.Start()
	}
	res, err := runner.Execute(ctx, path, flags.options())
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return pipeline.Classify(err)
	}
	prog.done(fmt.Sprintf("Solved %s", res.Name))

	if flags.output != "" {
		if err := writeNetlist(flags.output, flags.format, res.Solved); err != nil {
			return err
		}
	}

	if flags.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printSolveResult(w, res)
	if flags.output != "" {
		printFile(w, flags.output)
	}
	return nil
}

func printSolveResult(w io.Writer, res *pipeline.Result) {
	title := res.Name
	if title == "" {
		title = "network"
	}
	if len(res.Pairs) == 0 {
		printWarning(w, "%s has fewer than two terminals", title)
		return
	}
	fmt.Fprintln(w, StyleTitle.Render(title))
	fmt.Fprintln(w, pairsTable(res))
	printStats(w, res.Stats, res.Cached)
	if res.Verified {
		printSuccess(w, "Verified against nodal analysis")
	}
}

// writeNetlist saves nl to path. An empty format is taken from the extension.
func writeNetlist(path, format string, nl *netlist.Netlist) error {
	if format == "" {
		return pipeline.Classify(netlist.Save(path, nl))
	}
	f, err := netlist.ParseFormat(format)
	if err != nil {
		return pipeline.Classify(err)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := netlist.Encode(out, f, nl); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
