package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rsolver/pkg/pipeline"
	"github.com/matzehuels/rsolver/pkg/render"
)

type renderFlags struct {
	solveFlags
	solved bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Draw a network as SVG, PNG or Graphviz DOT",
		Long: `Draw the netlist in FILE with Graphviz. Terminals are highlighted and every
edge is labelled with its resistance.

The output format follows the extension of -o (.svg, .png, .dot) unless
--format is given. Without -o the drawing is written next to FILE.`,
		Example: `  rsolver render bridge.toml -o bridge.svg
  rsolver render mesh.yaml --solved -o reduced.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") {
				flags.random = true
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.solved, "solved", false, "draw the reduced network instead of the input")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file")
	cmd.Flags().StringVar(&flags.format, "format", "", "output format: svg, png or dot")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "seed for the random triangle picker (implies --random)")
	cmd.Flags().BoolVar(&flags.random, "random", false, "pick wye and delta candidates at random")
	cmd.Flags().IntVar(&flags.maxIter, "max-iter", 0, "iteration limit (0 scales with network size)")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached drawings")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, w io.Writer, path string, flags renderFlags) error {
	out, format, err := renderTarget(path, flags.output, flags.format)
	if err != nil {
		return pipeline.Classify(err)
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	nl, err := runner.Load(ctx, path)
	if err != nil {
		return err
	}

	opts := flags.options()
	opts.Format = format
	opts.Solved = flags.solved

	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", format))
	spin.Start()
	data, err := runner.Render(ctx, nl, opts)
	spin.Stop()
	if err != nil {
		return pipeline.Classify(err)
	}
	prog.done(fmt.Sprintf("Rendered %s", format))

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	printSuccess(w, "Rendered %s", nl.Name)
	printFile(w, out)
	return nil
}

// renderTarget resolves the output path and format. An explicit format wins
// over the extension; without an output path the drawing goes next to the
// input with the format's extension.
func renderTarget(input, output, format string) (string, render.Format, error) {
	var (
		f   render.Format
		err error
	)
	switch {
	case format != "":
		f, err = render.ParseFormat(format)
	case output != "":
		f, err = render.FormatFromPath(output)
	default:
		f = pipeline.DefaultFormat
	}
	if err != nil {
		return "", "", err
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + string(f)
	}
	return output, f, nil
}
