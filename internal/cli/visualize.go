package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foretime/ancestry/pkg/ancestry/tables"
	"github.com/foretime/ancestry/pkg/visualize"
)

// visualizeCommand creates the visualize command for rendering a
// tree-sequence snapshot to Graphviz DOT or SVG.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		output    string
		format    string
		style     string
		showUnary bool
	)

	cmd := &cobra.Command{
		Use:   "visualize [snapshot.json]",
		Short: "Render a tree-sequence snapshot to DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "dot" && format != "svg" {
				return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", format)
			}
			if style != "simple" && style != "dense" {
				return fmt.Errorf("invalid style: %s (must be 'simple' or 'dense')", style)
			}
			return c.runVisualize(cmd.Context(), args[0], output, format, style, showUnary)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: dot, svg")
	cmd.Flags().StringVar(&style, "style", "simple", "rendering style: simple, dense")
	cmd.Flags().BoolVar(&showUnary, "show-unary", false, "include nodes with no retained children")

	return cmd
}

func (c *CLI) runVisualize(ctx context.Context, input, output, format, style string, showUnary bool) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	snapshot, err := tables.Decode(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", input, err)
	}

	opts := visualize.Options{Style: style, ShowUnary: showUnary}
	dot := visualize.FromTables(snapshot, opts)

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + "." + format
	}

	switch format {
	case "dot":
		if err := os.WriteFile(outputPath, []byte(dot), 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", outputPath, err)
		}
	case "svg":
		svg, err := visualize.RenderSVG(ctx, dot)
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		if err := os.WriteFile(outputPath, svg, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", outputPath, err)
		}
	}

	printSuccess("Visualization complete")
	printFile(outputPath)
	printStats(len(snapshot.Nodes), len(snapshot.Edges), false)

	return nil
}
