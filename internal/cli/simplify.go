package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foretime/ancestry/pkg/ancestry/batch"
	"github.com/foretime/ancestry/pkg/ancestry/segment"
)

// simplifyInput is the on-disk shape of a batch simplifier request: a flat
// edge table sorted ascending by birth time, a sample list, and the node
// table size and genome length needed to validate them.
type simplifyInput struct {
	NumNodes     segment.NodeID   `json:"num_nodes"`
	GenomeLength segment.Position `json:"genome_length"`
	Samples      []segment.NodeID `json:"samples"`
	Records      []edgeRecordJSON `json:"records"`
}

type edgeRecordJSON struct {
	Node        segment.NodeID `json:"node"`
	BirthTime   segment.Time   `json:"birth_time"`
	Descendants []segmentJSON  `json:"descendants"`
}

type segmentJSON struct {
	Left  segment.Position `json:"left"`
	Right segment.Position `json:"right"`
	Node  segment.NodeID   `json:"node"`
}

type simplifyOutput struct {
	IDMap   map[segment.NodeID]segment.NodeID `json:"id_map"`
	Records []edgeRecordJSON                  `json:"records"`
}

// simplifyCommand creates the simplify command for running the batch
// simplifier over an already-exported edge table.
func (c *CLI) simplifyCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "simplify [input.json]",
		Short: "Simplify a flat edge table down to a sample set's history",
		Long: `Simplify reads a flat edge table (sorted ascending by birth time), a
sample list, and a genome length from input.json, runs the batch
simplifier, and writes the resulting minimal edge table and id map.

This is the offline counterpart to 'simulate': use it to re-simplify a
table that was exported before all samples of interest were known.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSimplify(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.simplified.json)")

	return cmd
}

func (c *CLI) runSimplify(ctx context.Context, input, output string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	var in simplifyInput
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("parse %s: %w", input, err)
	}

	records := make([]batch.EdgeRecord, len(in.Records))
	for i, r := range in.Records {
		descendants := make([]segment.Segment, len(r.Descendants))
		for j, s := range r.Descendants {
			descendants[j] = segment.New(s.Node, s.Left, s.Right)
		}
		records[i] = batch.EdgeRecord{Node: r.Node, BirthTime: r.BirthTime, Descendants: descendants}
	}

	progress := newProgress(c.Logger)
	idmap, simplified, err := batch.Simplify(records, in.Samples, in.NumNodes, in.GenomeLength)
	if err != nil {
		return fmt.Errorf("simplify: %w", err)
	}
	progress.done(fmt.Sprintf("Simplified %d records to %d", len(records), len(simplified)))

	out := simplifyOutput{IDMap: idmap, Records: make([]edgeRecordJSON, len(simplified))}
	for i, r := range simplified {
		descendants := make([]segmentJSON, len(r.Descendants))
		for j, s := range r.Descendants {
			descendants[j] = segmentJSON{Left: s.Left, Right: s.Right, Node: s.Node}
		}
		out.Records[i] = edgeRecordJSON{Node: r.Node, BirthTime: r.BirthTime, Descendants: descendants}
	}

	outBytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".simplified.json"
	}
	if err := os.WriteFile(outputPath, outBytes, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Simplification complete")
	printFile(outputPath)
	printStats(len(in.Samples), len(simplified), false)

	return nil
}
