// Package visualize renders an ancestry graph to Graphviz DOT and SVG, for
// debugging a running simulation or an already-decoded tree-sequence
// snapshot. It is a side tool, never consulted by the simplification
// engine itself.
package visualize

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/foretime/ancestry/pkg/ancestry/graph"
	"github.com/foretime/ancestry/pkg/ancestry/tables"
)

// Options configures DOT rendering.
type Options struct {
	// Style selects the rendering density: "simple" shows node indices
	// only, "dense" adds each node's time to its label. Samples (alive
	// nodes) are filled light blue in both styles.
	Style string

	// ShowUnary includes nodes with no retained children (pruned-out
	// unary passthroughs) in the diagram. Off by default since these
	// clutter the picture without adding information the ancestry table
	// doesn't already capture.
	ShowUnary bool
}

// DefaultOptions returns the visualize package's default rendering style.
func DefaultOptions() Options {
	return Options{Style: "simple"}
}

// FromPopulation renders the currently-alive cohort of a running inline
// simulation to DOT, following each node's pruned Children edges.
func FromPopulation(alive []*graph.Node, opts Options) (string, error) {
	index := make(map[*graph.Node]int)
	var order []*graph.Node

	var visit func(n *graph.Node)
	visit = func(n *graph.Node) {
		if _, ok := index[n]; ok {
			return
		}
		index[n] = len(order)
		order = append(order, n)
		for child := range n.Children {
			visit(child)
		}
		for _, parent := range n.ParentSlice() {
			visit(parent)
		}
	}
	for _, a := range alive {
		visit(a)
	}

	var buf bytes.Buffer
	writeHeader(&buf)

	for _, n := range order {
		if !opts.ShowUnary && len(n.Children) == 0 && !n.Alive {
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeLabel(index[n]), nodeAttrs(n, opts))
	}

	buf.WriteString("\n")
	for _, n := range order {
		for child, segs := range n.Children {
			for _, s := range segs {
				fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n",
					nodeLabel(index[n]), nodeLabel(index[child]), fmt.Sprintf("[%d,%d)", s.Left, s.Right))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

// FromTables renders a decoded NodeTable/EdgeTable snapshot to DOT.
func FromTables(t *tables.Tables, opts Options) string {
	var buf bytes.Buffer
	writeHeader(&buf)

	hasChildren := make([]bool, len(t.Nodes))
	for _, e := range t.Edges {
		if e.Parent >= 0 && e.Parent < len(hasChildren) {
			hasChildren[e.Parent] = true
		}
	}

	for i, n := range t.Nodes {
		if !opts.ShowUnary && !hasChildren[i] && !n.Sample {
			continue
		}
		attrs := []string{fmt.Sprintf("label=%q", tableNodeLabel(i, n, opts))}
		if n.Sample {
			attrs = append(attrs, "style=\"rounded,filled\"", "fillcolor=lightblue")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeLabel(i), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range t.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n",
			nodeLabel(e.Parent), nodeLabel(e.Child), fmt.Sprintf("[%d,%d)", e.Left, e.Right))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeHeader(buf *bytes.Buffer) {
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")
}

func nodeLabel(index int) string {
	return fmt.Sprintf("n%d", index)
}

func nodeAttrs(n *graph.Node, opts Options) string {
	label := nodeLabel(int(n.Index))
	if opts.Style == "dense" {
		label = fmt.Sprintf("n%d\\ntime: %d", n.Index, n.BirthTime)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Alive {
		attrs = append(attrs, "style=\"rounded,filled\"", "fillcolor=lightblue")
	}
	return strings.Join(attrs, ", ")
}

func tableNodeLabel(index int, n tables.NodeRow, opts Options) string {
	if opts.Style != "dense" {
		return nodeLabel(index)
	}
	return fmt.Sprintf("n%d\\ntime: %d", index, n.Time)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
