package connections

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts a search result to Graphviz DOT format: the queried
// account in the center with one edge per related account, labeled with
// the collapsed relationship reasons. The resulting DOT string can be
// rendered with [RenderSVG].
func ToDOT(res *Result) string {
	var buf bytes.Buffer
	buf.WriteString("graph connections {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [fontsize=9, color=grey50];\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %q [fillcolor=lightblue, fontsize=18];\n", res.Handle)

	for _, a := range res.Accounts {
		label := fmt.Sprintf("%s\nscore: %s", a.Handle, formatScore(a.Score(res.Weights)))
		fmt.Fprintf(&buf, "  %q [label=%q, href=%q];\n", a.Handle, label, a.ProfileURL)
	}

	buf.WriteString("\n")
	for _, a := range res.Accounts {
		reasons := strings.Join(Reasons(a, res.Handle), "\n")
		fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n", res.Handle, a.Handle, reasons)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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

// formatScore trims trailing zeros so integral weights render as "50",
// fractional ones as "0.1".
func formatScore(score float64) string {
	s := fmt.Sprintf("%.2f", score)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
