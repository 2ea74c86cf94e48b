package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-graphviz"

	"github.com/annacrombie/pkgconf/pkg/resolver"
	"github.com/annacrombie/pkgconf/pkg/vercmp"
)

// writeDigraph emits the solved world as Graphviz DOT. With an empty
// output path the DOT text goes to w; a .svg or .png path is rendered
// through graphviz, anything else gets the raw DOT text.
func writeDigraph(w io.Writer, world *resolver.Package, output string) error {
	dot := worldDOT(world)
	if output == "" {
		_, err := io.WriteString(w, dot)
		return err
	}

	switch filepath.Ext(output) {
	case ".svg", ".png":
		return renderDigraph(output, dot)
	default:
		return os.WriteFile(output, []byte(dot), 0o644)
	}
}

// worldDOT prints one node per solved package and one edge per
// flattened dependency. Private edges are dotted; constraint operators
// become edge labels.
func worldDOT(world *resolver.Package) string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("\tgraph [fontname=\"sans-serif\"];\n")
	buf.WriteString("\tnode [fontname=\"sans-serif\"];\n")
	fmt.Fprintf(&buf, "\t%q [style=dashed];\n", world.ID)

	edges := func(deps []*resolver.Dependency, attr string) {
		for _, dep := range deps {
			match := dep.Match()
			if match == nil {
				continue
			}
			fmt.Fprintf(&buf, "\t%q [label=%q];\n", match.ID, match.ID+"\\n"+match.Version)
			label := ""
			if dep.Op != vercmp.OpAny {
				label = dep.Op.String() + " " + dep.Version
			}
			fmt.Fprintf(&buf, "\t%q -> %q [label=%q%s];\n", world.ID, match.ID, label, attr)
		}
	}
	edges(world.Requires, "")
	edges(world.RequiresPrivate, ", style=dotted")

	buf.WriteString("}\n")
	return buf.String()
}

func renderDigraph(path, dot string) error {
	ctx := context.Background()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("initializing graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return fmt.Errorf("parsing dependency graph: %w", err)
	}
	defer graph.Close()

	format := graphviz.SVG
	if filepath.Ext(path) == ".png" {
		format = graphviz.PNG
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, format, &buf); err != nil {
		return fmt.Errorf("rendering dependency graph: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
