// Package treeviz renders a module's configuration tree as a Graphviz
// diagram, which helps when debugging inheritance and switch selection.
//
// Convert a module to DOT, then render to SVG:
//
//	dot := treeviz.ToDOT(module, treeviz.Options{Selection: []string{"BIT"}})
//	svg, err := treeviz.RenderSVG(ctx, dot)
//
// Switch nodes have dashed outlines, inactive nodes are grey and nodes
// active for the selection are filled.
package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mfdcache/pkg/config"
	"github.com/matzehuels/mfdcache/pkg/fingerprint"
	"github.com/matzehuels/mfdcache/pkg/selection"
)

// Options configures tree rendering.
type Options struct {
	// Selection marks switch nodes as active.
	Selection []string

	// Detailed adds the file reference, geometry and fingerprint to labels.
	Detailed bool
}

// ToDOT converts a module's configuration tree to Graphviz DOT.
func ToDOT(m *config.Module, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse];\n", m.Name, m.Title())
	for _, cfg := range m.Configurations {
		writeNode(&buf, cfg, cfg.IsEnabled(), opts)
		fmt.Fprintf(&buf, "  %q -> %q;\n", m.Name, cfg.ReadableName())

		// Descendants are shown active only when every ancestor is active.
		active := map[*config.Node]bool{cfg: cfg.IsEnabled()}
		cfg.Walk(func(n, parent *config.Node) bool {
			active[n] = active[parent] && selection.IsActive(n, opts.Selection)
			writeNode(&buf, n, active[n], opts)
			fmt.Fprintf(&buf, "  %q -> %q;\n", parent.ReadableName(), n.ReadableName())
			return true
		})
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, n *config.Node, active bool, opts Options) {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	style := []string{"rounded", "filled"}
	if n.IsSwitch() {
		style = append(style, "dashed")
	}
	attrs = append(attrs, fmt.Sprintf("style=%q", strings.Join(style, ",")))
	switch {
	case !active:
		attrs = append(attrs, "fillcolor=lightgrey", "fontcolor=grey40")
	case n.IsSwitch():
		attrs = append(attrs, "fillcolor=lightblue")
	}
	fmt.Fprintf(buf, "  %q [%s];\n", n.ReadableName(), strings.Join(attrs, ", "))
}

func fmtLabel(n *config.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}
	parts := []string{n.Name, n.File()}
	if n.Width != nil && n.Height != nil {
		parts = append(parts, fmt.Sprintf("%dx%d", *n.Width, *n.Height))
	}
	if n.OpacityValue() < 1 {
		parts = append(parts, fmt.Sprintf("opacity %.2f", n.OpacityValue()))
	}
	parts = append(parts, "fp "+strconv.FormatUint(fingerprint.Of(n), 10))
	return strings.Join(parts, "\n")
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
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales cleanly
// when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
