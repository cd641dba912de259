package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/pkg/graph"
	"github.com/matzehuels/flowchart/pkg/render/sink"
)

const (
	formatSVG  = "svg"  // rendered frame
	formatJSON = "json" // frame as JSON
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple outputs)
	formats  []string // output formats: "svg", "json"
	events   string   // script file; default is the document's own events
	noEvents bool     // render the document as loaded
	labels   bool     // draw node labels
	ports    bool     // draw port anchors
	padding  float64  // viewBox padding around the diagram
	noCache  bool
}

// renderCommand creates the render command for painting a document.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{labels: true, ports: true, padding: 20}

	cmd := &cobra.Command{
		Use:   "render [document]",
		Short: "Render a document to SVG",
		Long: `Render a document to SVG.

The document's event script (or the script given with --events) is replayed
first, so the output shows the diagram after those gestures, including an
edge still being drawn. Use --no-events to render the document as loaded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json (comma-separated)")
	cmd.Flags().StringVarP(&opts.events, "events", "e", "", "event script to replay before rendering")
	cmd.Flags().BoolVar(&opts.noEvents, "no-events", false, "ignore embedded events")
	cmd.Flags().BoolVar(&opts.labels, "labels", opts.labels, "draw node labels")
	cmd.Flags().BoolVar(&opts.ports, "ports", opts.ports, "draw port anchors")
	cmd.Flags().Float64Var(&opts.padding, "padding", opts.padding, "padding around the diagram")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatSVG: true, formatJSON: true}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg' or 'json')", f)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. A known format
// extension on output is stripped as well.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath picks the file for one format. A single explicit output is
// used verbatim.
func outputPath(opts renderOpts, input, format string) string {
	if opts.output != "" && len(opts.formats) == 1 {
		return opts.output
	}
	return basePath(opts.output, input) + "." + format
}

// runRender loads the document, replays its script and writes each format.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	ctx = withLogger(ctx, c.Logger)
	logger := loggerFromContext(ctx)

	d, err := c.loadDiagram(ctx, input, opts.noCache)
	if err != nil {
		return err
	}

	if !opts.noEvents {
		events, err := readEvents(opts.events, d.source)
		if err != nil {
			return err
		}
		if len(events) > 0 {
			n, err := d.apply(ctx, events, nil)
			if err != nil {
				return fmt.Errorf("replay: %w", err)
			}
			logger.Infof("Replayed %d events", n)
		}
	}

	frame := d.frame()
	for _, format := range opts.formats {
		data, err := renderFrame(frame, format, opts)
		if err != nil {
			return err
		}
		path := outputPath(opts, input, format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(len(frame.Nodes), len(frame.Edges), "")
	return nil
}

// renderFrame encodes f in the given format.
func renderFrame(f graph.Frame, format string, opts renderOpts) ([]byte, error) {
	switch format {
	case formatSVG:
		var svgOpts []sink.SVGOption
		if opts.labels {
			svgOpts = append(svgOpts, sink.WithLabels())
		}
		if opts.ports {
			svgOpts = append(svgOpts, sink.WithPorts())
		}
		svgOpts = append(svgOpts, sink.WithPadding(opts.padding))
		return sink.RenderSVG(f, svgOpts...), nil
	case formatJSON:
		var buf bytes.Buffer
		if err := graph.WriteFrame(&buf, f); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
