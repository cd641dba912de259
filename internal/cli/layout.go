package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/pkg/graph"
)

// layoutCommand creates the layout command for placing every node.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output   string
		document bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "layout [document]",
		Short: "Place every node of a document and write the frame",
		Long: `Place every node of a document and write the frame.

Nodes without a position are arranged left to right by the configured layout
engine. The output is the frame a renderer would paint: node boxes, absolute
port anchors and edge segments. With --document the input document is written
back instead, with every node carrying its computed position.

Layout results are cached locally by graph topology.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, document, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.frame.json)")
	cmd.Flags().BoolVar(&document, "document", false, "write the positioned document instead of the frame")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runLayout loads the document, builds the snapshot and writes output.
func (c *CLI) runLayout(ctx context.Context, input, output string, document, noCache bool) error {
	ctx = withLogger(ctx, c.Logger)
	prog := newProgress(loggerFromContext(ctx))

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", c.Config.Layout.Engine))
	spinner.Start()

	d, err := c.loadDiagram(ctx, input, noCache)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		if document {
			outputPath = base + ".layout" + filepath.Ext(input)
		} else {
			outputPath = base + ".frame.json"
		}
	}

	if document {
		err = graph.WriteDocumentFile(d.document(), outputPath)
	} else {
		err = writeFrameFile(d.frame(), outputPath)
	}
	if err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	snap := d.engine.Snapshot()
	prog.done("Layout complete")
	printFile(outputPath)
	printStats(len(snap.Nodes), len(d.engine.ActiveEdges()), c.Config.Layout.Engine)
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}

// writeFrameFile writes f as indented JSON to path.
func writeFrameFile(f graph.Frame, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := graph.WriteFrame(out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
