package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/graph"
)

// replayCommand creates the replay command, which applies a gesture script
// and writes the resulting host document.
func (c *CLI) replayCommand() *cobra.Command {
	var (
		output  string
		frame   string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "replay [document] [script]",
		Short: "Apply a gesture script and write the resulting document",
		Long: `Apply a gesture script and write the resulting document.

Events are applied one at a time, the way a renderer would deliver them. After
each event the host document takes whatever the engine reported, so deleting a
node rebuilds the diagram before the next event. The script defaults to the
events embedded in the document.

The written document carries every node's final position and no events.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			script := ""
			if len(args) == 2 {
				script = args[1]
			}
			return c.runReplay(cmd.Context(), args[0], script, output, frame, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output document (default: <input>.replayed<ext>)")
	cmd.Flags().StringVar(&frame, "frame", "", "also write the final frame as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runReplay(ctx context.Context, input, script, output, framePath string, noCache bool) error {
	ctx = withLogger(ctx, c.Logger)
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	d, err := c.loadDiagram(ctx, input, noCache)
	if err != nil {
		return err
	}
	events, err := readEvents(script, d.source)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		printWarning("No events to replay")
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Replaying %d events...", len(events)))
	spinner.Start()
	applied, err := d.apply(ctx, events, func(i int, ev flow.Event, rebuilt bool) {
		spinner.SetMessage(fmt.Sprintf("Replaying %d/%d", i+1, len(events)))
		logger.Debug("applied", "step", i, "event", ev.Type, "rebuilt", rebuilt, "generation", d.engine.Generation())
	})
	spinner.Stop()
	if err != nil {
		printError("Replay stopped after %d of %d events", applied, len(events))
		return err
	}

	outputPath := output
	if outputPath == "" {
		ext := filepath.Ext(input)
		outputPath = strings.TrimSuffix(input, ext) + ".replayed" + ext
	}
	if err := graph.WriteDocumentFile(d.document(), outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	if framePath != "" {
		if err := writeFrameFile(d.frame(), framePath); err != nil {
			return fmt.Errorf("write frame %s: %w", framePath, err)
		}
	}

	prog.done(fmt.Sprintf("Replayed %d events", applied))
	printFile(outputPath)
	if framePath != "" {
		printFile(framePath)
	}
	printStats(len(d.host.Nodes), len(d.host.Edges), "")
	return nil
}
