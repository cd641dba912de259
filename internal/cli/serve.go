package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/internal/server"
	"github.com/matzehuels/flowchart/pkg/session"
)

// serveCommand creates the serve command, which hosts diagrams over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		sweep   time.Duration
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve interactive diagrams over HTTP",
		Long: `Serve interactive diagrams over HTTP.

Each POSTed document becomes a session with its own engine. Renderers post
gesture events and read back frames, documents or SVG, or subscribe to frames
as server-sent events. Idle sessions expire after [server] session_ttl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, sweep, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().DurationVar(&sweep, "sweep", time.Minute, "interval between expired-session sweeps")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, sweep time.Duration, noCache bool) error {
	l, err := c.newLayouter(noCache)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Store:      session.NewMemoryStore(),
		Layouter:   l,
		Logger:     c.Logger,
		SessionTTL: c.Config.Server.sessionTTL(),
	})

	printKeyValue("Address", addr)
	printKeyValue("Layout", l.Name())
	printKeyValue("Session TTL", c.Config.Server.sessionTTL().String())
	printNewline()

	if err := srv.Run(ctx, addr, sweep); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	printSuccess("Server stopped")
	return nil
}
