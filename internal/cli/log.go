// Package cli implements the flowchart command-line interface.
//
// The commands drive the interactive engine in pkg/flow without a browser:
// they lay out host documents, replay gesture scripts against them, render
// frames as SVG and serve live diagrams over HTTP. The CLI is built using
// cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - layout: Place every node and write the resulting frame or document
//   - render: Paint a document (optionally after a gesture script) as SVG
//   - replay: Apply a gesture script and write the host document back
//   - inspect: Step through a gesture script in the terminal
//   - serve: Host diagrams over HTTP
//   - cache: Manage the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
// At debug level the observability hooks log layout runs, cache lookups and
// engine rebuilds.
//
// # Configuration
//
// Settings are read from flowchart.toml in the working directory, or from
// the file named by --config. Flags override file values.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
// The returned progress should call done when the operation completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Resolved 42 packages (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
// Using a distinct type prevents collisions with other packages.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
// The logger can be retrieved later with loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
// This ensures commands always have a valid logger even if context setup fails.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability
// =============================================================================

// logHooks reports layout, cache and engine events at debug level.
type logHooks struct {
	logger *log.Logger
}

// registerHooks installs logHooks for l. It is a no-op above debug level.
func registerHooks(l *log.Logger) {
	if l.GetLevel() > log.DebugLevel {
		observability.Reset()
		return
	}
	h := logHooks{logger: l}
	observability.SetLayoutHooks(h)
	observability.SetCacheHooks(h)
	observability.SetEngineHooks(h)
}

func (h logHooks) OnLayoutStart(_ context.Context, engine string, nodes int) {
	h.logger.Debug("layout start", "engine", engine, "nodes", nodes)
}

func (h logHooks) OnLayoutComplete(_ context.Context, engine string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "engine", engine, "took", d.Round(time.Microsecond), "err", err)
		return
	}
	h.logger.Debug("layout done", "engine", engine, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnCacheHit(_ context.Context, engine string) {
	h.logger.Debug("cache hit", "engine", engine)
}

func (h logHooks) OnCacheMiss(_ context.Context, engine string) {
	h.logger.Debug("cache miss", "engine", engine)
}

func (h logHooks) OnCacheSet(_ context.Context, engine string, size int) {
	h.logger.Debug("cache set", "engine", engine, "bytes", size)
}

func (h logHooks) OnRebuild(_ context.Context, id string, nodes, edges int, d time.Duration) {
	h.logger.Debug("rebuild", "engine", id, "nodes", nodes, "edges", edges, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnGesture(id, op string) {
	h.logger.Debug("gesture", "engine", id, "op", op)
}

func (h logHooks) OnEdgesReported(id string, count int) {
	h.logger.Debug("edges reported", "engine", id, "count", count)
}
