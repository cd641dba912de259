// Package server exposes flow chart sessions over HTTP.
//
// Each diagram is a [session.Session]: a flow engine plus the document that
// hosts it. Clients create a diagram from a document, post renderer events
// and read back frames, documents or SVG. Requests against one diagram are
// serialized by the session's mutex.
//
//	POST   /api/diagrams                 create from a JSON document
//	GET    /api/diagrams/{id}            current frame
//	DELETE /api/diagrams/{id}            drop the session
//	GET    /api/diagrams/{id}/document   host document
//	PUT    /api/diagrams/{id}/document   replace the document (rebuilds)
//	POST   /api/diagrams/{id}/events     apply renderer events
//	GET    /api/diagrams/{id}/svg        rendered SVG
//	GET    /api/diagrams/{id}/stream     frames as server-sent events
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flowchart/pkg/buildinfo"
	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/graph"
	"github.com/matzehuels/flowchart/pkg/layout"
	"github.com/matzehuels/flowchart/pkg/render/sink"
	"github.com/matzehuels/flowchart/pkg/session"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Config configures a Server. Zero values select defaults.
type Config struct {
	Store      session.Store   // default session.NewMemoryStore()
	Layouter   layout.Layouter // default layout.NewLayered()
	Logger     *log.Logger     // default log.Default()
	SessionTTL time.Duration   // default session.DefaultTTL
}

// Server routes HTTP requests to diagram sessions.
type Server struct {
	router chi.Router
	store  session.Store
	cfg    Config
	logger *log.Logger
}

// New creates a server with its routes registered.
func New(cfg Config) *Server {
	if cfg.Store == nil {
		cfg.Store = session.NewMemoryStore()
	}
	if cfg.Layouter == nil {
		cfg.Layouter = layout.NewLayered()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}

	s := &Server{
		router: chi.NewRouter(),
		store:  cfg.Store,
		cfg:    cfg,
		logger: cfg.Logger,
	}
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/diagrams", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleFrame)
			r.Delete("/", s.handleDelete)
			r.Get("/document", s.handleGetDocument)
			r.Put("/document", s.handlePutDocument)
			r.Post("/events", s.handleEvents)
			r.Get("/svg", s.handleSVG)
			r.Get("/stream", s.handleStream)
		})
	})
}

// Run serves on addr until ctx is done, then shuts down gracefully. Expired
// sessions are swept every sweep interval.
func (s *Server) Run(ctx context.Context, addr string, sweep time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx, sweep)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) sweep(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n, err := s.store.Cleanup(ctx); err != nil {
				s.logger.Warn("session cleanup failed", "err", err)
			} else if n > 0 {
				s.logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}

// =============================================================================
// Handlers
// =============================================================================

type createResponse struct {
	ID    string      `json:"id"`
	Frame graph.Frame `json:"frame"`
}

type eventsResponse struct {
	Applied int         `json:"applied"`
	Rebuilt bool        `json:"rebuilt"`
	Frame   graph.Frame `json:"frame"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	doc, err := graph.ReadDocument(http.MaxBytesReader(w, r.Body, maxBodyBytes), graph.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := session.New(r.Context(), doc, s.cfg.SessionTTL, s.engineOptions()...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("diagram created", "id", sess.ID, "nodes", len(doc.Nodes), "edges", len(doc.Edges))
	writeJSON(w, http.StatusCreated, createResponse{ID: sess.ID, Frame: sess.Frame()})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Frame())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(r.Context(), sess.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Document())
}

func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	doc, err := graph.ReadDocument(http.MaxBytesReader(w, r.Body, maxBodyBytes), graph.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	nodes, edges := doc.Flow()
	err = sess.Do(func(d *flow.Document, e *flow.Engine) error {
		d.SetNodes(nodes, false)
		d.SetEdges(edges)
		_, err := d.Commit(r.Context(), e)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Frame())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var events []flow.Event
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&events); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode events"))
		return
	}

	var resp eventsResponse
	err := sess.Do(func(d *flow.Document, e *flow.Engine) error {
		applied, dispatchErr := e.DispatchAll(events)
		resp.Applied = applied
		// Commit whatever was applied so the host sees deletions.
		rebuilt, err := d.Commit(r.Context(), e)
		resp.Rebuilt = rebuilt
		if dispatchErr != nil {
			return dispatchErr
		}
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp.Frame = sess.Frame()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	opts := []sink.SVGOption{sink.WithPorts()}
	if r.URL.Query().Get("labels") != "false" {
		opts = append(opts, sink.WithLabels())
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(sink.RenderSVG(sess.Frame(), opts...))
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	flusher, canFlush := w.(http.Flusher)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	frames := sess.Watch(r.Context())
	if err := writeSSE(w, sess.Frame()); err != nil {
		return
	}
	if canFlush {
		flusher.Flush()
	}
	for f := range frames {
		if err := writeSSE(w, f); err != nil {
			s.logger.Debug("stream closed", "id", sess.ID, "err", err)
			return
		}
		if canFlush {
			flusher.Flush()
		}
	}
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) engineOptions() []flow.Option {
	return []flow.Option{
		flow.WithLayouter(s.cfg.Layouter),
		flow.WithLogger(s.logger),
	}
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: string(code), Message: errors.UserMessage(err)})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSSE(w http.ResponseWriter, f graph.Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: frame\ndata: %s\n\n", data)
	return err
}
