// Package server exposes connection searches and LOC summaries over HTTP.
//
// It serves a small HTML front page plus a JSON API:
//
//	GET /                         front page, ?user= pre-fills and runs a search
//	GET /api/connections/{user}   ranked related accounts
//	GET /api/connections/{user}/graph  relationship graph as SVG
//	GET /api/loc/{user}           lines-of-code summary
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/ghorbit/pkg/connections"
	"github.com/matzehuels/ghorbit/pkg/errors"
	"github.com/matzehuels/ghorbit/pkg/loc"
)

// Options configures a Server.
type Options struct {
	Addr     string // listen address, e.g. ":8080"
	Searcher *connections.Searcher
	Counter  *loc.Counter
	Logger   *log.Logger // nil = log.Default()
}

// Server is the HTTP front end.
type Server struct {
	addr     string
	searcher *connections.Searcher
	counter  *loc.Counter
	logger   *log.Logger
	router   chi.Router
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		addr:     opts.Addr,
		searcher: opts.Searcher,
		counter:  opts.Counter,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/connections/{user}", s.handleConnections)
		r.Get("/connections/{user}/graph", s.handleGraph)
		r.Get("/loc/{user}", s.handleLOC)
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

// connectionsResponse is the /api/connections payload.
type connectionsResponse struct {
	ID       string           `json:"id"`
	Handle   string           `json:"handle"`
	Total    int              `json:"total"`
	Accounts []accountPayload `json:"accounts"`
}

type accountPayload struct {
	Handle     string   `json:"handle"`
	ProfileURL string   `json:"profile_url"`
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons"`
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	res, err := s.searcher.Search(r.Context(), user)
	if err != nil {
		s.writeError(w, err)
		return
	}

	payload := connectionsResponse{
		ID:       res.ID,
		Handle:   res.Handle,
		Total:    res.Total,
		Accounts: make([]accountPayload, 0, len(res.Accounts)),
	}
	for _, a := range res.Accounts {
		payload.Accounts = append(payload.Accounts, accountPayload{
			Handle:     a.Handle,
			ProfileURL: a.ProfileURL,
			Score:      a.Score(res.Weights),
			Reasons:    connections.Reasons(a, res.Handle),
		})
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	res, err := s.searcher.Search(r.Context(), user)
	if err != nil {
		s.writeError(w, err)
		return
	}

	svg, err := connections.RenderSVG(connections.ToDOT(res))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render graph"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

func (s *Server) handleLOC(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	sum, err := s.counter.Count(r.Context(), user)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sum)
}

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var payload errorPayload
	payload.Error.Code = string(errors.GetCode(err))
	if payload.Error.Code == "" {
		payload.Error.Code = string(errors.ErrCodeInternal)
	}
	payload.Error.Message = errors.UserMessage(err)
	s.writeJSON(w, statusFor(err), payload)
}

// statusFor maps application error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidLogin, errors.ErrCodeInvalidRepo:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeUserNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeServer, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}
