package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/procwatch/internal/display"
	"github.com/agbru/procwatch/internal/logging"
	"github.com/agbru/procwatch/internal/sample"
	"github.com/agbru/procwatch/internal/sysmon"
)

const shutdownTimeout = 5 * time.Second

// ProcessLister returns the current process rows in the requested order.
type ProcessLister interface {
	Rows(sorter *display.Sorter) []sample.ProcessSample
}

// SystemReader returns host-wide totals.
type SystemReader interface {
	Collect(ctx context.Context) (sysmon.Totals, error)
}

// Server serves the headless HTTP API.
type Server struct {
	addr      string
	processes ProcessLister
	system    SystemReader
	metrics   *Metrics
	security  SecurityConfig
	logger    logging.Logger
}

// New returns a Server listening on addr once Start is called.
func New(addr string, processes ProcessLister, system SystemReader, metrics *Metrics, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Server{
		addr:      addr,
		processes: processes,
		system:    system,
		metrics:   metrics,
		security:  DefaultSecurityConfig(),
		logger:    logger,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	route := func(path string, h http.HandlerFunc) {
		mux.HandleFunc(path, SecurityMiddleware(s.security, s.metricsMiddleware(h)))
	}
	route("/metrics", s.handleMetrics)
	route("/api/processes", s.handleProcesses)
	route("/api/system", s.handleSystem)
	route("/healthz", s.handleHealth)
	return mux
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("http server listening", logging.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http shutdown", err)
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next(rec, r)
		s.metrics.observeRequest(r.URL.Path, rec.code)
	}
}

func (s *Server) allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	s.logger.Debug("method not allowed", logging.String("method", r.Method), logging.String("path", r.URL.Path))
	w.Header().Set("Allow", "GET, HEAD")
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.allowGet(w, r) {
		s.metrics.WritePrometheus(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.allowGet(w, r) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type processesResponse struct {
	Count     int                    `json:"count"`
	SortedBy  string                 `json:"sorted_by"`
	Processes []sample.ProcessSample `json:"processes"`
}

// handleProcesses accepts sort=cpu|mem|pid|name|state, order=asc|desc and
// limit=N.
func (s *Server) handleProcesses(w http.ResponseWriter, r *http.Request) {
	if !s.allowGet(w, r) {
		return
	}
	q := r.URL.Query()
	sorter := display.NewSorter()
	if col := q.Get("sort"); col != "" {
		c, ok := parseSortColumn(col)
		if !ok {
			http.Error(w, "unknown sort column "+strconv.Quote(col), http.StatusBadRequest)
			return
		}
		sorter.Column = c
	}
	switch q.Get("order") {
	case "", "desc":
	case "asc":
		sorter.Descending = false
	default:
		http.Error(w, "order must be asc or desc", http.StatusBadRequest)
		return
	}

	rows := s.processes.Rows(sorter)
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		if n < len(rows) {
			rows = rows[:n]
		}
	}
	writeJSON(w, http.StatusOK, processesResponse{Count: len(rows), SortedBy: sorter.ColumnName(), Processes: rows})
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	if !s.allowGet(w, r) {
		return
	}
	totals, err := s.system.Collect(r.Context())
	if err != nil {
		s.logger.Error("collect system totals", err)
		http.Error(w, "system totals unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func parseSortColumn(name string) (display.SortColumn, bool) {
	switch strings.ToLower(name) {
	case "cpu":
		return display.SortByCPU, true
	case "mem", "memory":
		return display.SortByMEM, true
	case "pid":
		return display.SortByPID, true
	case "name":
		return display.SortByName, true
	case "state":
		return display.SortByState, true
	}
	return 0, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
