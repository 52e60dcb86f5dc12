package httpapi

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamed0406/probeharness/internal/domain"
	apimw "github.com/hamed0406/probeharness/internal/httpapi/middleware"
	"github.com/hamed0406/probeharness/internal/probe"
	"github.com/hamed0406/probeharness/internal/registry"
	"github.com/hamed0406/probeharness/internal/repo"
	"github.com/hamed0406/probeharness/internal/suite"
)

//go:embed templates/*.html
var templateFS embed.FS

var probesTmpl = template.Must(template.ParseFS(templateFS, "templates/probes.html"))

// RunnerFactory builds a runner for one request. Options carry the
// request's output buffer.
type RunnerFactory func(p suite.Policy, opts ...suite.Option) (suite.ProbeRunner, error)

type Server struct {
	Logger    *zap.Logger
	Runs      repo.RunStore
	NewRunner RunnerFactory
	// RunLock serializes probe runs. It may be shared with a scheduler.
	RunLock sync.Locker
}

func NewServer(l *zap.Logger, runs repo.RunStore, newRunner RunnerFactory) *Server {
	return &Server{Logger: l, Runs: runs, NewRunner: newRunner, RunLock: &sync.Mutex{}}
}

func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, viewRPM, viewBurst int) http.Handler {
	r := chi.NewRouter()
	if len(allowedOrigins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(viewRPM, viewBurst))
		r.Use(apimw.RequireAny(keys))
		r.Get("/probes", s.handleProbesView)
		r.Get("/api/probes", s.handleProbesJSON)
		r.Get("/api/runs", s.handleListRuns)
		r.With(apimw.RequireAdmin(keys)).Post("/api/runs", s.handleStartRun)
	})
	return r
}

// viewPolicy is used for every run started over HTTP.
var viewPolicy = suite.Policy{Verbosity: 2, Interactive: false, FailFast: false}

// run executes one probe run with its output captured in memory.
func (s *Server) run(r *http.Request, p suite.Policy, labels []string) (*suite.Report, string, error) {
	var buf bytes.Buffer
	runner, err := s.NewRunner(p, suite.WithOutput(&buf), suite.WithDiag(&buf))
	if err != nil {
		return nil, "", err
	}

	s.RunLock.Lock()
	defer s.RunLock.Unlock()
	rep, err := runner.Execute(r.Context(), labels)
	return rep, buf.String(), err
}

// structural reports whether err is caused by the request's labels or the
// probe collections rather than by the server.
func structural(err error) bool {
	return errors.Is(err, probe.ErrLabelFormat) ||
		errors.Is(err, probe.ErrNotProbe) ||
		errors.Is(err, probe.ErrNotProbeClass) ||
		errors.Is(err, probe.ErrCollectionLoad) ||
		errors.Is(err, registry.ErrUnknownApp)
}

func (s *Server) runError(w http.ResponseWriter, err error, labels []string) {
	if structural(err) {
		s.Logger.Info("probe_run_rejected", zap.Strings("labels", labels), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.Logger.Warn("probe_run_error", zap.Strings("labels", labels), zap.Error(err))
	http.Error(w, "probe run failed", http.StatusInternalServerError)
}

type probesView struct {
	Labels      []string
	Suite       []string
	Entries     []probe.Entry
	Failures    []probe.Entry
	Errors      []probe.Entry
	Total       int
	Passed      bool
	Interrupted bool
	Duration    time.Duration
	Output      string
}

func (s *Server) handleProbesView(w http.ResponseWriter, r *http.Request) {
	labels := r.URL.Query()["label"]
	rep, out, err := s.run(r, viewPolicy, labels)
	if err != nil {
		s.runError(w, err, labels)
		return
	}

	v := probesView{
		Labels:      labels,
		Entries:     rep.Result.Entries,
		Failures:    rep.Result.Failures,
		Errors:      rep.Result.Errors,
		Total:       rep.Result.ProbesRun,
		Passed:      rep.Result.WasSuccessful(),
		Interrupted: rep.Result.Interrupted,
		Duration:    rep.Duration.Round(time.Millisecond),
		Output:      out,
	}
	for _, n := range rep.Suite.Leaves() {
		v.Suite = append(v.Suite, n.ID())
	}

	var page bytes.Buffer
	if err := probesTmpl.Execute(&page, v); err != nil {
		s.Logger.Error("probes_view_render_error", zap.Error(err))
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page.Bytes())
}

type runResponse struct {
	Suite  []string         `json:"suite"`
	Run    domain.RunRecord `json:"run"`
	Output string           `json:"output"`
	Failed []probe.Entry    `json:"failed,omitempty"`
}

func (s *Server) writeRun(w http.ResponseWriter, rep *suite.Report, out string) {
	resp := runResponse{Output: out}
	for _, n := range rep.Suite.Leaves() {
		resp.Suite = append(resp.Suite, n.ID())
	}
	resp.Run = rep.Record()
	resp.Failed = append(append(resp.Failed, rep.Result.Errors...), rep.Result.Failures...)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleProbesJSON(w http.ResponseWriter, r *http.Request) {
	labels := r.URL.Query()["label"]
	rep, out, err := s.run(r, viewPolicy, labels)
	if err != nil {
		s.runError(w, err, labels)
		return
	}
	s.writeRun(w, rep, out)
}

type startPayload struct {
	Labels   []string `json:"labels"`
	FailFast bool     `json:"failfast"`
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var p startPayload
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}
	}
	pol := viewPolicy
	pol.FailFast = p.FailFast
	rep, out, err := s.run(r, pol, p.Labels)
	if err != nil {
		s.runError(w, err, p.Labels)
		return
	}
	s.Logger.Info("probe_run_triggered",
		zap.Strings("labels", p.Labels),
		zap.Int("failures", rep.Failures),
	)
	s.writeRun(w, rep, out)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 500)
	}
	runs, err := s.Runs.RecentRuns(r.Context(), limit)
	if err != nil {
		s.Logger.Warn("list_runs_error", zap.Error(err))
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []domain.RunRecord{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(runs)
}
