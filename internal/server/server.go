package server

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/icsfix/icsfix/internal/config"
	"github.com/icsfix/icsfix/internal/database"
	applog "github.com/icsfix/icsfix/internal/log"
	"github.com/icsfix/icsfix/internal/metrics"
	"github.com/icsfix/icsfix/internal/model"
	"github.com/icsfix/icsfix/internal/pipeline"
)

// AttachmentFilename is the download name suggested for fixed calendars.
const AttachmentFilename = "modified_calendar.ics"

//go:embed templates/instructions.html templates/error.html
var templateFS embed.FS

var (
	instructionsHTML []byte
	errorTemplate    *template.Template
)

func init() {
	b, err := templateFS.ReadFile("templates/instructions.html")
	if err != nil {
		panic(fmt.Sprintf("embedded instructions template missing: %v", err))
	}
	instructionsHTML = b
	errorTemplate = template.Must(template.ParseFS(templateFS, "templates/error.html"))
}

// Server is the HTTP front of the relay. It accepts calendar URLs,
// runs them through the pipeline, and hands back the fixed document.
type Server struct {
	cfg       *config.Config
	processor *pipeline.Processor
	logger    *slog.Logger
	metrics   *metrics.Metrics
	audit     *database.AuditDB
	mux       *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithServerLogger sets a custom logger.
func WithServerLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics attaches Prometheus instrumentation and exposes it on
// the /metrics endpoint.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithAuditDB attaches the request audit store. Without it no request
// history is persisted.
func WithAuditDB(db *database.AuditDB) Option {
	return func(s *Server) {
		s.audit = db
	}
}

// NewServer creates a Server around an already constructed processor.
func NewServer(cfg *config.Config, processor *pipeline.Processor, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		processor: processor,
		mux:       http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/health", s.handleHealth)
	if s.metrics != nil {
		s.mux.Handle("/metrics", s.metrics.Handler())
	}
}

// handleRoot serves the single relay endpoint.
//
// A GET without ics_url returns the instructions page. A GET with
// ics_url runs the pipeline and returns either the fixed calendar or
// a client error. OPTIONS answers CORS preflight.
//
// Every response carries Access-Control-Allow-Origin: * so the relay
// can be called from browser calendar apps on any origin.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")

	switch r.Method {
	case http.MethodOptions:
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleRelay(w, r)
	default:
		w.Header().Set("Allow", "GET, OPTIONS")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	icsURL := r.URL.Query().Get("ics_url")
	if icsURL == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(instructionsHTML)
		return
	}

	if s.metrics != nil {
		s.metrics.RequestStarted()
		defer s.metrics.RequestDone()
	}

	report, err := s.processor.Process(r.Context(), icsURL)

	s.record(r, report)

	if err != nil {
		s.writeFailure(w, r, report)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", AttachmentFilename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report.ModifiedDocument))
}

// writeFailure renders a pipeline failure as a client error. Clients
// that accept HTML get the styled error page; everything else gets a
// one-line plain text body.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, report *model.RelayReport) {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "text/html") || strings.Contains(accept, "*/*") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		if err := errorTemplate.Execute(w, struct{ ErrorMessage string }{report.ErrorMessage}); err != nil {
			s.logger.Error("failed to render error page", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, "Error: %s", report.ErrorMessage)
}

// record persists the outcome to the audit store and updates metrics.
// Neither touches the fetched document or the full source URL; error
// text is scrubbed of embedded URLs, which the transport quotes with
// their query string intact.
func (s *Server) record(r *http.Request, report *model.RelayReport) {
	if s.metrics != nil {
		s.metrics.Observe(report)
	}
	if s.audit == nil {
		return
	}

	record := &model.AuditRecord{
		Timestamp:    time.Now(),
		Host:         hostOf(report.SourceURL),
		Outcome:      report.Outcome.String(),
		ErrorMessage: applog.RedactText(report.ErrorMessage),
		BytesFetched: report.BytesFetched,
		DurationMS:   report.Duration.Milliseconds(),
	}

	if _, err := s.audit.SaveRequest(r.Context(), record); err != nil {
		s.logger.Error("failed to save audit record",
			"error", err,
			"url", applog.RedactURL(report.SourceURL),
		)
	}
}

// hostOf extracts the hostname from a raw URL, empty when unparsable.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
