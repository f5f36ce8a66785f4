package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"kahwadash/internal/config"
	"kahwadash/internal/dashboard"
	"kahwadash/internal/domain"
	"kahwadash/internal/export"
	"kahwadash/internal/session"

	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").
	Funcs(template.FuncMap{
		"formatTime": formatTime,
		"money":      renderMoney,
	}).ParseFS(templatesFS, "templates/*.html"))

// Server renders the manager dashboard and proxies staff mutations to the
// remote order service. Every page sits behind the session gate; /login and
// /healthz are the only ungated paths.
type Server struct {
	cfg      *config.Config
	gate     *session.Gate
	dash     *dashboard.Service
	client   domain.OrderService
	exporter *export.SheetsExporter
	logger   zerolog.Logger
	server   *http.Server
}

func NewServer(
	cfg *config.Config,
	gate *session.Gate,
	dash *dashboard.Service,
	client domain.OrderService,
	exporter *export.SheetsExporter,
	logger *zerolog.Logger,
) *Server {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "web").Logger()
	}

	srv := &Server{
		cfg:      cfg,
		gate:     gate,
		dash:     dash,
		client:   client,
		exporter: exporter,
		logger:   base,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", srv.handleLogin)
	mux.HandleFunc("/healthz", srv.handleHealthz)
	mux.Handle("/", srv.requireUnlocked(http.HandlerFunc(srv.routeGated)))

	handler := srv.loggingMiddleware(srv.rateLimitMiddleware(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

// Handler exposes the full middleware chain for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("dashboard listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// routeGated dispatches everything behind the gate. Paths with an id segment
// are matched by prefix; no router dependency needed at this size.
func (s *Server) routeGated(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case path == "/":
		s.handleDashboard(w, r)
	case hasIDSegment(path, "/menu/", "/stock"):
		s.handleUpdateStock(w, r)
	case hasIDSegment(path, "/orders/", "/status"):
		s.handleUpdateStatus(w, r)
	case len(path) > len("/receipt/") && path[:len("/receipt/")] == "/receipt/":
		s.handleReceipt(w, r)
	case path == "/export/orders.xlsx":
		s.handleExportExcel(w, r)
	case path == "/export/sheets":
		s.handleExportSheets(w, r)
	default:
		s.renderError(w, http.StatusNotFound, "Page not found")
	}
}
