// Package server renders the countdown widget over HTTP.
//
// Routes
//
//	GET  /               widget page; with ?row=N renders the read-only variant for row N
//	POST /toggle         switch between the display and configuration views
//	POST /save           persist the row selector (form field "row")
//	GET  /sheet          redirect to the spreadsheet editing page
//	GET  /api/view       current view as JSON
//	GET  /countdown.ics  tracked target as an iCalendar event
//	GET  /metrics        logger metrics snapshot as JSON
//	GET  /healthz        liveness probe
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/sheet-countdown/internal/calendar"
	"github.com/pfrederiksen/sheet-countdown/internal/configstore"
	"github.com/pfrederiksen/sheet-countdown/internal/logger"
	"github.com/pfrederiksen/sheet-countdown/internal/sheet"
	"github.com/pfrederiksen/sheet-countdown/internal/widget"
)

const shutdownTimeout = 5 * time.Second

// Config wires the server to its collaborators. Controller and Fetcher are required.
type Config struct {
	Addr       string
	Controller *widget.Controller
	// Fetcher serves the read-only ?row=N variant, which bypasses the controller.
	Fetcher widget.Fetcher
	// PageRefresh is how often the browser reloads the page.
	PageRefresh time.Duration
	Now         func() time.Time
}

// Server serves the widget page and its actions.
type Server struct {
	cfg  Config
	tmpl *template.Template
}

// New creates a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Controller == nil {
		return nil, errors.New("server: missing controller")
	}
	if cfg.Fetcher == nil {
		return nil, errors.New("server: missing fetcher")
	}
	if cfg.PageRefresh <= 0 {
		cfg.PageRefresh = widget.DefaultRefreshInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	tmpl, err := template.New("widget").Parse(widgetHTML)
	if err != nil {
		return nil, err
	}

	return &Server{cfg: cfg, tmpl: tmpl}, nil
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /toggle", s.handleToggle)
	mux.HandleFunc("POST /save", s.handleSave)
	mux.HandleFunc("GET /sheet", s.handleSheet)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /countdown.ics", s.handleICS)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /static/widget.css", s.handleCSS)
	return withLogging(withSecurityHeaders(mux))
}

// ListenAndServe serves on cfg.Addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", logger.Fields{"addr": s.cfg.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		logger.Info("HTTP server stopped", nil)
		return nil
	}
}

// pageModel is what the widget template renders.
type pageModel struct {
	widget.View
	ReadOnly       bool
	RefreshSeconds int
	DisplayClass   string
	ConfigClass    string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var model pageModel

	if raw, ok := r.URL.Query()["row"]; ok {
		row := configstore.ParseRow(firstOf(raw))
		render := widget.RunCycle(r.Context(), s.cfg.Fetcher, row, s.cfg.Now())
		model = pageModel{
			View: widget.View{
				Render:      render,
				State:       widget.StateDisplay,
				Display:     widget.Panel{Visible: true},
				Config:      widget.Panel{Hidden: true},
				ToggleGlyph: widget.GlyphClosed,
				Selector:    row,
				Loaded:      true,
			},
			ReadOnly: true,
		}
	} else {
		model = pageModel{View: s.cfg.Controller.Snapshot()}
		if model.Notice != "" {
			s.cfg.Controller.DismissNotice()
		}
	}

	model.RefreshSeconds = int(s.cfg.PageRefresh / time.Second)
	// Reload quickly while a transition or the first load is still running.
	if !model.Loaded || (model.Display.Visible && model.Config.Visible) {
		model.RefreshSeconds = 1
	}
	model.DisplayClass = model.Display.Classes()
	model.ConfigClass = model.Config.Classes()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.tmpl.Execute(w, model); err != nil {
		logger.Error("Rendering widget failed", nil, err)
	}
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Controller.Toggle(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(strings.TrimSpace(r.FormValue("row")))
	if err != nil {
		http.Error(w, "row must be a positive integer", http.StatusBadRequest)
		return
	}

	if _, err := s.cfg.Controller.Save(row); err != nil {
		switch {
		case errors.Is(err, configstore.ErrInvalidRow):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, widget.ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			logger.Error("Saving row failed", logger.Fields{"row": row}, err)
			http.Error(w, "could not save row", http.StatusInternalServerError)
		}
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	url, err := s.cfg.Controller.OpenSheet()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Controller.Snapshot())
}

func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	v := s.cfg.Controller.Snapshot()
	if !v.Loaded || v.Err != nil {
		http.Error(w, "countdown not available", http.StatusServiceUnavailable)
		return
	}

	sheetURL, _ := s.cfg.Controller.OpenSheet()
	ics, err := calendar.GenerateICS(sheet.RowRecord{Title: v.Title, Date: v.Date}, sheetURL, s.cfg.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="countdown.ics"`)
	_, _ = w.Write([]byte(ics))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, logger.GetMetricsSnapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(widgetCSS))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		logger.Error("Encoding JSON response failed", nil, err)
	}
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self'; base-uri 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("HTTP request", logger.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
		logger.IncrCounter("http.requests")
	})
}
