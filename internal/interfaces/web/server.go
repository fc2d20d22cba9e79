// Package web serves a small read-only status page for a running
// reservation.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/srt-reserver/internal/application/usecases"
	"github.com/example/srt-reserver/internal/domain/reservation"
)

type Server struct {
	request reservation.Request
	session *reservation.Session
	// bcrypt hash; empty disables basic auth
	passwordHash string
	tmpl         *template.Template
	log          *slog.Logger
}

func New(req reservation.Request, session *reservation.Session, passwordHash string, log *slog.Logger) (*Server, error) {
	tmpl, err := ParseTemplates()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{request: req, session: session, passwordHash: passwordHash, tmpl: tmpl, log: log}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("GET /status", s.requireAuth(s.handleStatus))
	mux.HandleFunc("GET /{$}", s.requireAuth(s.handleHome))
	return s.logging(mux)
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("http request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.passwordHash == "" {
			next(w, r)
			return
		}
		_, password, ok := r.BasicAuth()
		if !ok || !usecases.VerifyPassword(s.passwordHash, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="srtres", charset="UTF-8"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

type statusData struct {
	Origin      string               `json:"origin"`
	Destination string               `json:"destination"`
	Date        string               `json:"date"`
	Hour        string               `json:"hour"`
	Trains      int                  `json:"trains"`
	Waitlist    bool                 `json:"waitlist"`
	Session     reservation.Snapshot `json:"session"`
}

func (s *Server) status() statusData {
	return statusData{
		Origin:      s.request.Origin(),
		Destination: s.request.Destination(),
		Date:        s.request.DateValue(),
		Hour:        s.request.Hour(),
		Trains:      s.request.Trains(),
		Waitlist:    s.request.Waitlist(),
		Session:     s.session.Snapshot(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.status()); err != nil {
		s.log.Warn("write status", "err", err)
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "status.html", s.status()); err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
	}
}

// Start serves h on addr until ctx is cancelled.
func Start(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("status page listening", "addr", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
