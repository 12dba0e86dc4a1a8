// Package server is the tracking backend: kit issuing and validation, the
// meal catalog, the save endpoints and the insights view.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kittrack/kittrack/pkg/storage"
	"github.com/sirupsen/logrus"
)

type Options struct {
	// StringMenu serves menu_data as a JSON-encoded string instead of an
	// object, as older backends did.
	StringMenu bool
	Log        logrus.FieldLogger
}

type Server struct {
	DB         *storage.DB
	log        logrus.FieldLogger
	stringMenu bool
	now        func() time.Time
}

func New(db *storage.DB, opts Options) *Server {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Server{
		DB:         db,
		log:        log,
		stringMenu: opts.StringMenu,
		now:        time.Now,
	}
}

// Handler returns the routed, logged handler of the backend.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Pages
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /track", s.handleTrack)
	mux.HandleFunc("GET /insights/{kitId}", s.handleInsights)

	// API
	mux.HandleFunc("GET /validate-kit/{kitId}", s.handleValidateKit)
	mux.HandleFunc("POST /generate-kit", s.handleGenerateKit)
	mux.HandleFunc("GET /get-menu-data", s.handleMenuData)
	mux.HandleFunc("POST /save-tracking", s.handleSave(storage.KindTracking))
	mux.HandleFunc("POST /save-meal", s.handleSave(storage.KindMeal))
	mux.HandleFunc("POST /save-stool", s.handleSave(storage.KindStool))
	mux.HandleFunc("POST /save-mood", s.handleSave(storage.KindMood))
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.logRequests(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Starting server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Infof("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"uri":      r.RequestURI,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}
