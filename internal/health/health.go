package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

// Pinger checks a dependency, e.g. *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SessionCounter reports how many chat sessions are live
type SessionCounter interface {
	Len() int
}

// Report is the body of GET /healthz
type Report struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	DB       string `json:"db"`
}

// NewRouter mounts the health endpoints
func NewRouter(db Pinger, sessions SessionCounter, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", handleHealth(db, sessions, logger))
	return r
}

func handleHealth(db Pinger, sessions SessionCounter, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := Report{Status: "ok", Sessions: sessions.Len(), DB: "ok"}
		code := http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("Health check: database unreachable", zap.Error(err))
			report.Status = "degraded"
			report.DB = "unreachable"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(report)
	}
}

// Serve runs the health server on addr until ctx is cancelled
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Health server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
