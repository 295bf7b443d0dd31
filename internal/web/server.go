package web

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxBodyBytes bounds request bodies; a card document is far smaller.
const MaxBodyBytes = 1 << 20

// shutdownTimeout is how long in-flight requests get after a signal.
const shutdownTimeout = 5 * time.Second

// NewHandler builds the API router with its middleware.
func NewHandler(h *Handlers) http.Handler {
	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("POST /api/generate", h.HandleGenerate)
	mux.HandleFunc("POST /api/send", h.HandleSend)
	mux.HandleFunc("POST /api/share", h.HandleShare)
	mux.HandleFunc("GET /api/share", h.HandleLoad)
	mux.HandleFunc("GET /api/share/qr", h.HandleQR)
	mux.HandleFunc("POST /api/export", h.HandleExport)
	mux.HandleFunc("POST /api/lint", h.HandleLint)
	mux.HandleFunc("GET /api/templates", h.HandleTemplates)
	mux.HandleFunc("GET /api/templates/{name}", h.HandleTemplate)

	return requestID(h.logger, securityHeaders(mux))
}

// NewServer creates the HTTP server for the card API.
func NewServer(h *Handlers, addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewHandler(h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

type ctxKey int

const loggerKey ctxKey = iota

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestID tags every request with a ULID, echoes it in X-Request-Id and
// logs the outcome with it. Query strings are not logged; share tokens
// travel there.
func requestID(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ulid.Make().String()
		w.Header().Set("X-Request-Id", id)

		reqLogger := logger.With(zap.String("request_id", id))
		ctx := context.WithValue(r.Context(), loggerKey, reqLogger)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		reqLogger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// loggerFrom returns the request-scoped logger, or fallback outside a request.
func loggerFrom(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return fallback
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func Run(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("hookcard API listening", zap.String("addr", srv.Addr))
		if strings.HasPrefix(srv.Addr, ":") || strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "[::]") {
			logger.Warn("server is binding to all interfaces and may be accessible from the network")
		}
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
