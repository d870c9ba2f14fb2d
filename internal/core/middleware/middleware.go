// Package middleware defines HTTP middlewares for the core server.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/cors"

	"github.com/mohammed-shakir/dggs-ldapi/internal/core/apperr"
	mylog "github.com/mohammed-shakir/dggs-ldapi/internal/logger"
)

// StatusWriter records the status code written through it.
type StatusWriter struct {
	http.ResponseWriter
	Code  int
	wrote bool
}

func NewStatusWriter(w http.ResponseWriter) *StatusWriter {
	if sw, ok := w.(*StatusWriter); ok {
		return sw
	}
	return &StatusWriter{ResponseWriter: w, Code: http.StatusOK}
}

func (w *StatusWriter) WriteHeader(code int) {
	if w.wrote {
		return
	}
	w.Code = code
	w.wrote = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *StatusWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

// Written reports whether headers have gone out.
func (w *StatusWriter) Written() bool { return w.wrote }

func (w *StatusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func Logging(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = mylog.NewID()
			}
			w.Header().Set("X-Request-ID", reqID)
			ctx := mylog.WithRequestID(r.Context(), reqID)
			ctx = mylog.WithComponent(ctx, "http")

			sw := NewStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			l.LogAttrs(ctx, slog.LevelDebug, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.Int("status", sw.Code),
				slog.Duration("elapsed", time.Since(start)),
			)
		}
		return http.HandlerFunc(fn)
	}
}

// Recover turns a panic into a 500 with the generic failure body.
func Recover(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			sw := NewStatusWriter(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				l.ErrorContext(r.Context(), "panic recovered", "err", rec, "path", r.URL.Path)
				if !sw.Written() {
					apperr.Write(sw, r, nil, apperr.DataSourceUnavailable(fmt.Errorf("panic: %v", rec)))
				}
			}()
			next.ServeHTTP(sw, r)
		}
		return http.HandlerFunc(fn)
	}
}

// CORS allows read-only cross-origin access and exposes the negotiation headers.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Accept-Profile", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Link", "Content-Profile", "X-Request-ID"},
		MaxAge:         300,
	})
}
