package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/smkplugin/pkg/model"
)

type ctxKey string

const (
	ctxKeyRequestID  ctxKey = "request_id"
	ctxKeyDescriptor ctxKey = "descriptor"
)

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// descriptorFields is filled in by the descriptor handlers and reported on
// the request log line.
type descriptorFields struct {
	initialPath string
	language    model.DescriptorLanguage
}

// noteDescriptor records the descriptor a request operated on.
func noteDescriptor(ctx context.Context, initialPath string, lang model.DescriptorLanguage) {
	if f, ok := ctx.Value(ctxKeyDescriptor).(*descriptorFields); ok {
		f.initialPath = initialPath
		f.language = lang
	}
}

// requestIDMiddleware assigns a req_ ID, stores it in context and echoes it
// in the X-Request-ID header.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := requestID()
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs each request at INFO, with the descriptor path and
// language when a descriptor handler served it.
func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			fields := &descriptorFields{}
			r = r.WithContext(context.WithValue(r.Context(), ctxKeyDescriptor, fields))

			next.ServeHTTP(ww, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
				"request_id", RequestIDFromContext(r.Context()),
			}
			if fields.initialPath != "" {
				attrs = append(attrs, "initial_path", fields.initialPath, "language", fields.language)
			}
			logger.Info("request", attrs...)
		})
	}
}

// recoverMiddleware turns a handler panic into an INTERNAL_ERROR response.
func recoverMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				reqID := RequestIDFromContext(r.Context())
				logger.Error("handler panic", "panic", rec, "path", r.URL.Path, "request_id", reqID)
				respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
					Code:    model.ErrInternal,
					Message: "internal server error",
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
