// Package middleware wraps the API router with CORS, request logging and metrics.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// RequestRecorder receives one call per finished request.
type RequestRecorder interface {
	RecordRequest(route, method string, status int, duration time.Duration)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// CORS allows cross-origin reads from any origin.
func CORS(next http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(next)
}

const unmatchedRoute = "unmatched"

type routeKey struct{}

type routeLabel struct {
	template string
}

// Observe logs every request and reports it to recorder, labelled by the
// mux route template that CaptureRoute saw. Wrap the whole router with it so
// 404 and 405 answers are observed too; those are labelled "unmatched".
func Observe(logger zerolog.Logger, recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			label := &routeLabel{template: unmatchedRoute}

			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), routeKey{}, label)))

			duration := time.Since(start)
			if recorder != nil {
				recorder.RecordRequest(label.template, r.Method, rec.status, duration)
			}
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", label.template).
				Int("status", rec.status).
				Dur("duration", duration).
				Msg("Handled request")
		})
	}
}

// CaptureRoute is installed with router.Use. mux only runs it for matched
// routes, where it hands the route template back to Observe.
func CaptureRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if label, ok := r.Context().Value(routeKey{}).(*routeLabel); ok {
			label.template = routeTemplate(r)
		}
		next.ServeHTTP(w, r)
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return unmatchedRoute
}
