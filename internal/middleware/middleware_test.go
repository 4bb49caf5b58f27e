package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	route  string
	method string
	status int
}

type fakeRecorder struct {
	requests []recordedRequest
}

func (f *fakeRecorder) RecordRequest(route, method string, status int, _ time.Duration) {
	f.requests = append(f.requests, recordedRequest{route, method, status})
}

func newObservedRouter(rec RequestRecorder) http.Handler {
	r := mux.NewRouter()
	r.Use(CaptureRoute)
	r.HandleFunc("/api/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}).Methods(http.MethodGet)
	r.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fine"))
	})
	return Observe(zerolog.Nop(), rec)(r)
}

func TestObserve_LabelsByRouteTemplate(t *testing.T) {
	rec := &fakeRecorder{}
	router := newObservedRouter(rec)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/things/42", nil))

	require.Len(t, rec.requests, 1)
	assert.Equal(t, recordedRequest{"/api/things/{id}", http.MethodGet, http.StatusTeapot}, rec.requests[0])
}

func TestObserve_DefaultStatusIsOK(t *testing.T) {
	rec := &fakeRecorder{}
	router := newObservedRouter(rec)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

	require.Len(t, rec.requests, 1)
	assert.Equal(t, recordedRequest{"/ok", http.MethodGet, http.StatusOK}, rec.requests[0])
}

func TestObserve_RouterMisses(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		status int
	}{
		{"unknown path", http.MethodGet, "/nowhere", http.StatusNotFound},
		{"method mismatch", http.MethodPost, "/api/things/42", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			router := newObservedRouter(rec)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))

			require.Equal(t, tt.status, w.Code)
			require.Len(t, rec.requests, 1)
			assert.Equal(t, recordedRequest{"unmatched", tt.method, tt.status}, rec.requests[0])
		})
	}
}

func TestCaptureRoute_WithoutObserve(t *testing.T) {
	r := mux.NewRouter()
	r.Use(CaptureRoute)
	r.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestObserve_NilRecorder(t *testing.T) {
	handler := Observe(zerolog.Nop(), nil)(http.NotFoundHandler())
	assert.NotPanics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestCORS(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("simple request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/buildings", nil)
		req.Header.Set("Origin", "http://example.org")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/buildings", nil)
		req.Header.Set("Origin", "http://example.org")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodGet)
	})
}
