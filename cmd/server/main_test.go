package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CampusOntology.api/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeInflux(t *testing.T, healthy bool, bucket string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			if !healthy {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"name":"influxdb","message":"not ready","status":"fail","checks":[]}`))
				return
			}
			_, _ = w.Write([]byte(`{"name":"influxdb","message":"ready","status":"pass","checks":[]}`))
		case "/api/v2/buckets":
			if r.URL.Query().Get("name") == bucket {
				_, _ = w.Write([]byte(`{"buckets":[{"id":"b1","name":"` + bucket + `","orgID":"o1","retentionRules":[]}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"buckets":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLiveOccupancy(t *testing.T) {
	tests := []struct {
		name     string
		healthy  bool
		bucket   string
		disabled bool
		wantLive bool
	}{
		{name: "not configured", disabled: true},
		{name: "healthy with bucket", healthy: true, bucket: "parking", wantLive: true},
		{name: "unhealthy", healthy: false, bucket: "parking"},
		{name: "missing bucket", healthy: true, bucket: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeInflux(t, tt.healthy, tt.bucket)
			cfg := config.InfluxDBConfig{
				URL:     srv.URL,
				Token:   "token",
				Org:     "campus",
				Bucket:  "parking",
				Timeout: time.Second,
			}
			if tt.disabled {
				cfg.Token = ""
			}

			live, closeLive := liveOccupancy(cfg, zerolog.Nop(), nil)
			if !tt.wantLive {
				assert.Nil(t, live)
				assert.Nil(t, closeLive)
				return
			}
			require.NotNil(t, live)
			require.NotNil(t, closeLive)
			closeLive()
		})
	}
}
