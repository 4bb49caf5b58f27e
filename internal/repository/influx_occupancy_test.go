package repository

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const occupancyCSV = `#datatype,string,long,dateTime:RFC3339,dateTime:RFC3339,dateTime:RFC3339,double,string,string,string
#group,false,false,true,true,false,false,true,true,true
#default,_result,,,,,,,,
,result,table,_start,_stop,_time,_value,_field,_measurement,lot_id
,,0,1970-01-01T00:00:00Z,2026-10-18T00:00:00Z,2026-10-17T12:00:00Z,63.5,occupancy,parking_occupancy,http://tamu.edu/ontologies/tamu_ont#Lot50

`

func TestOccupancyQuery_EscapesLotID(t *testing.T) {
	q := occupancyQuery("campus", `urn:lot"50\`)

	assert.Contains(t, q, `from(bucket: "campus")`)
	assert.Contains(t, q, `r["lot_id"] == "urn:lot\"50\\"`)
	assert.Contains(t, q, `r["_measurement"] == "parking_occupancy"`)
	assert.Contains(t, q, "|> last()")
}

func TestFormatReading(t *testing.T) {
	tests := []struct {
		name  string
		in    interface{}
		want  string
		found bool
	}{
		{"float", 63.5, "63.5", true},
		{"int", int64(40), "40", true},
		{"uint", uint64(7), "7", true},
		{"string", "42%", "42%", true},
		{"empty string", "", "", false},
		{"bool", true, "", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := formatReading(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.found, found)
		})
	}
}

func TestInfluxOccupancyRepository_LatestOccupancy(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/query" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		gotQuery = string(body)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write([]byte(occupancyCSV))
	}))
	defer srv.Close()

	repo := NewInfluxOccupancyRepository(srv.URL, "token", "campus-org", "campus", 2*time.Second, zerolog.Nop())
	defer repo.Close()

	v, found, err := repo.LatestOccupancy(context.Background(), "http://tamu.edu/ontologies/tamu_ont#Lot50")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "63.5", v)
	assert.True(t, strings.Contains(gotQuery, "parking_occupancy"))
}

func TestInfluxOccupancyRepository_QueryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"internal error","message":"boom"}`))
	}))
	defer srv.Close()

	repo := NewInfluxOccupancyRepository(srv.URL, "token", "campus-org", "campus", 2*time.Second, zerolog.Nop())
	defer repo.Close()

	_, found, err := repo.LatestOccupancy(context.Background(), "urn:lot")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestInfluxOccupancyRepository_CheckBucket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/buckets" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("name") == "campus" {
			_, _ = w.Write([]byte(`{"buckets":[{"id":"b1","name":"campus","orgID":"o1","retentionRules":[]}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"buckets":[]}`))
	}))
	defer srv.Close()

	tests := []struct {
		bucket  string
		wantErr bool
	}{
		{"campus", false},
		{"missing", true},
		{"_monitoring", true},
	}
	for _, tt := range tests {
		t.Run(tt.bucket, func(t *testing.T) {
			repo := NewInfluxOccupancyRepository(srv.URL, "token", "campus-org", tt.bucket, 2*time.Second, zerolog.Nop())
			defer repo.Close()

			err := repo.CheckBucket(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInfluxOccupancyRepository_CheckHealth(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"pass", http.StatusOK, `{"name":"influxdb","message":"ready for queries and writes","status":"pass","checks":[]}`, false},
		{"fail", http.StatusServiceUnavailable, `{"name":"influxdb","message":"not ready","status":"fail","checks":[]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			repo := NewInfluxOccupancyRepository(srv.URL, "token", "campus-org", "campus", 2*time.Second, zerolog.Nop())
			defer repo.Close()

			err := repo.CheckHealth(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInfluxOccupancyRepository_LookupTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	repo := NewInfluxOccupancyRepository(srv.URL, "token", "campus-org", "campus", 200*time.Millisecond, zerolog.Nop())
	defer repo.Close()

	start := time.Now()
	_, found, err := repo.LatestOccupancy(context.Background(), "urn:lot")
	elapsed := time.Since(start)

	assert.Error(t, err)
	assert.False(t, found)
	assert.Less(t, elapsed, 2*time.Second)
}
