// internal/repository/influx_occupancy.go

package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/rs/zerolog"
)

const (
	occupancyMeasurement = "parking_occupancy"
	occupancyField       = "occupancy"
	occupancyLotTag      = "lot_id"
)

var fluxString = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "${", `\${`)

// OccupancyReader returns the latest raw occupancy reading for a parking lot.
type OccupancyReader interface {
	LatestOccupancy(ctx context.Context, lotID string) (string, bool, error)
}

// InfluxOccupancyRepository reads live occupancy readings from InfluxDB.
// It never writes.
type InfluxOccupancyRepository struct {
	client  influxdb2.Client
	org     string
	bucket  string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewInfluxOccupancyRepository creates a new InfluxOccupancyRepository.
// Every lookup gives up after timeout.
func NewInfluxOccupancyRepository(url, token, org, bucket string, timeout time.Duration, logger zerolog.Logger) *InfluxOccupancyRepository {
	// The client timeout has whole-second granularity; the context deadline
	// in LatestOccupancy is the precise bound.
	seconds := uint(timeout.Round(time.Second) / time.Second)
	if seconds == 0 {
		seconds = 1
	}
	opts := influxdb2.DefaultOptions().SetHTTPRequestTimeout(seconds)

	return &InfluxOccupancyRepository{
		client:  influxdb2.NewClientWithOptions(url, token, opts),
		org:     org,
		bucket:  bucket,
		timeout: timeout,
		logger:  logger,
	}
}

// CheckHealth reports whether the InfluxDB server answers its health check.
func (r *InfluxOccupancyRepository) CheckHealth(ctx context.Context) error {
	health, err := r.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	if health.Status != "pass" {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return fmt.Errorf("InfluxDB health check failed: %s", msg)
	}
	return nil
}

// CheckBucket verifies that the configured bucket exists and is not one of
// the server's system buckets.
func (r *InfluxOccupancyRepository) CheckBucket(ctx context.Context) error {
	if isSystemBucket(r.bucket) {
		return fmt.Errorf("bucket %q is a system bucket", r.bucket)
	}
	bucket, err := r.client.BucketsAPI().FindBucketByName(ctx, r.bucket)
	if err != nil {
		return fmt.Errorf("error finding bucket %q: %w", r.bucket, err)
	}
	r.logger.Debug().Str("bucket", bucket.Name).Msg("Occupancy bucket found")
	return nil
}

// LatestOccupancy returns the most recent occupancy reading tagged with lotID.
func (r *InfluxOccupancyRepository) LatestOccupancy(ctx context.Context, lotID string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.client.QueryAPI(r.org).Query(ctx, occupancyQuery(r.bucket, lotID))
	if err != nil {
		return "", false, fmt.Errorf("error querying InfluxDB: %w", err)
	}
	defer result.Close()

	var (
		value string
		found bool
	)
	for result.Next() {
		if v, ok := formatReading(result.Record().Value()); ok {
			value, found = v, true
		}
	}
	if result.Err() != nil {
		return "", false, fmt.Errorf("error reading InfluxDB result: %w", result.Err())
	}

	r.logger.Debug().Str("lot_id", lotID).Bool("found", found).Msg("Queried live occupancy")
	return value, found, nil
}

// Close releases the underlying client.
func (r *InfluxOccupancyRepository) Close() {
	r.client.Close()
}

func occupancyQuery(bucket, lotID string) string {
	return fmt.Sprintf(`
		from(bucket: "%s")
		|> range(start: 0)
		|> filter(fn: (r) => r["_measurement"] == "%s")
		|> filter(fn: (r) => r["%s"] == "%s")
		|> filter(fn: (r) => r["_field"] == "%s")
		|> last()
	`, fluxString.Replace(bucket), occupancyMeasurement, occupancyLotTag, fluxString.Replace(lotID), occupancyField)
}

func isSystemBucket(name string) bool {
	switch name {
	case "_internal", "_monitoring", "_tasks":
		return true
	}
	return false
}

func formatReading(v interface{}) (string, bool) {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case string:
		return val, val != ""
	}
	return "", false
}
