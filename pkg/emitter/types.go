package emitter

import (
	"context"
	"time"

	"github.com/ChiefGyk3D/netpulse/pkg/models"
)

// Backend represents the metrics backend variant
type Backend string

const (
	// BackendInfluxV2 is the token-based API: url, token, org, bucket.
	BackendInfluxV2 Backend = "influxdb2"
	// BackendInfluxV1 is the legacy credential-based API: url, optional
	// username/password, database.
	BackendInfluxV1 Backend = "influxdb1"
)

// Config represents the connection parameters for the metrics backend.
// Only the fields of the selected backend variant are read.
type Config struct {
	Backend Backend
	URL     string
	Timeout time.Duration

	// InfluxDB v2
	Token  string
	Org    string
	Bucket string

	// InfluxDB v1
	Username string
	Password string
	Database string
}

// Sink writes one run's points to the metrics backend. Implementations
// translate the backend-neutral points into their client's native types.
type Sink interface {
	// Write records the measurement sample (or its error marker when the
	// speed test produced nothing) plus the optional failover event. The
	// runID field correlates every point of one invocation.
	Write(ctx context.Context, runID string, sample models.MeasurementSample, event *models.FailoverEvent) error
	// Close releases the underlying client. The sink is unusable afterwards.
	Close()
}
