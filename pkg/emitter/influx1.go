package emitter

import (
	"context"
	"fmt"
	"log/slog"

	influx1 "github.com/influxdata/influxdb1-client/v2"

	"github.com/ChiefGyk3D/netpulse/pkg/models"
)

// influxV1Sink writes through the legacy 1.x client. The v1 API has no
// context support; its HTTP client enforces the configured timeout instead.
type influxV1Sink struct {
	client   influx1.Client
	database string
	logger   *slog.Logger
}

func newInfluxV1Sink(config Config, logger *slog.Logger) (*influxV1Sink, error) {
	if config.URL == "" || config.Database == "" {
		return nil, fmt.Errorf("influxdb1 backend requires url and database")
	}

	client, err := influx1.NewHTTPClient(influx1.HTTPConfig{
		Addr:     config.URL,
		Username: config.Username,
		Password: config.Password,
		Timeout:  config.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating influxdb1 client: %w", err)
	}

	return &influxV1Sink{
		client:   client,
		database: config.Database,
		logger:   logger,
	}, nil
}

func (s *influxV1Sink) Write(ctx context.Context, runID string, sample models.MeasurementSample, event *models.FailoverEvent) error {
	batch, err := influx1.NewBatchPoints(influx1.BatchPointsConfig{
		Database:  s.database,
		Precision: "s",
	})
	if err != nil {
		return fmt.Errorf("creating batch: %w", err)
	}

	for _, p := range buildPoints(runID, sample, event) {
		pt, err := influx1.NewPoint(p.name, p.tags, p.fields, p.ts)
		if err != nil {
			return fmt.Errorf("building point %s: %w", p.name, err)
		}
		batch.AddPoint(pt)
	}

	if err := s.client.Write(batch); err != nil {
		return fmt.Errorf("writing points: %w", err)
	}
	s.logger.Debug("wrote metrics points", "backend", BackendInfluxV1, "count", len(batch.Points()))
	return nil
}

func (s *influxV1Sink) Close() {
	s.client.Close()
}
