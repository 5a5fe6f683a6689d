package emitter

import (
	"context"
	"fmt"
	"log/slog"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/ChiefGyk3D/netpulse/pkg/models"
)

// influxV2Sink writes through the v2 client using the blocking write API.
// One probe run emits at most a handful of points, so batching buys nothing.
type influxV2Sink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	logger   *slog.Logger
}

func newInfluxV2Sink(config Config, logger *slog.Logger) (*influxV2Sink, error) {
	if config.URL == "" || config.Token == "" || config.Org == "" || config.Bucket == "" {
		return nil, fmt.Errorf("influxdb2 backend requires url, token, org and bucket")
	}

	options := influxdb2.DefaultOptions()
	if config.Timeout > 0 {
		options = options.SetHTTPRequestTimeout(uint(config.Timeout.Seconds()))
	}
	client := influxdb2.NewClientWithOptions(config.URL, config.Token, options)

	return &influxV2Sink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(config.Org, config.Bucket),
		logger:   logger,
	}, nil
}

func (s *influxV2Sink) Write(ctx context.Context, runID string, sample models.MeasurementSample, event *models.FailoverEvent) error {
	points := buildPoints(runID, sample, event)
	wirePoints := make([]*write.Point, 0, len(points))
	for _, p := range points {
		wirePoints = append(wirePoints, influxdb2.NewPoint(p.name, p.tags, p.fields, p.ts))
	}

	if err := s.writeAPI.WritePoint(ctx, wirePoints...); err != nil {
		return fmt.Errorf("writing points: %w", err)
	}
	s.logger.Debug("wrote metrics points", "backend", BackendInfluxV2, "count", len(wirePoints))
	return nil
}

func (s *influxV2Sink) Close() {
	s.client.Close()
}
