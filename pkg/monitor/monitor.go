package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ChiefGyk3D/netpulse/pkg/failover"
	"github.com/ChiefGyk3D/netpulse/pkg/models"
	"github.com/ChiefGyk3D/netpulse/pkg/speedtest"
	"github.com/ChiefGyk3D/netpulse/pkg/state"
)

// SpeedTester runs one external speed measurement.
type SpeedTester interface {
	Run(ctx context.Context) (*speedtest.Result, error)
}

// IdentityResolver resolves the current public network identity.
type IdentityResolver interface {
	Resolve(ctx context.Context) (models.NetworkIdentity, error)
}

// Classifier maps an ISP name to a connection category.
type Classifier interface {
	Classify(ispName string) models.ConnectionType
}

// StateStore loads and persists the last-known identity.
type StateStore interface {
	Load() (*models.NetworkIdentity, error)
	Save(identity models.NetworkIdentity) error
}

// Sink writes the run's points to the metrics backend.
type Sink interface {
	Write(ctx context.Context, runID string, sample models.MeasurementSample, event *models.FailoverEvent) error
}

// RunStatus summarizes how much of a run succeeded.
type RunStatus string

const (
	// StatusSuccess: every step completed.
	StatusSuccess RunStatus = "success"
	// StatusPartial: at least one step failed but a measurement or an
	// identity was still obtained. The run exits zero.
	StatusPartial RunStatus = "partial"
	// StatusFailure: neither a measurement nor an identity was obtained.
	// This is the only status that exits non-zero.
	StatusFailure RunStatus = "failure"
)

// StepFailure records which pipeline step failed and why.
type StepFailure struct {
	Step string
	Err  error
}

// RunResult aggregates everything one invocation produced.
type RunResult struct {
	RunID    string
	Status   RunStatus
	Sample   models.MeasurementSample
	Event    *models.FailoverEvent
	Failures []StepFailure
}

// MonitorService sequences one probe invocation: speed test, identity
// resolution, classification, failover comparison, state persistence and
// metrics emission. Steps degrade independently; a failed step is recorded
// and the pipeline continues with what it has.
type MonitorService struct {
	speed      SpeedTester
	resolver   IdentityResolver
	classifier Classifier
	store      StateStore
	sink       Sink
	logger     *slog.Logger
	now        func() time.Time
}

func NewMonitorService(speed SpeedTester, resolver IdentityResolver, classifier Classifier, store StateStore, sink Sink, logger *slog.Logger) *MonitorService {
	return &MonitorService{
		speed:      speed,
		resolver:   resolver,
		classifier: classifier,
		store:      store,
		sink:       sink,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes one probe cycle. It always returns a result; the caller maps
// StatusFailure to a non-zero exit so schedulers notice total outages
// without treating degraded runs as crashes.
func (s *MonitorService) Run(ctx context.Context) *RunResult {
	result := &RunResult{RunID: uuid.NewString()}
	startedAt := s.now().UTC()
	s.logger.Info("Starting probe run", "run_id", result.RunID)

	speedResult, err := s.speed.Run(ctx)
	if err != nil {
		s.logger.Error("Speed test failed", "error", err)
		result.recordFailure("speedtest", err)
	}

	identity, err := s.resolver.Resolve(ctx)
	if err != nil {
		s.logger.Error("Identity resolution failed", "error", err)
		result.recordFailure("resolve", err)
	}
	identity.ConnectionType = s.classifier.Classify(identity.ISPName)

	previous, err := s.store.Load()
	if err != nil {
		if errors.Is(err, state.ErrCorrupt) {
			s.logger.Warn("State file corrupt, treating as first run", "error", err)
		} else {
			s.logger.Error("Loading state failed", "error", err)
		}
		result.recordFailure("state-load", err)
		previous = nil
	}

	result.Event = failover.Detect(previous, identity, startedAt)
	if result.Event != nil {
		s.logger.Info("ISP failover detected",
			"previous_isp", result.Event.PreviousISP,
			"current_isp", result.Event.CurrentISP,
			"previous_asn", result.Event.PreviousASN,
			"current_asn", result.Event.CurrentASN,
			"previous_ip", result.Event.PreviousIP,
			"current_ip", result.Event.CurrentIP)
	}

	// Persist only a usable identity. When resolution failed the previous
	// state stays untouched, so the next successful run still has a
	// baseline to compare against.
	if !identity.Empty() {
		identity.LastSeen = startedAt
		if err := s.store.Save(identity); err != nil {
			s.logger.Error("Saving state failed", "error", err)
			result.recordFailure("state-save", err)
		}
	}

	result.Sample = buildSample(startedAt, speedResult, identity)

	// State is committed before the write: a backend outage must not make
	// the next run re-detect the same failover.
	if err := s.sink.Write(ctx, result.RunID, result.Sample, result.Event); err != nil {
		s.logger.Error("Writing metrics failed", "error", err)
		result.recordFailure("emit", err)
	}

	result.Status = runStatus(speedResult != nil, !identity.Empty(), len(result.Failures) > 0)
	s.logger.Info("Probe run finished",
		"run_id", result.RunID,
		"status", result.Status,
		"failed_steps", len(result.Failures))
	return result
}

func (r *RunResult) recordFailure(step string, err error) {
	r.Failures = append(r.Failures, StepFailure{Step: step, Err: err})
}

func runStatus(hasMeasurement, hasIdentity, anyFailure bool) RunStatus {
	switch {
	case !hasMeasurement && !hasIdentity:
		return StatusFailure
	case anyFailure:
		return StatusPartial
	default:
		return StatusSuccess
	}
}

// buildSample merges the speed test result and the resolved identity into
// the sample the emitter writes.
func buildSample(startedAt time.Time, sr *speedtest.Result, identity models.NetworkIdentity) models.MeasurementSample {
	sample := models.MeasurementSample{
		Timestamp:      startedAt,
		PublicIP:       identity.PublicIP,
		ASN:            identity.ASN,
		ISPName:        identity.ISPName,
		ConnectionType: identity.ConnectionType,
	}
	if sr == nil {
		return sample
	}

	if sr.Download != nil {
		sample.DownloadMbps = floatPtr(sr.Download.Mbps)
		sample.DownloadBandwidth = intPtr(sr.Download.BandwidthBps)
		sample.DownloadLatencyIQM = floatPtr(sr.Download.LatencyIQM)
	}
	if sr.Upload != nil {
		sample.UploadMbps = floatPtr(sr.Upload.Mbps)
		sample.UploadBandwidth = intPtr(sr.Upload.BandwidthBps)
		sample.UploadLatencyIQM = floatPtr(sr.Upload.LatencyIQM)
	}
	if sr.Ping != nil {
		sample.LatencyMs = floatPtr(sr.Ping.LatencyMs)
		sample.JitterMs = floatPtr(sr.Ping.JitterMs)
		sample.PingLowMs = floatPtr(sr.Ping.LowMs)
		sample.PingHighMs = floatPtr(sr.Ping.HighMs)
	}
	sample.PacketLossPct = sr.PacketLossPct
	sample.ServerName = sr.ServerName
	sample.ServerLocation = sr.ServerLocation
	sample.ServerCountry = sr.ServerCountry
	sample.ResultURL = sr.ResultURL
	return sample
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int64) *int64       { return &v }
