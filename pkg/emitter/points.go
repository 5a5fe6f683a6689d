package emitter

import (
	"time"

	"github.com/ChiefGyk3D/netpulse/pkg/models"
)

const (
	measurementSpeedtest = "speedtest"
	measurementISPChange = "isp_change"
	measurementError     = "speedtest_error"
)

// point is a backend-neutral time-series point. Both sink variants are fed
// from the same builders, so the two schemas can never drift apart.
type point struct {
	name   string
	tags   map[string]string
	fields map[string]interface{}
	ts     time.Time
}

// buildPoints assembles every point one run emits: a measurement point when
// the speed test succeeded, an error marker when it did not, and a failover
// annotation when the provider changed.
func buildPoints(runID string, sample models.MeasurementSample, event *models.FailoverEvent) []point {
	points := make([]point, 0, 2)
	if sample.HasMeasurements() {
		points = append(points, samplePoint(runID, sample))
	} else {
		points = append(points, errorPoint(runID, sample))
	}
	if event != nil {
		points = append(points, eventPoint(runID, event))
	}
	return points
}

func samplePoint(runID string, s models.MeasurementSample) point {
	tags := map[string]string{
		"server_name":     orUnknown(s.ServerName),
		"server_location": orUnknown(s.ServerLocation),
		"server_country":  orUnknown(s.ServerCountry),
		"isp":             orUnknown(s.ISPName),
		"asn":             orUnknown(s.ASN),
		"connection_type": orUnknown(string(s.ConnectionType)),
		"external_ip":     orUnknown(s.PublicIP),
	}

	fields := map[string]interface{}{
		"run_id": runID,
	}
	addFloat(fields, "download_mbps", s.DownloadMbps)
	addFloat(fields, "upload_mbps", s.UploadMbps)
	addInt(fields, "download_bandwidth", s.DownloadBandwidth)
	addInt(fields, "upload_bandwidth", s.UploadBandwidth)
	addFloat(fields, "ping_latency", s.LatencyMs)
	addFloat(fields, "ping_jitter", s.JitterMs)
	addFloat(fields, "ping_low", s.PingLowMs)
	addFloat(fields, "ping_high", s.PingHighMs)
	addFloat(fields, "download_latency_iqm", s.DownloadLatencyIQM)
	addFloat(fields, "upload_latency_iqm", s.UploadLatencyIQM)
	addFloat(fields, "packet_loss", s.PacketLossPct)
	if s.ResultURL != "" {
		fields["result_url"] = s.ResultURL
	}

	return point{name: measurementSpeedtest, tags: tags, fields: fields, ts: s.Timestamp}
}

// errorPoint marks a run whose speed test produced nothing, so dashboards
// can count failures instead of mistaking them for gaps in the schedule.
func errorPoint(runID string, s models.MeasurementSample) point {
	return point{
		name: measurementError,
		tags: map[string]string{
			"isp":             orUnknown(s.ISPName),
			"connection_type": orUnknown(string(s.ConnectionType)),
		},
		fields: map[string]interface{}{
			"error":  int64(1),
			"run_id": runID,
		},
		ts: s.Timestamp,
	}
}

func eventPoint(runID string, e *models.FailoverEvent) point {
	return point{
		name: measurementISPChange,
		tags: map[string]string{
			"previous_isp":             orUnknown(e.PreviousISP),
			"current_isp":              orUnknown(e.CurrentISP),
			"previous_asn":             orUnknown(e.PreviousASN),
			"current_asn":              orUnknown(e.CurrentASN),
			"previous_connection_type": orUnknown(string(e.PreviousConnectionType)),
			"current_connection_type":  orUnknown(string(e.CurrentConnectionType)),
		},
		fields: map[string]interface{}{
			"event":       int64(1),
			"previous_ip": e.PreviousIP,
			"current_ip":  e.CurrentIP,
			"ip_changed":  e.IPChanged,
			"asn_changed": e.ASNChanged,
			"isp_changed": e.ISPChanged,
			"run_id":      runID,
		},
		ts: e.OccurredAt,
	}
}

// orUnknown keeps tag sets stable for dashboard queries: every tag is always
// present, with "unknown" standing in for unresolved values.
func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

func addFloat(fields map[string]interface{}, key string, v *float64) {
	if v != nil {
		fields[key] = *v
	}
}

func addInt(fields map[string]interface{}, key string, v *int64) {
	if v != nil {
		fields[key] = *v
	}
}
