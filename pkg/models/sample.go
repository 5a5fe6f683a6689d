package models

import "time"

// MeasurementSample is the outcome of one probe run: the speed measurements
// plus the network identity active when they were taken. Numeric fields are
// pointers so that a failed speed test is distinguishable from a measured
// zero; absent values are never emitted to the metrics backend.
type MeasurementSample struct {
	Timestamp time.Time `json:"timestamp"`

	DownloadMbps       *float64 `json:"download_mbps,omitempty"`
	UploadMbps         *float64 `json:"upload_mbps,omitempty"`
	DownloadBandwidth  *int64   `json:"download_bandwidth,omitempty"` // bytes per second, as reported
	UploadBandwidth    *int64   `json:"upload_bandwidth,omitempty"`
	LatencyMs          *float64 `json:"ping_latency,omitempty"`
	JitterMs           *float64 `json:"ping_jitter,omitempty"`
	PingLowMs          *float64 `json:"ping_low,omitempty"`
	PingHighMs         *float64 `json:"ping_high,omitempty"`
	DownloadLatencyIQM *float64 `json:"download_latency_iqm,omitempty"`
	UploadLatencyIQM   *float64 `json:"upload_latency_iqm,omitempty"`
	PacketLossPct      *float64 `json:"packet_loss,omitempty"`

	PublicIP       string         `json:"public_ip,omitempty"`
	ASN            string         `json:"asn,omitempty"`
	ISPName        string         `json:"isp_name,omitempty"`
	ConnectionType ConnectionType `json:"connection_type,omitempty"`

	ServerName     string `json:"server_name,omitempty"`
	ServerLocation string `json:"server_location,omitempty"`
	ServerCountry  string `json:"server_country,omitempty"`
	ResultURL      string `json:"result_url,omitempty"`
}

// HasMeasurements reports whether the speed test produced any throughput
// numbers. A sample without them still carries identity context but is
// emitted as an error marker instead of a measurement point.
func (s MeasurementSample) HasMeasurements() bool {
	return s.DownloadMbps != nil || s.UploadMbps != nil
}
