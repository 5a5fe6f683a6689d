/*
Package models defines the core data structures used throughout netpulse.
It provides the foundational types that represent the measured link speed,
the network identity behind it, and provider-change events derived from
comparing identities across runs.

Core Types:

ConnectionType is the coarse category of the monitored link:

	type ConnectionType string
	const (
		ConnectionCable    ConnectionType = "cable"
		ConnectionCellular ConnectionType = "cellular"
		ConnectionFiber    ConnectionType = "fiber"
		ConnectionDSL      ConnectionType = "dsl"
		ConnectionUnknown  ConnectionType = "unknown"
	)

NetworkIdentity is the externally visible identity of the connection:

	type NetworkIdentity struct {
		PublicIP       string         // Public IP address, e.g. "73.92.11.4"
		ASN            string         // Autonomous System number, e.g. "AS7922"
		ISPName        string         // Provider name as reported upstream
		ConnectionType ConnectionType // Category inferred from the ISP name
		LastSeen       time.Time      // When this identity was last observed
	}

NetworkIdentity is also the on-disk state format: the previous run's identity
is stored as JSON and reloaded on the next run for failover comparison.

MeasurementSample is the outcome of one probe run:

	type MeasurementSample struct {
		Timestamp          time.Time // Instant the run started (UTC)
		DownloadMbps       *float64  // Download speed in megabits per second
		UploadMbps         *float64  // Upload speed in megabits per second
		DownloadBandwidth  *int64    // Raw download bandwidth in bytes per second
		UploadBandwidth    *int64    // Raw upload bandwidth in bytes per second
		LatencyMs          *float64  // Idle ping latency in milliseconds
		JitterMs           *float64  // Idle ping jitter in milliseconds
		PingLowMs          *float64  // Lowest idle ping observed
		PingHighMs         *float64  // Highest idle ping observed
		DownloadLatencyIQM *float64  // Loaded latency during download (interquartile mean)
		UploadLatencyIQM   *float64  // Loaded latency during upload (interquartile mean)
		PacketLossPct      *float64  // Packet loss percentage
		PublicIP           string    // Identity context, see NetworkIdentity
		ASN                string
		ISPName            string
		ConnectionType     ConnectionType
		ServerName         string    // Test server metadata
		ServerLocation     string
		ServerCountry      string
		ResultURL          string    // Shareable result link, if provided
	}

Numeric measurement fields are pointers: nil means the speed test failed or
did not report the value, which is different from a measured zero. Identity
fields may be empty when every resolution provider was unavailable.

FailoverEvent records a detected provider switch:

	type FailoverEvent struct {
		OccurredAt              time.Time
		PreviousIP, CurrentIP   string
		PreviousASN, CurrentASN string
		PreviousISP, CurrentISP string
		PreviousConnectionType  ConnectionType
		CurrentConnectionType   ConnectionType
		IPChanged               bool
		ASNChanged              bool
		ISPChanged              bool
	}

Relationships:

The types flow through one run in a fixed order:
  - A speed test and an identity resolution produce one MeasurementSample
  - The previous NetworkIdentity is compared with the current one
  - A change of provider yields at most one FailoverEvent per run
  - Sample and event are written to the metrics backend together

Thread Safety:

The model structures are plain values and are not synchronized. A probe run
is a single sequential pipeline, so no concurrent mutation occurs; callers
that share them across goroutines must provide their own synchronization.
*/
package models
