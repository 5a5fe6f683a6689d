/*
Package emitter provides an abstraction layer for writing probe results to
the metrics backend (currently InfluxDB 2.x and InfluxDB 1.x).

The package implements a Sink interface that standardizes the write path, so
the probe pipeline stays identical regardless of which backend generation a
deployment runs.

Key Components:

  - Sink: Interface that defines the contract for metrics backends
  - Config: Configuration structure for either backend variant
  - Backend: Enum type representing supported backend variants
  - Factory: Creates sink instances based on configuration

Emitted Measurements:

	speedtest: one point per successful run, tagged with the test server,
	ISP, ASN, connection type and external IP; fields carry throughput,
	latency, jitter, loaded latency and packet loss

	speedtest_error: one marker point per run whose speed test produced no
	throughput numbers, so dashboards can tell failures from schedule gaps

	isp_change: one point per detected provider switch, tagged with the
	previous and current ISP, ASN and connection type; fields carry both
	IPs and per-attribute change flags

Every point carries a run_id field that correlates the points of a single
invocation. Tag values are never empty: "unknown" stands in when identity
resolution failed.

Supported Backends:

 1. InfluxDB 2.x:
    - Token authentication against an org and bucket
    - Points written through the blocking write API

 2. InfluxDB 1.x:
    - Optional username/password authentication against a database
    - Points written as a single batch with second precision

Usage Example:

	config := emitter.Config{
		Backend: emitter.BackendInfluxV2,
		URL:     "http://localhost:8086",
		Token:   "your-token",
		Org:     "netpulse",
		Bucket:  "netpulse",
		Timeout: 10 * time.Second,
	}

	sink, err := emitter.NewSink(config, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer sink.Close()

	err = sink.Write(ctx, runID, sample, event)

Error Handling:

Write errors are returned to the caller and recorded as a partial-run
failure; they never abort the probe. State is persisted before the write,
so a backend outage cannot re-trigger a failover event on the next run.
*/
package emitter
