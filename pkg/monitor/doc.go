/*
Package monitor orchestrates one probe run end to end. It owns the fixed
pipeline order and the degradation rules; the heavy lifting lives in the
packages it composes.

Key Components:

  - MonitorService: Core service that sequences one probe invocation
  - RunResult: Aggregated outcome of a run, including per-step failures
  - RunStatus: success, partial or failure

Pipeline Order:

	1. Run the external speed test
	2. Resolve the public network identity
	3. Classify the connection type from the ISP name
	4. Load the previous identity and compare for an ISP failover
	5. Persist the current identity (only when one was resolved)
	6. Write sample, error marker and failover event to the metrics backend

Each step may fail without aborting the run: a failed speed test still
resolves and persists identity, a failed resolution still reports speed
numbers, and a metrics outage still leaves the state file updated. Only a
run that produced neither a measurement nor an identity counts as a
failure; that is the single case the command exits non-zero for, so an
external scheduler can alert on total outages.

Usage Example:

	svc := monitor.NewMonitorService(
		speedtest.New(speedtest.Options{}, logger),
		ipinfo.NewResolver(ipinfo.Options{}, logger),
		classify.Default(),
		state.NewStore("/var/lib/netpulse/state.json"),
		sink,
		logger,
	)

	result := svc.Run(ctx)
	if result.Status == monitor.StatusFailure {
		os.Exit(1)
	}

Concurrency:

A run is strictly sequential and MonitorService keeps no mutable state
between runs; every invocation starts from the persisted state file. The
service is safe to discard after a single Run, which matches the
one-shot-per-timer deployment model.
*/
package monitor
