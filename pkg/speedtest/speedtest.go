// Package speedtest runs the Ookla speedtest CLI as a subprocess and parses
// its JSON report into a typed result. The binary does the actual transfer
// work; this package owns the invocation, the time budget, and the decoding.
package speedtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when the CLI does not finish within its budget.
var ErrTimeout = errors.New("speed test timed out")

const (
	DefaultBinary  = "speedtest"
	DefaultTimeout = 120 * time.Second
)

// Options configures the external speedtest invocation.
type Options struct {
	Binary  string        // path or name of the Ookla CLI
	Timeout time.Duration // hard deadline for one run
}

// commandRunner abstracts the subprocess call so tests can substitute the
// CLI with canned output.
type commandRunner interface {
	Output(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type osRunner struct{}

func (osRunner) Output(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Runner invokes the speedtest CLI.
type Runner struct {
	binary  string
	timeout time.Duration
	exec    commandRunner
	logger  *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Runner {
	if opts.Binary == "" {
		opts.Binary = DefaultBinary
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Runner{
		binary:  opts.Binary,
		timeout: opts.Timeout,
		exec:    osRunner{},
		logger:  logger,
	}
}

// Throughput is one direction of the measured link speed.
type Throughput struct {
	BandwidthBps int64   // bytes per second, as reported by the CLI
	Mbps         float64 // megabits per second
	LatencyIQM   float64 // loaded latency during the transfer, interquartile mean
}

// Ping holds the idle latency measurements taken before the transfers.
type Ping struct {
	LatencyMs float64
	JitterMs  float64
	LowMs     float64
	HighMs    float64
}

// Result is the parsed outcome of one speed test. Download, Upload, Ping and
// PacketLossPct are nil when the CLI did not report them; everything the CLI
// leaves out stays absent instead of turning into a zero.
type Result struct {
	Download      *Throughput
	Upload        *Throughput
	Ping          *Ping
	PacketLossPct *float64

	ServerID       int64
	ServerName     string
	ServerLocation string
	ServerCountry  string
	ServerHost     string

	ISP        string
	ExternalIP string
	ResultURL  string
}

// cliReport mirrors the JSON document emitted by `speedtest --format=json`.
type cliReport struct {
	Ping *struct {
		Jitter  float64 `json:"jitter"`
		Latency float64 `json:"latency"`
		Low     float64 `json:"low"`
		High    float64 `json:"high"`
	} `json:"ping"`
	Download   *cliTransfer `json:"download"`
	Upload     *cliTransfer `json:"upload"`
	PacketLoss *float64     `json:"packetLoss"`
	ISP        string       `json:"isp"`
	Interface  struct {
		ExternalIP string `json:"externalIp"`
	} `json:"interface"`
	Server struct {
		ID       int64  `json:"id"`
		Host     string `json:"host"`
		Name     string `json:"name"`
		Location string `json:"location"`
		Country  string `json:"country"`
	} `json:"server"`
	Result struct {
		URL string `json:"url"`
	} `json:"result"`
}

type cliTransfer struct {
	Bandwidth *int64 `json:"bandwidth"` // bytes per second
	Bytes     int64  `json:"bytes"`
	Elapsed   int64  `json:"elapsed"`
	Latency   struct {
		IQM  float64 `json:"iqm"`
		Low  float64 `json:"low"`
		High float64 `json:"high"`
	} `json:"latency"`
}

// Run executes one speed test and parses the report. The license flags keep
// the CLI from blocking on its interactive acceptance prompt on first use.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := []string{"--format=json", "--accept-license", "--accept-gdpr"}
	r.logger.Debug("running speed test", "binary", r.binary, "timeout", r.timeout)

	start := time.Now()
	stdout, stderr, err := r.exec.Output(ctx, r.binary, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %w", ErrTimeout, r.timeout, ctx.Err())
		}
		if detail := strings.TrimSpace(string(stderr)); detail != "" {
			return nil, fmt.Errorf("speedtest CLI failed: %v: %s", err, detail)
		}
		return nil, fmt.Errorf("speedtest CLI failed: %w", err)
	}

	result, err := parseReport(stdout)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("speed test finished",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"server", result.ServerName,
		"isp", result.ISP)
	return result, nil
}

func parseReport(data []byte) (*Result, error) {
	var report cliReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse speedtest output: %w", err)
	}

	hasDownload := report.Download != nil && report.Download.Bandwidth != nil
	hasUpload := report.Upload != nil && report.Upload.Bandwidth != nil
	if !hasDownload && !hasUpload {
		return nil, errors.New("speedtest output contains no throughput numbers")
	}

	result := &Result{
		ServerID:       report.Server.ID,
		ServerName:     report.Server.Name,
		ServerLocation: report.Server.Location,
		ServerCountry:  report.Server.Country,
		ServerHost:     report.Server.Host,
		ISP:            report.ISP,
		ExternalIP:     report.Interface.ExternalIP,
		ResultURL:      report.Result.URL,
	}
	if report.Ping != nil {
		result.Ping = &Ping{
			LatencyMs: report.Ping.Latency,
			JitterMs:  report.Ping.Jitter,
			LowMs:     report.Ping.Low,
			HighMs:    report.Ping.High,
		}
	}
	if hasDownload {
		result.Download = &Throughput{
			BandwidthBps: *report.Download.Bandwidth,
			Mbps:         mbps(*report.Download.Bandwidth),
			LatencyIQM:   report.Download.Latency.IQM,
		}
	}
	if hasUpload {
		result.Upload = &Throughput{
			BandwidthBps: *report.Upload.Bandwidth,
			Mbps:         mbps(*report.Upload.Bandwidth),
			LatencyIQM:   report.Upload.Latency.IQM,
		}
	}
	result.PacketLossPct = report.PacketLoss
	return result, nil
}

// mbps converts the CLI's bytes-per-second bandwidth to megabits per second.
func mbps(bandwidthBps int64) float64 {
	return float64(bandwidthBps) * 8 / 1e6
}
