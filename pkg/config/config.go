// Package config turns viper settings into the typed configuration the
// probe components consume. Defaults cover a stock single-host deployment;
// every key is also bound to the environment variable the installer and the
// systemd unit have always used, so a config file is optional.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ChiefGyk3D/netpulse/pkg/emitter"
	"github.com/ChiefGyk3D/netpulse/pkg/ipinfo"
	"github.com/ChiefGyk3D/netpulse/pkg/speedtest"
)

const DefaultStateFile = "/tmp/netpulse_state.json"

// SpeedtestConfig configures the external speed test invocation.
type SpeedtestConfig struct {
	Binary  string
	Timeout time.Duration
}

// ResolverConfig configures the identity provider chain.
type ResolverConfig struct {
	PrimaryURL   string
	SecondaryURL string
	STUNServer   string
	Timeout      time.Duration
}

// Config is the full runtime configuration of one probe run.
type Config struct {
	Influx     emitter.Config
	Speedtest  SpeedtestConfig
	Resolver   ResolverConfig
	RulesFile  string
	StateFile  string
	RunTimeout time.Duration
}

// Init registers defaults and environment bindings on the given viper
// instance. It must run before FromViper.
func Init(v *viper.Viper) {
	v.SetDefault("influxdb.version", 2)
	v.SetDefault("influxdb.url", "http://localhost:8086")
	v.SetDefault("influxdb.org", "netpulse")
	v.SetDefault("influxdb.bucket", "netpulse")
	v.SetDefault("influxdb.database", "netpulse")
	v.SetDefault("influxdb.timeout", "10s")
	v.SetDefault("speedtest.binary", speedtest.DefaultBinary)
	v.SetDefault("speedtest.timeout", "120s")
	v.SetDefault("resolver.primary_url", ipinfo.DefaultPrimaryURL)
	v.SetDefault("resolver.secondary_url", ipinfo.DefaultSecondaryURL)
	v.SetDefault("resolver.stun_server", "")
	v.SetDefault("resolver.timeout", "10s")
	v.SetDefault("classify.rules_file", "")
	v.SetDefault("state.file", DefaultStateFile)
	v.SetDefault("run.timeout", "180s")

	envBindings := map[string]string{
		"influxdb.version":       "INFLUXDB_VERSION",
		"influxdb.url":           "INFLUXDB_URL",
		"influxdb.token":         "INFLUXDB_TOKEN",
		"influxdb.org":           "INFLUXDB_ORG",
		"influxdb.bucket":        "INFLUXDB_BUCKET",
		"influxdb.username":      "INFLUXDB_USERNAME",
		"influxdb.password":      "INFLUXDB_PASSWORD",
		"influxdb.database":      "INFLUXDB_DATABASE",
		"influxdb.timeout":       "INFLUXDB_TIMEOUT",
		"speedtest.binary":       "NETPULSE_SPEEDTEST_BINARY",
		"speedtest.timeout":      "NETPULSE_SPEEDTEST_TIMEOUT",
		"resolver.primary_url":   "NETPULSE_RESOLVER_PRIMARY_URL",
		"resolver.secondary_url": "NETPULSE_RESOLVER_SECONDARY_URL",
		"resolver.stun_server":   "NETPULSE_STUN_SERVER",
		"resolver.timeout":       "NETPULSE_RESOLVER_TIMEOUT",
		"classify.rules_file":    "NETPULSE_RULES_FILE",
		"state.file":             "NETPULSE_STATE_FILE",
		"run.timeout":            "NETPULSE_RUN_TIMEOUT",
	}
	for key, env := range envBindings {
		v.BindEnv(key, env)
	}
}

// FromViper builds the typed configuration and validates it. Backend
// credential checks stay with the sink constructors; this catches the
// mistakes that make the run pointless before anything is probed.
func FromViper(v *viper.Viper) (Config, error) {
	var backend emitter.Backend
	switch version := v.GetInt("influxdb.version"); version {
	case 2:
		backend = emitter.BackendInfluxV2
	case 1:
		backend = emitter.BackendInfluxV1
	default:
		return Config{}, fmt.Errorf("influxdb.version must be 1 or 2, got %d", version)
	}

	cfg := Config{
		Influx: emitter.Config{
			Backend:  backend,
			URL:      v.GetString("influxdb.url"),
			Token:    v.GetString("influxdb.token"),
			Org:      v.GetString("influxdb.org"),
			Bucket:   v.GetString("influxdb.bucket"),
			Username: v.GetString("influxdb.username"),
			Password: v.GetString("influxdb.password"),
			Database: v.GetString("influxdb.database"),
			Timeout:  v.GetDuration("influxdb.timeout"),
		},
		Speedtest: SpeedtestConfig{
			Binary:  v.GetString("speedtest.binary"),
			Timeout: v.GetDuration("speedtest.timeout"),
		},
		Resolver: ResolverConfig{
			PrimaryURL:   v.GetString("resolver.primary_url"),
			SecondaryURL: v.GetString("resolver.secondary_url"),
			STUNServer:   v.GetString("resolver.stun_server"),
			Timeout:      v.GetDuration("resolver.timeout"),
		},
		RulesFile:  v.GetString("classify.rules_file"),
		StateFile:  v.GetString("state.file"),
		RunTimeout: v.GetDuration("run.timeout"),
	}

	if cfg.StateFile == "" {
		return Config{}, fmt.Errorf("state.file must not be empty")
	}
	if cfg.Speedtest.Timeout <= 0 {
		return Config{}, fmt.Errorf("speedtest.timeout must be positive")
	}
	if cfg.Resolver.Timeout <= 0 {
		return Config{}, fmt.Errorf("resolver.timeout must be positive")
	}
	if cfg.RunTimeout <= 0 {
		return Config{}, fmt.Errorf("run.timeout must be positive")
	}
	return cfg, nil
}
