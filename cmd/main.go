// File: main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChiefGyk3D/netpulse/pkg/classify"
	"github.com/ChiefGyk3D/netpulse/pkg/config"
	"github.com/ChiefGyk3D/netpulse/pkg/emitter"
	"github.com/ChiefGyk3D/netpulse/pkg/ipinfo"
	"github.com/ChiefGyk3D/netpulse/pkg/monitor"
	"github.com/ChiefGyk3D/netpulse/pkg/speedtest"
	"github.com/ChiefGyk3D/netpulse/pkg/state"
)

var (
	debugFlag bool
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "netpulse",
	Short: "A single-run network speed and ISP failover probe",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set up logging based on the debug flag
		var logLevel slog.Level
		if debugFlag {
			logLevel = slog.LevelDebug
		} else {
			logLevel = slog.LevelInfo
		}

		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
		slog.SetDefault(logger)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one probe cycle and exit",
	Long: `Run one speed test, resolve the current public network identity, compare
it against the state persisted by the previous run to detect an ISP
failover, and write the results to the configured InfluxDB backend.

Scheduling is owned by an external timer (systemd timer, cron) that invokes
this command once per interval. The exit code is zero for complete and
degraded runs alike; it is non-zero only when neither a measurement nor an
identity could be obtained.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.FromViper(viper.GetViper())
		if err != nil {
			logger.Error("Invalid configuration", "error", err)
			os.Exit(1)
		}

		classifier, err := buildClassifier(cfg.RulesFile)
		if err != nil {
			logger.Error("Invalid classification rules", "error", err, "file", cfg.RulesFile)
			os.Exit(1)
		}

		sink, err := emitter.NewSink(cfg.Influx, logger)
		if err != nil {
			logger.Error("Error creating metrics sink", "error", err)
			os.Exit(1)
		}
		defer sink.Close()

		service := monitor.NewMonitorService(
			speedtest.New(speedtest.Options{
				Binary:  cfg.Speedtest.Binary,
				Timeout: cfg.Speedtest.Timeout,
			}, logger),
			ipinfo.NewResolver(ipinfo.Options{
				PrimaryURL:   cfg.Resolver.PrimaryURL,
				SecondaryURL: cfg.Resolver.SecondaryURL,
				STUNServer:   cfg.Resolver.STUNServer,
				Timeout:      cfg.Resolver.Timeout,
			}, logger),
			classifier,
			state.NewStore(cfg.StateFile),
			sink,
			logger,
		)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
		defer cancel()

		result := service.Run(ctx)
		if result.Status == monitor.StatusFailure {
			logger.Error("No measurement or identity could be obtained", "run_id", result.RunID)
			os.Exit(1)
		}
	},
}

// buildClassifier uses the built-in keyword table unless a deployment ships
// its own rules file.
func buildClassifier(rulesFile string) (*classify.Classifier, error) {
	if rulesFile == "" {
		return classify.Default(), nil
	}
	rules, err := classify.LoadRules(rulesFile)
	if err != nil {
		return nil, err
	}
	return classify.New(rules), nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd)
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/netpulse/")
	viper.AddConfigPath("$HOME/.netpulse")
	viper.AddConfigPath(".")

	config.Init(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		// Env-only deployments run without a config file.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
