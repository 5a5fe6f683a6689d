package emitter

import (
	"fmt"
	"log/slog"
)

// NewSink creates a metrics sink based on the config
func NewSink(config Config, logger *slog.Logger) (Sink, error) {
	switch config.Backend {
	case BackendInfluxV2:
		return newInfluxV2Sink(config, logger)
	case BackendInfluxV1:
		return newInfluxV1Sink(config, logger)
	default:
		return nil, fmt.Errorf("unsupported metrics backend: %s", config.Backend)
	}
}
