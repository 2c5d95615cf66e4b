package otel

import (
	"os"
	"strconv"
	"time"
)

const defaultInterval = 30 * time.Second

// Config holds OTEL exporter configuration.
type Config struct {
	Endpoint string
	Enabled  bool
	Insecure bool
	// Interval between pushes to the collector.
	Interval time.Duration
}

// LoadConfig reads NEXA_OTEL_ENABLED, NEXA_OTEL_ENDPOINT, NEXA_OTEL_INSECURE
// and NEXA_OTEL_INTERVAL (a Go duration).
func LoadConfig() Config {
	enabled, _ := strconv.ParseBool(os.Getenv("NEXA_OTEL_ENABLED"))
	insecure, _ := strconv.ParseBool(os.Getenv("NEXA_OTEL_INSECURE"))

	interval, err := time.ParseDuration(os.Getenv("NEXA_OTEL_INTERVAL"))
	if err != nil || interval <= 0 {
		interval = defaultInterval
	}

	return Config{
		Endpoint: os.Getenv("NEXA_OTEL_ENDPOINT"),
		Enabled:  enabled,
		Insecure: insecure,
		Interval: interval,
	}
}
