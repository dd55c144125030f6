package testevents

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/edupanel/pkg/logger"
)

// SetupLogging logs to both stdout and a file. If logFile is empty, a
// timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		logFile = "replay_log_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file)), logger.WithLevel(level)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the replay tool.
func ShowHelp() {
	os.Stdout.WriteString(`Edupanel Event Replay Tool
==========================

Sends random parameter change events to a running dashboard service and
checks every answer against the output dependency graph. After the run it
verifies that each artifact is keyed by the final parameter state.

Usage:
  go run ./cmd/test-events [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -events int
        Number of change events to send (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -seed uint
        Generator seed; 0 picks one from the clock
  -invalid float
        Share of events carrying an out-of-domain value (default 0.1)
  -output string
        Write the generated events to this JSON file
  -log string
        Log file for run output (default: replay_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/test-events -events 5000 -workers 16
  go run ./cmd/test-events -seed 42 -invalid 0 -output events.json
`)
}
