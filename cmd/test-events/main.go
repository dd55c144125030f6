package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/edupanel/internal/testevents"
)

// Default configuration constants.
const (
	defaultNumEvents    = 1000
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultTestTimeout  = 10 * time.Minute
	defaultInvalidRatio = 0.1
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numEvents    = flag.Int("events", defaultNumEvents, "Number of change events to send")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed         = flag.Uint64("seed", 0, "Generator seed; 0 picks one from the clock")
		invalidRatio = flag.Float64("invalid", defaultInvalidRatio, "Share of events carrying an out-of-domain value")
		outputFile   = flag.String("output", "", "Write the generated events to this JSON file")
		logFile      = flag.String("log", "", "Log file for run output (default: replay_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testevents.ShowHelp()
		return
	}

	if err := testevents.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &testevents.Config{
		BaseURL:      *baseURL,
		NumEvents:    *numEvents,
		Workers:      *workers,
		Timeout:      *timeout,
		Seed:         *seed,
		InvalidRatio: *invalidRatio,
		OutputFile:   *outputFile,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	if _, err := testevents.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Replay failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
