package testevents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/edupanel/internal/domain/reactive"
	"github.com/okian/edupanel/internal/domain/views"
	"github.com/okian/edupanel/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// ErrVerification is returned when the run found inconsistent answers.
var ErrVerification = errors.New("verification failed")

// Run replays random change events against a running service and checks
// that every answer and the final artifacts agree with the parameter state.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting event replay",
		logger.String("baseURL", config.BaseURL),
		logger.Int("events", config.NumEvents),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Uint64("seed", config.Seed),
		logger.Float64("invalidRatio", config.InvalidRatio))

	client := NewHTTPClient(config.BaseURL, config.Timeout)
	graph, err := reactive.NewGraph(views.Definitions())
	if err != nil {
		return stats, fmt.Errorf("build graph: %w", err)
	}

	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	st, err := client.FetchState(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetch parameters: %w", err)
	}

	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	events := NewGenerator(st.Domain, seed, config.InvalidRatio).Generate(config.NumEvents)
	stats.EventsGenerated = len(events)

	problems := submitEvents(ctx, config, client, graph, events, stats)

	// The service serializes events, so once all answers are in the final
	// state is stable and every artifact must match it.
	final, err := client.FetchState(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetch final parameters: %w", err)
	}
	arts, err := client.FetchArtifacts(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetch artifacts: %w", err)
	}
	problems = append(problems, VerifyArtifacts(graph, final.Params, arts)...)
	stats.Mismatches = len(problems)

	if config.OutputFile != "" {
		if err := saveEventsToFile(ctx, config.OutputFile, events); err != nil {
			log.Warn(ctx, "failed to save events to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if len(problems) > 0 {
		for _, p := range problems {
			log.Error(ctx, "mismatch", logger.Error(p))
		}
		return stats, fmt.Errorf("%w: %w", ErrVerification, errors.Join(problems...))
	}
	log.Info(ctx, "replay completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")
	if err := client.Get(ctx, "/healthz", nil); err != nil {
		return fmt.Errorf("failed to reach service: %w", err)
	}
	return nil
}

// saveEventsToFile writes the generated events as a JSON array.
func saveEventsToFile(ctx context.Context, filename string, events []Event) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write events: %w", err)
	}
	logger.Get().Info(ctx, "events saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, eventsPerSecond float64
	if stats.EventsSubmitted > 0 {
		acceptRate = float64(stats.EventsAccepted) / float64(stats.EventsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("eventsSubmitted", stats.EventsSubmitted),
		logger.Int("eventsAccepted", stats.EventsAccepted),
		logger.Int("eventsRejected", stats.EventsRejected),
		logger.Int("eventsFailed", stats.EventsFailed),
		logger.Int("outputsRecomputed", stats.OutputsRecomputed),
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("eventsPerSecond", eventsPerSecond))
}
