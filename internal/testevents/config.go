package testevents

import (
	"time"

	"github.com/okian/edupanel/internal/domain/params"
)

// Config holds configuration for an event replay run.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumEvents    int           // Number of change events to generate
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	Seed         uint64        // Seed for the event generator; 0 picks one
	InvalidRatio float64       // Share of events carrying an out-of-domain value
	OutputFile   string        // Output file for events
	LogFile      string        // Log file for test output
	Verbose      bool          // Enable verbose logging
}

// Event is one parameter change event sent to POST /params.
type Event struct {
	EventID string         `json:"event_id"`
	Changes params.Changes `json:"changes"`
	Invalid bool           `json:"invalid"`
}

// Stats holds run statistics.
type Stats struct {
	EventsGenerated   int
	EventsSubmitted   int
	EventsAccepted    int
	EventsRejected    int
	EventsFailed      int
	Mismatches        int
	OutputsRecomputed int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
