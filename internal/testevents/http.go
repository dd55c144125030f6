package testevents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/edupanel/internal/domain/params"
	"github.com/okian/edupanel/internal/domain/reactive"
	"github.com/okian/edupanel/internal/domain/views"
	"github.com/okian/edupanel/pkg/logger"
)

// ErrUnexpectedStatus is returned when the service answers with a status
// the runner does not expect.
var ErrUnexpectedStatus = errors.New("unexpected status")

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client with the given request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Get performs a GET request and decodes a 200 JSON body into out.
func (c *HTTPClient) Get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	status, body, err := c.do(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: GET %s returned %d", ErrUnexpectedStatus, path, status)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

// Post sends body as JSON and returns the status code and raw response.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (int, []byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) (int, []byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// State is the service's parameter state together with its domain.
type State struct {
	Params params.Params  `json:"params"`
	Domain params.Choices `json:"domain"`
}

// FetchState reads GET /params.
func (c *HTTPClient) FetchState(ctx context.Context) (State, error) {
	var st State
	err := c.Get(ctx, "/params", &st)
	return st, err
}

// FetchArtifacts reads GET /artifacts.
func (c *HTTPClient) FetchArtifacts(ctx context.Context) ([]views.Artifact, error) {
	var body struct {
		Artifacts []views.Artifact `json:"artifacts"`
	}
	err := c.Get(ctx, "/artifacts", &body)
	return body.Artifacts, err
}

type outcome int

const (
	outcomeAccepted outcome = iota
	outcomeRejected
	outcomeFailed
)

// submitEvents posts events concurrently and checks every answer against
// graph. It returns the mismatches found.
func submitEvents(ctx context.Context, config *Config, client *HTTPClient, graph *reactive.Graph, events []Event, stats *Stats) []error {
	log := logger.Get()
	log.Info(ctx, "submitting events", logger.Int("events", len(events)), logger.Int("workers", config.Workers))

	var (
		submitted, accepted, rejected, failed, recomputed int64

		mu         sync.Mutex
		mismatches []error
	)

	eventChan := make(chan Event, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ev := range eventChan {
				if ctx.Err() != nil {
					return
				}
				res, n, err := submitSingleEvent(ctx, client, graph, ev)
				atomic.AddInt64(&submitted, 1)
				atomic.AddInt64(&recomputed, int64(n))
				switch res {
				case outcomeAccepted:
					atomic.AddInt64(&accepted, 1)
				case outcomeRejected:
					atomic.AddInt64(&rejected, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
				if err != nil {
					mu.Lock()
					mismatches = append(mismatches, err)
					mu.Unlock()
					if config.Verbose {
						log.Warn(ctx, "event check failed", logger.String("event", ev.EventID), logger.Error(err))
					}
				}
			}
		}()
	}

	go func() {
		defer close(eventChan)
		for _, ev := range events {
			select {
			case <-ctx.Done():
				return
			case eventChan <- ev:
			}
		}
	}()

	wg.Wait()

	stats.EventsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.EventsAccepted = int(atomic.LoadInt64(&accepted))
	stats.EventsRejected = int(atomic.LoadInt64(&rejected))
	stats.EventsFailed = int(atomic.LoadInt64(&failed))
	stats.OutputsRecomputed = int(atomic.LoadInt64(&recomputed))

	log.Info(ctx, "event submission completed",
		logger.Int("accepted", stats.EventsAccepted),
		logger.Int("rejected", stats.EventsRejected),
		logger.Int("failed", stats.EventsFailed))
	return mismatches
}

// submitSingleEvent posts ev and verifies the answer. It returns the
// outcome, the number of outputs the service recomputed, and a non-nil
// error when the answer is inconsistent.
func submitSingleEvent(ctx context.Context, client *HTTPClient, graph *reactive.Graph, ev Event) (outcome, int, error) {
	status, body, err := client.Post(ctx, "/params", ev.Changes)
	if err != nil {
		return outcomeFailed, 0, fmt.Errorf("event %s: %w", ev.EventID, err)
	}

	switch status {
	case http.StatusOK:
		var up reactive.Update
		if err := json.Unmarshal(body, &up); err != nil {
			return outcomeFailed, 0, fmt.Errorf("event %s: decode update: %w", ev.EventID, err)
		}
		if ev.Invalid {
			return outcomeAccepted, len(up.Recomputed), fmt.Errorf("event %s: invalid event was accepted", ev.EventID)
		}
		return outcomeAccepted, len(up.Recomputed), VerifyUpdate(graph, up)
	case http.StatusBadRequest:
		if !ev.Invalid {
			return outcomeRejected, 0, fmt.Errorf("event %s: valid event was rejected: %s", ev.EventID, bytes.TrimSpace(body))
		}
		return outcomeRejected, 0, nil
	default:
		return outcomeFailed, 0, fmt.Errorf("%w: event %s got %d", ErrUnexpectedStatus, ev.EventID, status)
	}
}
