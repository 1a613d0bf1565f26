package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// EventClient posts tracked events to the measurement collector.
// Delivery is best-effort: the collector being down must never stall
// the dispatch pipeline, so posts run on their own goroutine and
// failures only log.
type EventClient struct {
	endpoint string
	http     *http.Client
}

func NewEventClient(endpoint string) *EventClient {
	return &EventClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

type trackedEvent struct {
	Event      string         `json:"event"`
	Properties map[string]any `json:"properties,omitempty"`
}

func (c *EventClient) TrackEvent(event string, properties map[string]any) {
	body, err := json.Marshal(trackedEvent{Event: event, Properties: properties})
	if err != nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			slog.Warn("analytics: event post failed", "event", event, "error", err)
			return
		}
		resp.Body.Close()
		if resp.StatusCode >= http.StatusBadRequest {
			slog.Warn("analytics: event post rejected", "event", event, "status", resp.StatusCode)
		}
	}()
}
