// Package playerapi talks to the portal backend: continuous-play
// recommendations, live service-area checks, and the frontend
// instrumentation sink. Every call converts transport failure into a
// negative or zero result — the player keeps running on defaults.
package playerapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Recommendation is the next-video descriptor the continuous-play
// endpoint returns.
type Recommendation struct {
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	ShowTitle    string `json:"show_title"`
	EpisodeTitle string `json:"episode_title"`
	ImageURL     string `json:"image_url"`
	IsPassport   bool   `json:"is_passport"`
	IsPlayable   bool   `json:"is_playable"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// ContinuousPlay fetches the recommended follow-up for a video. The
// user id takes precedence over the station id; sending neither makes
// the backend error, so an identifier-less call goes out bare and is
// expected to fail. Passport-eligible content is only included when
// the host page asked for it.
func (c *Client) ContinuousPlay(ctx context.Context, slug, stationID, userID string, includePassport bool) (Recommendation, error) {
	q := url.Values{}
	if includePassport {
		q.Set("passport", "true")
	}
	if userID != "" {
		q.Set("user_id", userID)
	} else if stationID != "" {
		q.Set("station_id", stationID)
	}
	u := c.baseURL + "/api/videos/" + url.PathEscape(slug) + "/continuous-play/"
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}

	var rec Recommendation
	if err := c.getJSON(ctx, u, &rec); err != nil {
		return Recommendation{}, err
	}
	return rec, nil
}

// InServiceArea answers whether coordinates fall inside a station's
// broadcast area. Errors count as out-of-area.
func (c *Client) InServiceArea(ctx context.Context, stationID string, latitude, longitude float64) bool {
	u := fmt.Sprintf("%s/check-service-area/%s/%g/%g", c.baseURL, url.PathEscape(stationID), latitude, longitude)
	var answer struct {
		InServiceArea bool `json:"is_in_service_area"`
	}
	if err := c.getJSON(ctx, u, &answer); err != nil {
		slog.Error("playerapi: coordinate service-area check failed", "station_id", stationID, "error", err)
		return false
	}
	return answer.InServiceArea
}

// IPInServiceArea answers the same question from the caller's IP
// address. Errors return false so the flow falls back to device
// geolocation instead of breaking.
func (c *Client) IPInServiceArea(ctx context.Context, stationID string) bool {
	u := c.baseURL + "/check-ip-service-area/" + url.PathEscape(stationID)
	var answer struct {
		IPInServiceArea bool `json:"ip_is_in_service_area"`
	}
	if err := c.getJSON(ctx, u, &answer); err != nil {
		slog.Error("playerapi: ip service-area check failed", "station_id", stationID, "error", err)
		return false
	}
	return answer.IPInServiceArea
}

// Instrument posts a free-form diagnostic line to the backend sink.
// Fire and forget.
func (c *Client) Instrument(ctx context.Context, msg string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/instrumentation/", strings.NewReader(msg))
	if err != nil {
		return
	}
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("playerapi: instrumentation post failed", "error", err)
		return
	}
	resp.Body.Close()
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
