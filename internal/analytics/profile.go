package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/embedplay/embedplay/internal/bridge"
)

// ProfileClient records viewing history with the profile service so
// viewers can resume where they left off on other surfaces.
type ProfileClient struct {
	baseURL string
	http    *http.Client
}

func NewProfileClient(baseURL string) *ProfileClient {
	return &ProfileClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// platformSlug decides which history bucket a report lands in. Portal
// and station embeds share the portal bucket so progress follows the
// viewer between station sites; everything else is the partner bucket.
func platformSlug(embed *bridge.Context) string {
	if embed.PlayerType == bridge.PortalPlayer || embed.PlayerType == bridge.StationPlayer {
		return "portal"
	}
	return "partnerplayer"
}

type historyReport struct {
	Method       string `json:"method"`
	PlatformSlug string `json:"platform_slug"`
	Timecode     int    `json:"timecode"`
}

// AddToHistory reports the current timecode. Anonymous sessions are a
// no-op, and failures only log; history is best-effort.
func (c *ProfileClient) AddToHistory(ctx context.Context, video *bridge.Video, embed *bridge.Context, timecode float64) {
	if embed.UserID == "" {
		return
	}
	body, err := json.Marshal(historyReport{
		Method:       "PUT",
		PlatformSlug: platformSlug(embed),
		Timecode:     int(math.Round(timecode)),
	})
	if err != nil {
		return
	}
	u := c.baseURL + "/api/users/" + url.PathEscape(embed.UserID) + "/viewing-history/" + url.PathEscape(video.ID) + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("analytics: viewing history update failed", "error", err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		slog.Warn("analytics: viewing history update rejected", "status", resp.StatusCode)
	}
}

// ShouldResumeHistory says whether a session should pick up from the
// profile service's recorded position: meaningfully started (>30s) but
// not effectively finished (<95% viewed).
func ShouldResumeHistory(video *bridge.Video, history bridge.ViewingHistory) bool {
	if history.SecondsWatched <= 30 || video.Duration <= 0 {
		return false
	}
	return history.SecondsWatched/video.Duration < 0.95
}
