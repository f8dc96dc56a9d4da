package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franz/podchart/internal/util"
)

func fixedClock(c *Client) {
	c.now = func() time.Time {
		return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	}
}

func TestAppleChart(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"feed": {"results": [
			{"name": "The Daily", "id": "1200361736"},
			{"name": "Crime Junkie", "id": "1322200189"}
		]}}`))
	}))
	defer server.Close()

	c := New(Config{AppleBaseURL: server.URL})
	fixedClock(c)

	observations, err := c.Apple(context.Background(), "us", 100)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}

	if gotPath != "/us/podcasts/top/100/podcasts.json" {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if len(observations) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(observations))
	}

	first := observations[0]
	if first.Platform != "Apple" || first.Rank != 1 || first.Title != "The Daily" {
		t.Errorf("unexpected first observation: %+v", first)
	}
	if first.PlatformPodcastID != "1200361736" {
		t.Errorf("unexpected platform id %q", first.PlatformPodcastID)
	}
	if first.Date != "2024-01-15" {
		t.Errorf("unexpected date %q", first.Date)
	}
	if observations[1].Rank != 2 {
		t.Errorf("ranks must follow feed order, got %d", observations[1].Rank)
	}
}

func TestAppleChartEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"feed": {"results": []}}`))
	}))
	defer server.Close()

	c := New(Config{AppleBaseURL: server.URL})
	if _, err := c.Apple(context.Background(), "us", 100); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty chart, got %v", err)
	}
}

func TestSpotifyChart(t *testing.T) {
	var gotRegion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRegion = r.URL.Query().Get("region")
		w.Write([]byte(`[
			{"showUri": "spotify:show:4rOoJ6Egrf8K2IrywzwOMk", "showName": "The Joe Rogan Experience"},
			{"showUri": "", "showName": "No URI Show"}
		]`))
	}))
	defer server.Close()

	c := New(Config{SpotifyBaseURL: server.URL})
	fixedClock(c)

	observations, err := c.Spotify(context.Background(), "gb")
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}

	if gotRegion != "gb" {
		t.Errorf("expected region gb, got %q", gotRegion)
	}
	if len(observations) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(observations))
	}

	first := observations[0]
	if first.Platform != "Spotify" || first.Rank != 1 || first.Title != "The Joe Rogan Experience" {
		t.Errorf("unexpected first observation: %+v", first)
	}
	if first.PlatformPodcastID != "4rOoJ6Egrf8K2IrywzwOMk" {
		t.Errorf("expected id from showUri, got %q", first.PlatformPodcastID)
	}
	if observations[1].PlatformPodcastID != "" {
		t.Errorf("missing showUri must yield empty id, got %q", observations[1].PlatformPodcastID)
	}
}

func TestSpotifyChartRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := New(Config{SpotifyBaseURL: server.URL})
	if _, err := c.Spotify(context.Background(), "us"); !errors.Is(err, util.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestShowID(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"spotify:show:4rOoJ6Egrf8K2IrywzwOMk", "4rOoJ6Egrf8K2IrywzwOMk"},
		{"", ""},
		{"no-colons-here", ""},
	}

	for _, tt := range tests {
		if got := showID(tt.uri); got != tt.want {
			t.Errorf("showID(%q) = %q, expected %q", tt.uri, got, tt.want)
		}
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, 100},
		{-1, 100},
		{50, 50},
		{100, 100},
		{500, 100},
	}

	for _, tt := range tests {
		if got := clampLimit(tt.limit); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, expected %d", tt.limit, got, tt.want)
		}
	}
}
