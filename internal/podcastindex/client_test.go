package podcastindex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franz/podchart/internal/util"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		APIKey:    "test-key",
		APISecret: "test-secret",
		BaseURL:   server.URL,
		Pause:     1, // no artificial spacing in tests
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSearchByTermSendsAuthHeaders(t *testing.T) {
	var gotKey, gotDate, gotAuth, gotUA string

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Auth-Key")
		gotDate = r.Header.Get("X-Auth-Date")
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"feeds":[],"count":0}`))
	})

	if _, err := client.SearchByTerm(context.Background(), "the daily"); err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("expected X-Auth-Key 'test-key', got %q", gotKey)
	}
	if gotDate == "" {
		t.Error("expected X-Auth-Date to be set")
	}
	if len(gotAuth) != 40 {
		t.Errorf("expected 40-char sha1 Authorization header, got %q", gotAuth)
	}
	if gotUA != UserAgent {
		t.Errorf("expected User-Agent %q, got %q", UserAgent, gotUA)
	}
}

func TestSearchByTermDecodesFeeds(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/byterm" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "the daily" {
			t.Errorf("unexpected query %q", r.URL.Query().Get("q"))
		}
		w.Write([]byte(`{"feeds":[
			{"id":920666,"title":"The Daily","url":"https://feeds.example.com/daily.xml"},
			{"id":12345,"title":"The Daily Show"}
		],"count":2}`))
	})

	feeds, err := client.SearchByTerm(context.Background(), "the daily")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(feeds) != 2 {
		t.Fatalf("expected 2 feeds, got %d", len(feeds))
	}
	if feeds[0].ID != 920666 || feeds[0].Title != "The Daily" {
		t.Errorf("unexpected first feed: %+v", feeds[0])
	}
}

func TestSearchByTermFallsBackToResultsKey(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"id":7,"title_original":"Morbid"}],"count":1}`))
	})

	feeds, err := client.SearchByTerm(context.Background(), "morbid")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(feeds) != 1 || feeds[0].DisplayTitle() != "Morbid" {
		t.Errorf("unexpected feeds: %+v", feeds)
	}
}

func TestRateLimitSignaledAsRetryable(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.SearchByTerm(context.Background(), "the daily")
	if !errors.Is(err, util.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if !util.IsRetryableError(err) {
		t.Error("expected rate-limit error to be retryable")
	}
}

func TestPodcastByFeedID(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/podcasts/byfeedid" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"feed":{
			"id":920666,
			"title":"The Daily",
			"description":"This is what the news should sound like.",
			"url":"https://feeds.example.com/daily.xml",
			"image":"https://images.example.com/daily.jpg",
			"episodeCount":2100,
			"lastUpdateTime":1704153600,
			"podcastGuid":"917393e3-683b-5b7c-9e2c-0053dd17ed49",
			"categories":{"55":"News","59":"Politics"}
		}}`))
	})

	feed, err := client.PodcastByFeedID(context.Background(), 920666)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if feed.Title != "The Daily" {
		t.Errorf("unexpected title %q", feed.Title)
	}
	if feed.EpisodeCount != 2100 {
		t.Errorf("unexpected episode count %d", feed.EpisodeCount)
	}
	if feed.Categories["55"] != "News" {
		t.Errorf("unexpected categories %v", feed.Categories)
	}
}

func TestPodcastByFeedIDNotFound(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"feed":{}}`))
	})

	_, err := client.PodcastByFeedID(context.Background(), 42)
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEpisodesByFeedID(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("max") != "10" {
			t.Errorf("unexpected max %q", r.URL.Query().Get("max"))
		}
		w.Write([]byte(`{"items":[
			{"title":"Episode 3","duration":1800},
			{"title":"Episode 2","duration":0},
			{"title":"Episode 1","duration":1500}
		]}`))
	})

	episodes, err := client.EpisodesByFeedID(context.Background(), 920666, 10)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(episodes) != 3 {
		t.Fatalf("expected 3 episodes, got %d", len(episodes))
	}
	if episodes[0].Title != "Episode 3" || episodes[0].Duration != 1800 {
		t.Errorf("unexpected first episode: %+v", episodes[0])
	}
}
