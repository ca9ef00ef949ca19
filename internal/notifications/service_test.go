package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"castfetch/internal/config"
	"castfetch/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunStarted(context.Background(), "Show", 3); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	message  string
	tags     string
	priority string
}

func newCaptureServer(t *testing.T, got *captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Errorf("read request body: %v", err)
		}
		got.title = req.Header.Get("Title")
		got.message = string(body)
		got.tags = req.Header.Get("Tags")
		got.priority = req.Header.Get("Priority")
		rw.WriteHeader(http.StatusOK)
	}))
}

func newNtfyService(t *testing.T, endpoint string) notifications.Service {
	t.Helper()
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = endpoint
	return notifications.NewService(&cfg)
}

func TestNtfyServiceFormatsRunEvents(t *testing.T) {
	var got captured
	server := newCaptureServer(t, &got)
	defer server.Close()
	svc := newNtfyService(t, server.URL)
	ctx := context.Background()

	if err := svc.NotifyRunStarted(ctx, "My Show", 12); err != nil {
		t.Fatalf("NotifyRunStarted() error = %v", err)
	}
	if got.title != "Castfetch - Run Started" {
		t.Errorf("title = %q", got.title)
	}
	if got.message != "Started fetching 12 episodes of My Show" {
		t.Errorf("message = %q", got.message)
	}
	if got.tags != "castfetch,run,started" {
		t.Errorf("tags = %q", got.tags)
	}

	if err := svc.NotifyRunCompleted(ctx, "My Show", 10, 1, 0, 90*time.Second); err != nil {
		t.Fatalf("NotifyRunCompleted() error = %v", err)
	}
	if got.title != "Castfetch - Run Complete" {
		t.Errorf("title = %q", got.title)
	}
	if got.message != "My Show: 10 downloaded, 1 skipped in 1m30s" {
		t.Errorf("message = %q", got.message)
	}

	if err := svc.NotifyRunCompleted(ctx, "My Show", 8, 1, 3, time.Minute); err != nil {
		t.Fatalf("NotifyRunCompleted() error = %v", err)
	}
	if got.title != "Castfetch - Run Complete (with errors)" {
		t.Errorf("title = %q", got.title)
	}
	if got.message != "My Show: 8 downloaded, 1 skipped, 3 failed in 1m0s" {
		t.Errorf("message = %q", got.message)
	}
}

func TestNtfyServiceFormatsEpisodeEvents(t *testing.T) {
	var got captured
	server := newCaptureServer(t, &got)
	defer server.Close()
	svc := newNtfyService(t, server.URL)
	ctx := context.Background()

	if err := svc.NotifyEpisodeDownloaded(ctx, "My Show", "Episode Nine", "/pods/My Show/My Show - Episode Nine.ogg"); err != nil {
		t.Fatalf("NotifyEpisodeDownloaded() error = %v", err)
	}
	want := "Downloaded: My Show - Episode Nine\nFile: /pods/My Show/My Show - Episode Nine.ogg"
	if got.message != want {
		t.Errorf("message = %q, want %q", got.message, want)
	}

	if err := svc.NotifyEpisodeFailed(ctx, "My Show", "Episode Ten", errors.New("stream unavailable")); err != nil {
		t.Fatalf("NotifyEpisodeFailed() error = %v", err)
	}
	if got.message != "Failed: My Show - Episode Ten: stream unavailable" {
		t.Errorf("message = %q", got.message)
	}
	if got.priority != "high" {
		t.Errorf("priority = %q, want high", got.priority)
	}
}

func TestNtfyServiceSurfacesHTTPFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		http.Error(rw, "topic rejected", http.StatusForbidden)
	}))
	defer server.Close()
	svc := newNtfyService(t, server.URL)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
