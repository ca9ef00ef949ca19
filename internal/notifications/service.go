package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"castfetch/internal/config"
)

const userAgent = "Castfetch/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyRunStarted(ctx context.Context, show string, count int) error
	NotifyRunCompleted(ctx context.Context, show string, downloaded, skipped, failed int, duration time.Duration) error
	NotifyEpisodeDownloaded(ctx context.Context, show, episode, finalFile string) error
	NotifyEpisodeFailed(ctx context.Context, show, episode string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, show string, count int) error {
	show = strings.TrimSpace(show)
	data := payload{
		title:   "Castfetch - Run Started",
		message: fmt.Sprintf("Started fetching %d episodes of %s", count, show),
		tags:    []string{"castfetch", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, show string, downloaded, skipped, failed int, duration time.Duration) error {
	show = strings.TrimSpace(show)
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title string
	var message string
	if failed == 0 {
		title = "Castfetch - Run Complete"
		message = fmt.Sprintf("%s: %d downloaded, %d skipped in %s", show, downloaded, skipped, durationText)
	} else {
		title = "Castfetch - Run Complete (with errors)"
		message = fmt.Sprintf("%s: %d downloaded, %d skipped, %d failed in %s", show, downloaded, skipped, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"castfetch", "run", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyEpisodeDownloaded(ctx context.Context, show, episode, finalFile string) error {
	show = strings.TrimSpace(show)
	episode = strings.TrimSpace(episode)
	finalFile = strings.TrimSpace(finalFile)
	message := fmt.Sprintf("Downloaded: %s - %s", show, episode)
	if finalFile != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, finalFile)
	}
	data := payload{
		title:   "Castfetch - Episode Ready",
		message: message,
		tags:    []string{"castfetch", "episode", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyEpisodeFailed(ctx context.Context, show, episode string, err error) error {
	show = strings.TrimSpace(show)
	episode = strings.TrimSpace(episode)

	var builder strings.Builder
	builder.WriteString("Failed: ")
	builder.WriteString(show)
	builder.WriteString(" - ")
	builder.WriteString(episode)
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Castfetch - Episode Failed",
		message:  builder.String(),
		tags:     []string{"castfetch", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Castfetch - Test",
		message:  "Notification system test",
		tags:     []string{"castfetch", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, string, int) error { return nil }
func (noopService) NotifyRunCompleted(context.Context, string, int, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyEpisodeDownloaded(context.Context, string, string, string) error {
	return nil
}
func (noopService) NotifyEpisodeFailed(context.Context, string, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }
