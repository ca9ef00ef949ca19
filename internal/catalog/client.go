package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"castfetch/internal/config"
	"castfetch/internal/logging"
	"castfetch/internal/services"
)

// Client talks to the podcast catalog API: episode metadata, show episode
// enumeration, the partner descriptor, and content-stream sessions.
type Client struct {
	baseURL    string
	partnerURL string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// New constructs a catalog client from application configuration.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.Catalog.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.Catalog.BaseURL,
		partnerURL: cfg.Catalog.PartnerURL,
		token:      cfg.Catalog.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "catalog"),
	}
}

// NewWithEndpoints constructs a client against explicit endpoints (used in tests).
func NewWithEndpoints(baseURL, partnerURL, token string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		partnerURL: partnerURL,
		token:      token,
		httpClient: httpClient,
		logger:     logging.NewComponentLogger(logger, "catalog"),
	}
}

// EpisodeMetadata fetches and normalizes one episode's metadata. Every
// failure mode (HTTP, API error marker, parse) is classified as metadata
// unavailability; raw parse errors never reach the caller unclassified.
func (c *Client) EpisodeMetadata(ctx context.Context, episodeID string) (*EpisodeMetadata, error) {
	raw, err := c.get(ctx, fmt.Sprintf("%s/episodes/%s", c.baseURL, url.PathEscape(episodeID)))
	if err != nil {
		return nil, services.Wrap(services.ErrMetadataUnavailable, "resolving", "fetch episode", episodeID, err)
	}
	meta, err := parseEpisodeMetadata(raw)
	if err != nil {
		c.logger.Debug("episode metadata parse failed", logging.String(logging.FieldEpisodeID, episodeID), logging.Error(err))
		return nil, services.Wrap(services.ErrMetadataUnavailable, "resolving", "parse episode", episodeID, err)
	}
	return meta, nil
}

type episodePage struct {
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
	Next string `json:"next"`
}

// ShowEpisodeIDs enumerates every episode identifier of a show. Pagination
// is fully drained before returning, matching the collaborator contract.
func (c *Client) ShowEpisodeIDs(ctx context.Context, showID string) ([]string, error) {
	const pageLimit = 50

	var ids []string
	offset := 0
	for {
		endpoint := fmt.Sprintf("%s/shows/%s/episodes?limit=%d&offset=%d",
			c.baseURL, url.PathEscape(showID), pageLimit, offset)
		raw, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, fmt.Errorf("list show episodes: %w", err)
		}
		var page episodePage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("decode show episodes: %w", err)
		}
		for _, item := range page.Items {
			if item.ID != "" {
				ids = append(ids, item.ID)
			}
		}
		if page.Next == "" || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}
	c.logger.Debug("show episodes enumerated", logging.String("show_id", showID), logging.Int("episodes", len(ids)))
	return ids, nil
}

// PartnerDescriptor carries the candidate direct URL list and the preview
// marker used by source selection.
type PartnerDescriptor struct {
	AudioURLs        []string
	HasPreviewMarker bool
}

type partnerResponse struct {
	Data struct {
		Episode struct {
			Audio struct {
				Items []struct {
					URL string `json:"url"`
				} `json:"items"`
			} `json:"audio"`
			AudioPreview *struct {
				URL string `json:"url"`
			} `json:"audio_preview_url"`
		} `json:"episode"`
	} `json:"data"`
}

// FetchPartnerDescriptor requests the partner-API descriptor for an episode.
func (c *Client) FetchPartnerDescriptor(ctx context.Context, episodeID string) (*PartnerDescriptor, error) {
	endpoint := fmt.Sprintf("%s?episode_id=%s", c.partnerURL, url.QueryEscape(episodeID))
	raw, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch partner descriptor: %w", err)
	}
	var resp partnerResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode partner descriptor: %w", err)
	}
	desc := &PartnerDescriptor{HasPreviewMarker: resp.Data.Episode.AudioPreview != nil}
	for _, item := range resp.Data.Episode.Audio.Items {
		if item.URL != "" {
			desc.AudioURLs = append(desc.AudioURLs, item.URL)
		}
	}
	return desc, nil
}

// OpenContentStream opens an authenticated content-stream session for the
// episode at the requested quality. A nil stream with nil error signals the
// stream is unavailable for this episode.
func (c *Client) OpenContentStream(ctx context.Context, episodeID, quality string) (*ContentStream, error) {
	endpoint := fmt.Sprintf("%s/episode-streams/%s?quality=%s",
		c.baseURL, url.PathEscape(episodeID), url.QueryEscape(quality))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	c.authorize(req)

	// The stream client deliberately has no overall timeout: transfers are
	// long-lived and paced. Per-request cancellation comes from ctx.
	streamClient := &http.Client{Transport: c.httpClient.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open content stream: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusForbidden:
		_ = resp.Body.Close()
		return nil, nil
	default:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("open content stream: unexpected status %s", resp.Status)
	}

	size, _ := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	return newContentStream(resp.Body, size), nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return body, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return body, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
}
