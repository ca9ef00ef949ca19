package source

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"castfetch/internal/catalog"
	"castfetch/internal/config"
	"castfetch/internal/logging"
	"castfetch/internal/services"
)

// anonymousHostPrefix matches preview delivery hosts regardless of domain
// suffix; the catalog rotates these across regions.
const anonymousHostPrefix = "anon-podcast."

// Resolver is the slice of the catalog client the selector needs.
type Resolver interface {
	FetchPartnerDescriptor(ctx context.Context, episodeID string) (*catalog.PartnerDescriptor, error)
	OpenContentStream(ctx context.Context, episodeID, quality string) (Stream, error)
}

// Selector decides, per episode, whether a direct bulk download or the
// encrypted content stream supplies the audio. The direct path is preferred
// only when the partner API explicitly signals a genuine asset; everything
// else defaults to the authenticated stream.
type Selector struct {
	resolver       Resolver
	quality        string
	anonymousHosts map[string]struct{}
	logger         *slog.Logger
}

// NewSelector builds a selector backed by the catalog client.
func NewSelector(client *catalog.Client, cfg *config.Config, logger *slog.Logger) *Selector {
	return NewSelectorWithResolver(catalogResolver{client: client}, cfg.Catalog.Quality, cfg.Catalog.AnonymousHosts, logger)
}

// NewSelectorWithResolver allows injecting the resolver (used in tests).
func NewSelectorWithResolver(resolver Resolver, quality string, anonymousHosts []string, logger *slog.Logger) *Selector {
	hosts := make(map[string]struct{}, len(anonymousHosts))
	for _, host := range anonymousHosts {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			hosts[host] = struct{}{}
		}
	}
	return &Selector{
		resolver:       resolver,
		quality:        quality,
		anonymousHosts: hosts,
		logger:         logging.NewComponentLogger(logger, "source"),
	}
}

// Resolve produces the episode's source plan or a source-unavailability
// failure. On the stream path the returned plan owns an open session; the
// caller must Close it.
func (s *Selector) Resolve(ctx context.Context, episodeID string) (*Plan, error) {
	logger := logging.WithContext(ctx, s.logger)

	desc, err := s.resolver.FetchPartnerDescriptor(ctx, episodeID)
	if err != nil {
		return nil, services.Wrap(services.ErrSourceUnavailable, "source resolving", "partner descriptor", episodeID, err)
	}

	candidate := ""
	if n := len(desc.AudioURLs); n > 0 {
		candidate = desc.AudioURLs[n-1]
	}

	if candidate != "" && desc.HasPreviewMarker && !s.isAnonymousURL(candidate) {
		logger.Debug("direct download selected", logging.String("url", candidate))
		return &Plan{Kind: KindDirectHTTP, DirectURL: candidate}, nil
	}

	stream, err := s.resolver.OpenContentStream(ctx, episodeID, s.quality)
	if err != nil {
		return nil, services.Wrap(services.ErrSourceUnavailable, "source resolving", "open content stream", episodeID, err)
	}
	if stream == nil {
		return nil, services.Wrap(services.ErrSourceUnavailable, "source resolving", "open content stream",
			"no content stream available for episode "+episodeID, nil)
	}
	logger.Debug("encrypted stream selected", logging.Int64("total_size", stream.Size()))
	return &Plan{Kind: KindEncryptedStream, Stream: stream, TotalSizeBytes: stream.Size()}, nil
}

// isAnonymousURL reports whether the candidate direct URL points at an
// anonymous/preview delivery host.
func (s *Selector) isAnonymousURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return true
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return true
	}
	if _, ok := s.anonymousHosts[host]; ok {
		return true
	}
	return strings.HasPrefix(host, anonymousHostPrefix)
}

type catalogResolver struct {
	client *catalog.Client
}

func (r catalogResolver) FetchPartnerDescriptor(ctx context.Context, episodeID string) (*catalog.PartnerDescriptor, error) {
	return r.client.FetchPartnerDescriptor(ctx, episodeID)
}

func (r catalogResolver) OpenContentStream(ctx context.Context, episodeID, quality string) (Stream, error) {
	stream, err := r.client.OpenContentStream(ctx, episodeID, quality)
	if err != nil || stream == nil {
		return nil, err
	}
	return stream, nil
}
