package source

import (
	"context"
	"errors"
	"testing"

	"castfetch/internal/catalog"
	"castfetch/internal/logging"
	"castfetch/internal/services"
)

type fakeStream struct {
	size   int64
	closed bool
}

func (f *fakeStream) Size() int64                     { return f.size }
func (f *fakeStream) ReadChunk(p []byte) (int, error) { return 0, nil }
func (f *fakeStream) Close() error                    { f.closed = true; return nil }

type fakeResolver struct {
	desc      *catalog.PartnerDescriptor
	descErr   error
	stream    Stream
	streamErr error

	streamOpened bool
}

func (f *fakeResolver) FetchPartnerDescriptor(ctx context.Context, episodeID string) (*catalog.PartnerDescriptor, error) {
	return f.desc, f.descErr
}

func (f *fakeResolver) OpenContentStream(ctx context.Context, episodeID, quality string) (Stream, error) {
	f.streamOpened = true
	return f.stream, f.streamErr
}

func newTestSelector(resolver Resolver) *Selector {
	return NewSelectorWithResolver(resolver, "high", []string{"anon-podcast.scdn.co"}, logging.NewNop())
}

func TestResolveSelectsDirectForGenuineAsset(t *testing.T) {
	resolver := &fakeResolver{
		desc: &catalog.PartnerDescriptor{
			AudioURLs:        []string{"https://cdn.example/low", "https://cdn.example/full"},
			HasPreviewMarker: true,
		},
	}

	plan, err := newTestSelector(resolver).Resolve(context.Background(), "ep1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Kind != KindDirectHTTP {
		t.Fatalf("kind = %s, want direct", plan.Kind)
	}
	if plan.DirectURL != "https://cdn.example/full" {
		t.Fatalf("direct url = %q, want last audio item", plan.DirectURL)
	}
	if resolver.streamOpened {
		t.Fatal("stream must not be opened on direct path")
	}
}

func TestResolveAnonymousHostForcesStream(t *testing.T) {
	for _, host := range []string{"anon-podcast.scdn.co", "anon-podcast.example"} {
		resolver := &fakeResolver{
			desc: &catalog.PartnerDescriptor{
				AudioURLs:        []string{"https://" + host + "/asset"},
				HasPreviewMarker: true,
			},
			stream: &fakeStream{size: 4096},
		}

		plan, err := newTestSelector(resolver).Resolve(context.Background(), "ep1")
		if err != nil {
			t.Fatalf("Resolve(%s): %v", host, err)
		}
		if plan.Kind != KindEncryptedStream {
			t.Fatalf("host %s: kind = %s, want encrypted stream", host, plan.Kind)
		}
		if plan.TotalSizeBytes != 4096 {
			t.Fatalf("total size = %d", plan.TotalSizeBytes)
		}
	}
}

func TestResolveMissingPreviewMarkerForcesStream(t *testing.T) {
	resolver := &fakeResolver{
		desc: &catalog.PartnerDescriptor{
			AudioURLs:        []string{"https://cdn.example/full"},
			HasPreviewMarker: false,
		},
		stream: &fakeStream{size: 10},
	}

	plan, err := newTestSelector(resolver).Resolve(context.Background(), "ep1")
	if err != nil {
		t.Fatal(err)
	}
	if plan.Kind != KindEncryptedStream {
		t.Fatalf("kind = %s, want encrypted stream", plan.Kind)
	}
}

func TestResolveEmptyAudioListFallsBackToStream(t *testing.T) {
	resolver := &fakeResolver{
		desc:   &catalog.PartnerDescriptor{HasPreviewMarker: true},
		stream: &fakeStream{size: 10},
	}
	plan, err := newTestSelector(resolver).Resolve(context.Background(), "ep1")
	if err != nil {
		t.Fatal(err)
	}
	if plan.Kind != KindEncryptedStream {
		t.Fatalf("kind = %s", plan.Kind)
	}
}

func TestResolveStreamUnavailable(t *testing.T) {
	resolver := &fakeResolver{
		desc: &catalog.PartnerDescriptor{},
	}
	_, err := newTestSelector(resolver).Resolve(context.Background(), "ep1")
	if !errors.Is(err, services.ErrSourceUnavailable) {
		t.Fatalf("expected source unavailability, got %v", err)
	}
}

func TestResolveDescriptorErrorClassified(t *testing.T) {
	resolver := &fakeResolver{descErr: errors.New("network down")}
	_, err := newTestSelector(resolver).Resolve(context.Background(), "ep1")
	if !errors.Is(err, services.ErrSourceUnavailable) {
		t.Fatalf("expected source unavailability, got %v", err)
	}
}
