package transfer

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"castfetch/internal/config"
	"castfetch/internal/logging"
	"castfetch/internal/progress"
	"castfetch/internal/services"
	"castfetch/internal/source"
)

type scriptedStream struct {
	chunks [][]byte
	next   int
	closed bool
}

func (s *scriptedStream) Size() int64 {
	var total int64
	for _, c := range s.chunks {
		total += int64(len(c))
	}
	return total
}

func (s *scriptedStream) ReadChunk(buf []byte) (int, error) {
	if s.next >= len(s.chunks) {
		return 0, nil
	}
	chunk := s.chunks[s.next]
	s.next++
	return copy(buf, chunk), nil
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

func newTestWriter(realTime bool) *Writer {
	cfg := config.Default()
	cfg.Download.RealTime = realTime
	return NewWriter(&cfg, progress.Noop(), logging.NewNop())
}

func TestDownloadStreamWritesAllBytes(t *testing.T) {
	payload := bytes.Repeat([]byte("abcdefgh"), 4096)
	stream := &scriptedStream{chunks: [][]byte{
		payload[:10000],
		payload[10000:20000],
		payload[20000:],
	}}
	plan := &source.Plan{
		Kind:           source.KindEncryptedStream,
		Stream:         stream,
		TotalSizeBytes: int64(len(payload)),
	}

	tmpPath := filepath.Join(t.TempDir(), "episode.tmp")
	w := newTestWriter(false)

	written, err := w.Download(context.Background(), plan, tmpPath, "episode", 0)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if written != int64(len(payload)) {
		t.Fatalf("Download() wrote %d bytes, want %d", written, len(payload))
	}
	got, err := os.ReadFile(tmpPath)
	if err != nil {
		t.Fatalf("read temp file: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("temp file content differs from stream payload")
	}
}

func TestDownloadStreamStopsAfterConsecutiveEmptyReads(t *testing.T) {
	// Empty reads interleaved with data must not terminate the transfer;
	// only an unbroken run of them does.
	stream := &scriptedStream{chunks: [][]byte{
		[]byte("first"),
		nil, nil, nil, nil,
		[]byte("second"),
	}}
	plan := &source.Plan{Kind: source.KindEncryptedStream, Stream: stream, TotalSizeBytes: 11}

	tmpPath := filepath.Join(t.TempDir(), "episode.tmp")
	w := newTestWriter(false)

	written, err := w.Download(context.Background(), plan, tmpPath, "episode", 0)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if written != 11 {
		t.Fatalf("Download() wrote %d bytes, want 11", written)
	}
}

func TestDownloadStreamPacesToPlaybackDuration(t *testing.T) {
	payload := bytes.Repeat([]byte{0x5a}, 40000)
	stream := &scriptedStream{chunks: [][]byte{
		payload[:10000],
		payload[10000:20000],
		payload[20000:30000],
		payload[30000:],
	}}
	plan := &source.Plan{
		Kind:           source.KindEncryptedStream,
		Stream:         stream,
		TotalSizeBytes: int64(len(payload)),
	}

	w := newTestWriter(true)
	clock := time.Unix(0, 0)
	var slept time.Duration
	w.now = func() time.Time { return clock }
	w.sleep = func(d time.Duration) {
		slept += d
		clock = clock.Add(d)
	}

	duration := 8 * time.Second
	tmpPath := filepath.Join(t.TempDir(), "episode.tmp")
	if _, err := w.Download(context.Background(), plan, tmpPath, "episode", duration); err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	// Four equal chunks against an 8s duration should pace the clock out to
	// the full duration by the final chunk.
	if slept != duration {
		t.Fatalf("total sleep = %v, want %v", slept, duration)
	}
}

func TestDownloadStreamNoPacingWhenDisabled(t *testing.T) {
	stream := &scriptedStream{chunks: [][]byte{bytes.Repeat([]byte{1}, 5000)}}
	plan := &source.Plan{Kind: source.KindEncryptedStream, Stream: stream, TotalSizeBytes: 5000}

	w := newTestWriter(false)
	w.sleep = func(time.Duration) { t.Fatal("sleep called with pacing disabled") }

	tmpPath := filepath.Join(t.TempDir(), "episode.tmp")
	if _, err := w.Download(context.Background(), plan, tmpPath, "episode", time.Minute); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
}

func TestDownloadStreamHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream := &scriptedStream{chunks: [][]byte{[]byte("data")}}
	plan := &source.Plan{Kind: source.KindEncryptedStream, Stream: stream, TotalSizeBytes: 4}

	w := newTestWriter(false)
	_, err := w.Download(ctx, plan, filepath.Join(t.TempDir(), "episode.tmp"), "episode", 0)
	if !errors.Is(err, services.ErrTransfer) {
		t.Fatalf("Download() error = %v, want ErrTransfer", err)
	}
}

func TestDownloadDirect(t *testing.T) {
	payload := bytes.Repeat([]byte("castfetch"), 2048)
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write(payload)
	}))
	defer server.Close()

	plan := &source.Plan{Kind: source.KindDirectHTTP, DirectURL: server.URL}
	tmpPath := filepath.Join(t.TempDir(), "episode.tmp")
	w := newTestWriter(false)

	written, err := w.Download(context.Background(), plan, tmpPath, "episode", 0)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if written != int64(len(payload)) {
		t.Fatalf("Download() wrote %d bytes, want %d", written, len(payload))
	}
	got, err := os.ReadFile(tmpPath)
	if err != nil {
		t.Fatalf("read temp file: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("temp file content differs from response body")
	}
}

func TestDownloadDirectRejectsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	plan := &source.Plan{Kind: source.KindDirectHTTP, DirectURL: server.URL}
	w := newTestWriter(false)

	_, err := w.Download(context.Background(), plan, filepath.Join(t.TempDir(), "episode.tmp"), "episode", 0)
	if !errors.Is(err, services.ErrTransfer) {
		t.Fatalf("Download() error = %v, want ErrTransfer", err)
	}
}
