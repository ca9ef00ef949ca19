package catalog

import (
	"errors"
	"io"
)

// ContentStream is an open, authenticated content-stream session. The
// transport may signal completion through a run of empty reads rather than a
// single sentinel; callers own the end-of-stream tolerance.
type ContentStream struct {
	body io.ReadCloser
	size int64
	done bool
}

func newContentStream(body io.ReadCloser, size int64) *ContentStream {
	return &ContentStream{body: body, size: size}
}

// Size returns the declared total content length in bytes.
func (s *ContentStream) Size() int64 {
	return s.size
}

// ReadChunk fills p with up to len(p) bytes. A drained transport yields
// empty reads (0, nil) instead of an error, matching the session contract.
func (s *ContentStream) ReadChunk(p []byte) (int, error) {
	if s.done || len(p) == 0 {
		return 0, nil
	}
	n, err := io.ReadFull(s.body, p)
	if err == nil {
		return n, nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		s.done = true
		return n, nil
	}
	return n, err
}

// Close releases the underlying transport.
func (s *ContentStream) Close() error {
	return s.body.Close()
}
