package source

// Kind identifies the delivery mechanism a plan selects.
type Kind string

const (
	// KindDirectHTTP is a plain, unauthenticated bulk download.
	KindDirectHTTP Kind = "direct_http"
	// KindEncryptedStream is an authenticated, chunked transport requiring
	// application-level decryption.
	KindEncryptedStream Kind = "encrypted_stream"
)

// Stream is the open content-stream session a plan carries. Empty reads
// (0, nil) signal possible end of stream; the writer owns the tolerance.
type Stream interface {
	Size() int64
	ReadChunk(p []byte) (int, error)
	Close() error
}

// Plan is a tagged choice of exactly one delivery mechanism for an episode.
// Selection is made once per episode and never re-evaluated mid-download.
type Plan struct {
	Kind Kind

	// DirectURL is set only for KindDirectHTTP.
	DirectURL string

	// Stream and TotalSizeBytes are set only for KindEncryptedStream.
	Stream         Stream
	TotalSizeBytes int64
}

// Close releases the plan's stream session, if any.
func (p *Plan) Close() error {
	if p == nil || p.Stream == nil {
		return nil
	}
	return p.Stream.Close()
}
