package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Fetcher defaults. The size ceiling matches the deployed relay: 800 KiB
// is generous for a subscription calendar while keeping worst-case
// per-request buffering bounded.
const (
	DefaultMaxDocumentSize = 819200 // 800 KiB
	DefaultFetchChunkSize  = 4096
	DefaultFetchTimeout    = 30 * time.Second
)

// Fetcher streams a remote calendar document into memory while enforcing
// a hard size ceiling.
//
// The body is read in fixed-size chunks and the accumulator is checked
// after every chunk; the transfer is aborted the moment the ceiling is
// exceeded, without reading the remainder. The timeout covers the whole
// transfer, not individual chunks.
type Fetcher struct {
	// client performs the download. Built from timeout when no custom
	// client is supplied.
	client *http.Client

	// timeout bounds the whole transfer when the default client is used.
	timeout time.Duration

	// maxBytes is the size ceiling for the accumulated document.
	maxBytes int64

	// chunkSize is the read granularity. Smaller chunks mean tighter
	// enforcement of maxBytes at the cost of more read calls.
	chunkSize int

	// userAgent is the User-Agent header sent with the request.
	userAgent string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchClient replaces the HTTP client used for downloads. Mainly
// useful in tests, where the client must trust a local TLS server.
func WithFetchClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithFetchTimeout sets the whole-transfer timeout. Ignored when a
// custom client is also supplied, regardless of option order: the
// custom client carries its own timeout.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxDocumentSize sets the size ceiling in bytes.
func WithMaxDocumentSize(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithFetchChunkSize sets the read chunk size in bytes.
func WithFetchChunkSize(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.chunkSize = n
		}
	}
}

// WithFetchUserAgent sets the User-Agent header for the download.
func WithFetchUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a Fetcher with the default timeout, ceiling, and
// chunk size.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		maxBytes:  DefaultMaxDocumentSize,
		chunkSize: DefaultFetchChunkSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	// The client is built after the options so the timeout applies
	// whatever order the options came in, and a supplied client is
	// never mutated.
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	return f
}

// MaxBytes returns the configured size ceiling.
func (f *Fetcher) MaxBytes() int64 {
	return f.maxBytes
}

// Fetch downloads the document at rawURL and returns its decoded text
// and the number of raw bytes read.
//
// Transport failures and non-success statuses return ErrFetchFailed with
// the cause wrapped. Exceeding the size ceiling aborts the transfer and
// returns ErrTooLarge; the partial buffer is discarded and never appears
// in the error. Invalid UTF-8 in the body is replaced with U+FFFD rather
// than rejected, so decoding itself can never fail a request.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", 0, fmt.Errorf("%w: unexpected status %s", ErrFetchFailed, resp.Status)
	}

	var buf bytes.Buffer
	chunk := make([]byte, f.chunkSize)
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if int64(buf.Len()) > f.maxBytes {
				// Returning without draining the body makes the deferred
				// Close abort the connection instead of reading the rest.
				return "", 0, fmt.Errorf("%w of %d bytes", ErrTooLarge, f.maxBytes)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", 0, fmt.Errorf("%w: %v", ErrFetchFailed, readErr)
		}
	}

	size := int64(buf.Len())
	return decodeLossy(buf.Bytes()), size, nil
}

// decodeLossy decodes b as UTF-8, substituting U+FFFD for any invalid
// byte sequence. It never fails: a calendar with a few mangled bytes is
// still worth relaying.
func decodeLossy(b []byte) string {
	out, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), b)
	if err != nil {
		// The UTF-8 decoder replaces rather than errors; this branch is
		// unreachable in practice but kept so a transform change cannot
		// silently drop a document.
		return string(bytes.ToValidUTF8(b, []byte("�")))
	}
	return string(out)
}
