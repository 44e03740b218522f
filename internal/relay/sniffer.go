package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CalendarMarker is the token that must appear near the start of a
// resource for it to be considered an ICS calendar file.
const CalendarMarker = "BEGIN:VCALENDAR"

// DefaultSniffRangeBytes is how many leading bytes the sniffer inspects.
const DefaultSniffRangeBytes = 1024

// DefaultSniffTimeout bounds the sniff probe. The sniff exists to fail
// fast, so its timeout is deliberately shorter than the full fetch.
const DefaultSniffTimeout = 15 * time.Second

// Sniffer performs a cheap partial fetch of a remote resource and checks
// that it starts like an ICS calendar file. It exists purely to reject
// obviously-wrong URLs before the relay commits to a full download.
//
// Design decision: The sniffer asks the server for a byte range rather
// than issuing a HEAD request because Content-Type headers on calendar
// feeds are unreliable; the BEGIN:VCALENDAR marker in the body is the
// only trustworthy signal. Servers that ignore the Range header are
// handled by capping how much of the body we read.
type Sniffer struct {
	// client performs the probe request. Built from timeout when no
	// custom client is supplied.
	client *http.Client

	// timeout bounds the probe when the default client is used.
	timeout time.Duration

	// rangeBytes is the number of leading bytes requested and the upper
	// bound on how many bytes are read even when the server ignores the
	// Range header.
	rangeBytes int64

	// userAgent is the User-Agent header sent with the probe.
	userAgent string
}

// SnifferOption configures a Sniffer.
type SnifferOption func(*Sniffer)

// WithSniffClient replaces the HTTP client used for probing. Mainly
// useful in tests, where the client must trust a local TLS server.
func WithSniffClient(client *http.Client) SnifferOption {
	return func(s *Sniffer) {
		s.client = client
	}
}

// WithSniffTimeout sets the probe timeout. Ignored when a custom client
// is also supplied, regardless of option order: the custom client
// carries its own timeout.
func WithSniffTimeout(d time.Duration) SnifferOption {
	return func(s *Sniffer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithSniffRangeBytes sets how many leading bytes are inspected.
func WithSniffRangeBytes(n int64) SnifferOption {
	return func(s *Sniffer) {
		if n > 0 {
			s.rangeBytes = n
		}
	}
}

// WithSniffUserAgent sets the User-Agent header for the probe.
func WithSniffUserAgent(ua string) SnifferOption {
	return func(s *Sniffer) {
		s.userAgent = ua
	}
}

// NewSniffer creates a Sniffer with the default timeout and range size.
func NewSniffer(opts ...SnifferOption) *Sniffer {
	s := &Sniffer{
		timeout:    DefaultSniffTimeout,
		rangeBytes: DefaultSniffRangeBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	// The client is built after the options so the timeout applies
	// whatever order the options came in, and a supplied client is
	// never mutated.
	if s.client == nil {
		s.client = &http.Client{Timeout: s.timeout}
	}
	return s
}

// Sniff probes the resource at rawURL and reports whether its leading
// bytes contain the BEGIN:VCALENDAR marker.
//
// Any transport failure or non-success status is wrapped in
// ErrFetchFailed. A successful response whose inspected bytes lack the
// marker returns ErrNotCalendarFile. No body beyond the configured range
// is ever read, even when the server returns the full file.
func (s *Sniffer) Sniff(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", s.rangeBytes-1))
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %s", ErrFetchFailed, resp.Status)
	}

	// Servers may answer 200 with the full body instead of 206 with the
	// requested range; the LimitReader caps what we inspect either way.
	head, err := io.ReadAll(io.LimitReader(resp.Body, s.rangeBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if !bytes.Contains(head, []byte(CalendarMarker)) {
		return ErrNotCalendarFile
	}
	return nil
}
