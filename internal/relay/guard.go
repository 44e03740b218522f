package relay

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL checks that raw is an absolute HTTPS URL.
//
// Rules are applied in order:
//  1. raw must parse into a URL with a non-empty scheme and host,
//     otherwise ErrMalformedURL.
//  2. The scheme, compared case-insensitively, must be "https",
//     otherwise ErrInsecureScheme.
//
// This is a pure check: no DNS lookup or network access occurs. It must
// run before any I/O so that garbage input never costs a network round
// trip.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: missing scheme or host", ErrMalformedURL)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return fmt.Errorf("%w: got %q", ErrInsecureScheme, u.Scheme)
	}
	return nil
}
