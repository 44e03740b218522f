package relay

import (
	"strings"
)

// EventMarker is the token that anchors the timezone injection. The
// timezone block is spliced in immediately before its first occurrence.
const EventMarker = "BEGIN:VEVENT"

// Inject splices block into document immediately before the first
// BEGIN:VEVENT marker, separated from the following text by a single
// newline. Every byte of document outside the insertion point is
// preserved unchanged.
//
// If the document has no event marker it is structurally not a usable
// calendar file, even if it passed the earlier sniff check, and
// ErrMissingEventMarker is returned.
//
// Inject is pure and deterministic but intentionally not idempotent:
// running it on its own output inserts a second copy of the block. Each
// document is processed exactly once per request, so no guard against
// double injection exists.
func Inject(document, block string) (string, error) {
	i := strings.Index(document, EventMarker)
	if i == -1 {
		return "", ErrMissingEventMarker
	}

	var b strings.Builder
	b.Grow(len(document) + len(block) + 1)
	b.WriteString(document[:i])
	b.WriteString(block)
	b.WriteByte('\n')
	b.WriteString(document[i:])
	return b.String(), nil
}
