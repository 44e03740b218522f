package relay

import "errors"

// Relay stage errors.
//
// Every failure a request can hit maps to exactly one of these sentinel
// errors. Stages wrap the underlying cause with fmt.Errorf("%w: ...", ...)
// so callers classify with errors.Is while the full cause chain stays
// available in the message.
//
// Design decision: We use package-level sentinel errors rather than a
// custom error type with a kind field. The set is small and fixed, the
// stages never need to attach structured data beyond the cause text, and
// sentinels keep call sites and tests on plain errors.Is.
var (
	// ErrMalformedURL is returned when the caller-supplied string does not
	// parse into an absolute URL with a scheme and a host.
	ErrMalformedURL = errors.New("invalid URL")

	// ErrInsecureScheme is returned when the URL parses but uses a scheme
	// other than https. The relay only fetches over TLS.
	ErrInsecureScheme = errors.New("only HTTPS URLs are allowed")

	// ErrFetchFailed is returned for any transport-level failure during
	// sniffing or fetching: DNS errors, timeouts, connection resets, and
	// non-success HTTP status codes. The underlying cause is wrapped.
	ErrFetchFailed = errors.New("failed to fetch the remote file")

	// ErrNotCalendarFile is returned when the sniffed leading bytes of the
	// resource do not contain the BEGIN:VCALENDAR marker.
	ErrNotCalendarFile = errors.New("the file does not appear to be a valid ICS file (BEGIN:VCALENDAR not found)")

	// ErrTooLarge is returned when the streamed document exceeds the
	// configured size ceiling. The partial buffer is discarded; the error
	// never carries document content.
	ErrTooLarge = errors.New("the ICS file exceeds the maximum allowed size")

	// ErrMissingEventMarker is returned when the fetched document has no
	// BEGIN:VEVENT marker to anchor the timezone injection. A document can
	// pass the sniff check (which only looks for BEGIN:VCALENDAR) and still
	// fail here.
	ErrMissingEventMarker = errors.New("invalid ICS file format (BEGIN:VEVENT not found)")

	// ErrTimezoneDataUnavailable is returned when the operator-provided
	// timezone definitions could not be loaded. This is a deployment fault,
	// not a caller input error.
	ErrTimezoneDataUnavailable = errors.New("timezone definitions are not available")
)
