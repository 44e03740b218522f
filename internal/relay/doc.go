// Package relay implements the fetch-validate-transform stages of the
// ICS timezone relay.
//
// A request moves through four stages, strictly in this order:
//
//  1. URL admission: the caller-supplied string must be an absolute
//     HTTPS URL (ValidateURL). No network access happens here.
//  2. Content sniffing: a range-limited probe of roughly the first
//     1 KiB of the resource, checking for the BEGIN:VCALENDAR marker
//     so obviously-wrong URLs fail before a full download (Sniffer).
//  3. Bounded fetching: a streaming download in fixed-size chunks with
//     a hard size ceiling, aborted the instant the ceiling is exceeded
//     (Fetcher). The body is decoded as UTF-8 with invalid sequences
//     replaced, never rejected.
//  4. Timezone injection: a trusted block of VTIMEZONE definitions is
//     spliced in immediately before the first BEGIN:VEVENT (Inject).
//
// All failure modes are members of a closed set of sentinel errors
// (see errors.go) so callers can classify outcomes with errors.Is
// instead of matching message text. Underlying transport causes are
// wrapped, not swallowed.
//
// Design decision: sniffing and fetching issue two separate requests
// to the same URL. A resource that changes between the two requests can
// pass the sniff and then fail injection, or vice versa; that race is
// accepted, because the sniff exists only to fail fast and cheaply, and
// the injector re-validates structure on the full document anyway.
package relay
