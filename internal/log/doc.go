// Package log provides secure logging on top of the standard slog
// package, with automatic sanitization of sensitive information.
//
// Calendar subscription URLs routinely embed access tokens in their
// query string (Outlook's published-calendar links, Google's private
// iCal addresses), so a relay that logs raw URLs leaks its callers'
// calendars. The SecureHandler masks well-known sensitive attribute
// keys and strips the query string and userinfo from any attribute that
// carries a URL before records reach the underlying handler.
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Info("relay request",
//	    "url", "https://example.com/cal.ics?token=abc", // query masked
//	)
package log
