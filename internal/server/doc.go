// Package server implements the HTTP surface of the relay.
//
// A single GET endpoint accepts a calendar URL via the ics_url query
// parameter, runs it through the processing pipeline, and returns the
// fixed document as a calendar attachment. Failures come back as
// HTTP 400 with either a styled HTML page or a plain text line,
// depending on the client's Accept header.
//
// Design decision: every failure maps to a client error, never a 500.
// The relay has no server-side state that can break a request; a
// failure always means the supplied URL or the remote calendar is the
// problem, and the response should tell the calendar user that.
package server
