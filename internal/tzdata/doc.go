// Package tzdata loads the operator-provided block of VTIMEZONE
// definitions that the relay splices into fetched calendars.
//
// Outlook and Office365 export calendars that reference Windows-style
// timezone identifiers (for example "W. Europe Standard Time") without
// shipping the matching VTIMEZONE components, so Google Calendar and
// other consumers misplace the event times. The block loaded here
// supplies those missing definitions.
//
// The block is loaded once at startup from a trusted local text file
// and treated as immutable for the life of the process; its absence is
// a deployment error, never a per-request error.
package tzdata
