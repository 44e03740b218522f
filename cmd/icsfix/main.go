// Package main provides the entry point for the icsfix CLI.
//
// icsfix fixes timezone issues in .ics calendar files (such as those
// exported by Outlook or Office365) by injecting missing VTIMEZONE
// definitions, so Google Calendar and other apps display event times
// correctly.
//
// Usage:
//
//	icsfix serve
//	icsfix fix <ics-url>
//
// See --help for all available options.
package main

// main is the entry point for icsfix.
func main() {
	Execute()
}
