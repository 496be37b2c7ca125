// Package cli implements the command-line interface for sheet-countdown.
//
// The cli package provides the Cobra-based commands: serve runs the HTTP widget,
// watch runs the terminal widget, show prints a single countdown as text, JSON or
// iCalendar, and row reads or changes the persisted row selector. Configuration is
// read from a YAML file, then environment variables, then command-line flags.
package cli
