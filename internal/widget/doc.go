// Package widget drives the countdown widget shared by the HTTP and terminal surfaces.
//
// A Controller owns the render model (title, day label, panel visibility, toggle glyph)
// and two independent concerns:
//
//   - Refresh cycles: fetch the CSV, pick the configured row, compute the countdown and
//     publish the result. Cycles run on start and on every refresh interval. Each cycle
//     is numbered; a cycle that finishes after a newer one has been applied is dropped.
//   - View transitions: a two-state machine (display, configuration) driven by named
//     triggers. The transitions table is the only place that says which trigger moves
//     the widget where; entering a state runs a staggered reveal through a Scheduler.
//
// Failures inside a cycle never escape: the title becomes an error naming the row and
// the date falls back to a far-future sentinel.
package widget
