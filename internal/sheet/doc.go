// Package sheet fetches a published spreadsheet CSV export and extracts a single row from it.
//
// The fetcher issues one plain HTTP GET per call and never retries; the next scheduled
// refresh is the only retry. The row parser is deliberately naive: lines are split on
// newlines, fields on commas, and literal double quotes are stripped without any CSV
// escaping rules. A quoted field containing a comma will therefore be split.
package sheet
