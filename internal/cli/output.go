package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/sheet-countdown/internal/calendar"
	"github.com/pfrederiksen/sheet-countdown/internal/sheet"
	"github.com/pfrederiksen/sheet-countdown/internal/widget"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt time.Time `json:"checked_at"`
	Row       int       `json:"row"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Days      int       `json:"days"`
	Label     string    `json:"label"`
	Error     string    `json:"error,omitempty"`
	SheetURL  string    `json:"sheet_url,omitempty"`
}

// NewOutputResult converts one refresh cycle into printable form.
func NewOutputResult(r widget.Render, sheetURL string, checkedAt time.Time) *OutputResult {
	result := &OutputResult{
		CheckedAt: checkedAt.UTC(),
		Row:       r.Row,
		Title:     r.Title,
		Date:      r.Date,
		Days:      r.Days,
		Label:     r.Label,
		SheetURL:  sheetURL,
	}
	if r.Err != nil {
		result.Error = r.Err.Error()
	}
	return result
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	case FormatICS:
		return writeICS(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs the widget the way it reads on screen
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	fmt.Fprintln(w, result.Title)
	fmt.Fprintln(w, result.Label)

	if verbose {
		fmt.Fprintf(w, "\n  Row:  %d\n", result.Row)
		fmt.Fprintf(w, "  Date: %s\n", result.Date)
		if result.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", result.Error)
		}
	}
	return nil
}

// writeICS exports the target date as an all-day calendar event. A failed
// cycle has no real date to export.
func writeICS(w io.Writer, result *OutputResult) error {
	if result.Error != "" {
		return fmt.Errorf("no countdown to export: %s", result.Error)
	}

	ics, err := calendar.GenerateICS(sheet.RowRecord{Title: result.Title, Date: result.Date}, result.SheetURL, result.CheckedAt)
	if err != nil {
		return fmt.Errorf("generating calendar: %w", err)
	}

	_, err = io.WriteString(w, ics)
	return err
}
