package sheet

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	// EmptyTitle replaces a blank title cell.
	EmptyTitle = "Título Vacío"

	// DateLayout is the ISO calendar date format expected in column B.
	DateLayout = "2006-01-02"
)

// ErrRowNotFound is returned when the requested row has no line in the CSV.
var ErrRowNotFound = errors.New("row not found")

// RowRecord holds the two cells read from a spreadsheet row.
type RowRecord struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

// ParseRow extracts the title (column A) and date (column B) of the 1-based
// row from raw CSV text. Row 1 is the header. Blank cells are replaced by
// EmptyTitle and by today's date respectively.
func ParseRow(raw string, row int, today time.Time) (RowRecord, error) {
	if row < 1 {
		return RowRecord{}, fmt.Errorf("row %d: %w", row, ErrRowNotFound)
	}

	lines := strings.Split(strings.TrimRightFunc(raw, unicode.IsSpace), "\n")
	if row > len(lines) {
		return RowRecord{}, fmt.Errorf("row %d of %d: %w", row, len(lines), ErrRowNotFound)
	}
	if lines[row-1] == "" {
		return RowRecord{}, fmt.Errorf("row %d is empty: %w", row, ErrRowNotFound)
	}

	fields := strings.Split(lines[row-1], ",")

	title := cleanField(fields[0])
	date := ""
	if len(fields) > 1 {
		date = cleanField(fields[1])
	}

	if title == "" {
		title = EmptyTitle
	}
	if date == "" {
		date = today.Format(DateLayout)
	}

	return RowRecord{Title: title, Date: date}, nil
}

// cleanField trims a cell and drops every double quote in it.
func cleanField(field string) string {
	return strings.ReplaceAll(strings.TrimSpace(field), `"`, "")
}
