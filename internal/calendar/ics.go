// Package calendar exports the tracked countdown target as an iCalendar all-day event.
package calendar

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/sheet-countdown/internal/countdown"
	"github.com/pfrederiksen/sheet-countdown/internal/sheet"
)

// GenerateICS renders record as a single all-day VEVENT. sheetURL is
// attached as the event URL when set.
func GenerateICS(record sheet.RowRecord, sheetURL string, now time.Time) (string, error) {
	start, err := countdown.ParseDate(record.Date, time.UTC)
	if err != nil {
		return "", err
	}
	end := start.AddDate(0, 0, 1)

	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//Sheet Countdown//sheet-countdown//ES\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	ics.WriteString("BEGIN:VEVENT\r\n")

	ics.WriteString(fmt.Sprintf("UID:%s@sheet-countdown\r\n", eventUID(record)))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", now.UTC().Format("20060102T150405Z")))

	// All-day events use DATE values; DTEND is exclusive.
	ics.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", start.Format("20060102")))
	ics.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", end.Format("20060102")))

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(record.Title)))

	if sheetURL != "" {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", sheetURL))
	}

	ics.WriteString("TRANSP:TRANSPARENT\r\n")
	ics.WriteString("END:VEVENT\r\n")
	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String(), nil
}

// eventUID is stable for the same title and date so calendar clients update
// the event instead of duplicating it.
func eventUID(record sheet.RowRecord) string {
	sum := sha1.Sum([]byte(record.Title + "|" + record.Date))
	return hex.EncodeToString(sum[:8])
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
