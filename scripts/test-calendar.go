package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/sheet-countdown/internal/calendar"
	"github.com/pfrederiksen/sheet-countdown/internal/config"
	"github.com/pfrederiksen/sheet-countdown/internal/sheet"
)

func main() {
	// A sample row as the spreadsheet would publish it
	record := sheet.RowRecord{
		Title: "Boda de Ana y Luis",
		Date:  time.Now().AddDate(0, 2, 0).Format(sheet.DateLayout),
	}

	icsContent, err := calendar.GenerateICS(record, config.DefaultEditURL, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating calendar: %v\n", err)
		os.Exit(1)
	}

	// Write to file (owner read/write only)
	filename := "test-countdown.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Generated calendar file: %s\n\n", filename)
	fmt.Println("Import it into your calendar app to check the all-day event.")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
