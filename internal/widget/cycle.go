package widget

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/sheet-countdown/internal/countdown"
	"github.com/pfrederiksen/sheet-countdown/internal/logger"
	"github.com/pfrederiksen/sheet-countdown/internal/sheet"
)

// Fetcher returns the raw CSV text of the spreadsheet.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// Render is the outcome of one refresh cycle.
type Render struct {
	Row   int    `json:"row"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Days  int    `json:"days"`
	Label string `json:"label"`
	Err   error  `json:"-"`
}

// ErrorTitle is the title shown when row cannot be read.
func ErrorTitle(row int) string {
	return fmt.Sprintf("ERROR: Fila %d Desconocida", row)
}

// RunCycle performs one fetch, parse and compute pass for row. It always
// returns a displayable Render; on failure Err is set, the title names the
// row and the countdown targets countdown.SentinelDate.
func RunCycle(ctx context.Context, f Fetcher, row int, today time.Time) Render {
	record, err := loadRecord(ctx, f, row, today)
	if err == nil {
		var result countdown.Result
		result, err = countdown.Compute(record.Date, today)
		if err == nil {
			return Render{
				Row:   row,
				Title: record.Title,
				Date:  record.Date,
				Days:  result.Days,
				Label: result.Label,
			}
		}
	}

	if ctx.Err() != nil {
		logger.Debug("Refresh cycle canceled", logger.Fields{"row": row, "err": err.Error()})
	} else {
		logger.Error("Refresh cycle failed", logger.Fields{"row": row}, err)
	}

	sentinel, _ := countdown.Compute(countdown.SentinelDate, today)
	return Render{
		Row:   row,
		Title: ErrorTitle(row),
		Date:  countdown.SentinelDate,
		Days:  sentinel.Days,
		Label: sentinel.Label,
		Err:   err,
	}
}

func loadRecord(ctx context.Context, f Fetcher, row int, today time.Time) (sheet.RowRecord, error) {
	start := time.Now()
	raw, err := f.Fetch(ctx)
	logger.RecordTiming("fetch", time.Since(start))
	if err != nil {
		return sheet.RowRecord{}, fmt.Errorf("loading row %d: %w", row, err)
	}

	record, err := sheet.ParseRow(raw, row, today)
	if err != nil {
		return sheet.RowRecord{}, fmt.Errorf("loading row %d: %w", row, err)
	}
	return record, nil
}
