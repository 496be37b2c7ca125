package sheet

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseRow(t *testing.T) {
	today := time.Date(2025, time.May, 20, 15, 30, 0, 0, time.Local)

	tests := []struct {
		name    string
		raw     string
		row     int
		want    RowRecord
		wantErr error
	}{
		{
			name: "first data row",
			raw:  "Title,Date\nLaunch,2025-06-01",
			row:  2,
			want: RowRecord{Title: "Launch", Date: "2025-06-01"},
		},
		{
			name: "header row is addressable",
			raw:  "Title,Date\nLaunch,2025-06-01",
			row:  1,
			want: RowRecord{Title: "Title", Date: "Date"},
		},
		{
			name: "quotes and whitespace stripped",
			raw:  "Title,Date\n  \"Vacaciones\" , \"2025-08-01\"  \n",
			row:  2,
			want: RowRecord{Title: "Vacaciones", Date: "2025-08-01"},
		},
		{
			name: "CRLF line endings",
			raw:  "Title,Date\r\nBoda,2026-02-14\r\nViaje,2026-03-01\r\n",
			row:  2,
			want: RowRecord{Title: "Boda", Date: "2026-02-14"},
		},
		{
			name: "extra columns ignored",
			raw:  "Title,Date,Notes\nExamen,2025-06-10,aula 3",
			row:  2,
			want: RowRecord{Title: "Examen", Date: "2025-06-10"},
		},
		{
			name: "empty title gets placeholder",
			raw:  "Title,Date\n,2025-06-01",
			row:  2,
			want: RowRecord{Title: EmptyTitle, Date: "2025-06-01"},
		},
		{
			name: "empty date falls back to today",
			raw:  "Title,Date\nLaunch,",
			row:  2,
			want: RowRecord{Title: "Launch", Date: "2025-05-20"},
		},
		{
			name: "missing date column falls back to today",
			raw:  "Title,Date\nLaunch",
			row:  2,
			want: RowRecord{Title: "Launch", Date: "2025-05-20"},
		},
		{
			name: "quoted comma splits the field",
			raw:  "Title,Date\n\"Madrid, España\",2025-09-01",
			row:  2,
			want: RowRecord{Title: "Madrid", Date: "España"},
		},
		{
			name:    "row past the end",
			raw:     "Title,Date\nLaunch,2025-06-01",
			row:     3,
			wantErr: ErrRowNotFound,
		},
		{
			name:    "trailing blank lines do not count as rows",
			raw:     "Title,Date\nLaunch,2025-06-01\n\n\n",
			row:     3,
			wantErr: ErrRowNotFound,
		},
		{
			name:    "zero row",
			raw:     "Title,Date\nLaunch,2025-06-01",
			row:     0,
			wantErr: ErrRowNotFound,
		},
		{
			name:    "negative row",
			raw:     "Title,Date\nLaunch,2025-06-01",
			row:     -1,
			wantErr: ErrRowNotFound,
		},
		{
			name:    "empty text",
			raw:     "",
			row:     1,
			wantErr: ErrRowNotFound,
		},
		{
			name:    "blank line in the middle",
			raw:     "Title,Date\n\nLaunch,2025-06-01",
			row:     2,
			wantErr: ErrRowNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRow(tt.raw, tt.row, today)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseRow() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRow() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseRow() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseRow_FieldsNeverEmptyOrQuoted(t *testing.T) {
	today := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.Local)
	raw := strings.Join([]string{
		`Title,Date`,
		`"",""`,
		`" "," "`,
		`"Año ""nuevo""",2025-01-01`,
		`,`,
		`Solo`,
	}, "\n")

	for row := 2; row <= 6; row++ {
		got, err := ParseRow(raw, row, today)
		if err != nil {
			t.Fatalf("row %d: unexpected error %v", row, err)
		}
		if got.Title == "" || got.Date == "" {
			t.Errorf("row %d: empty field in %+v", row, got)
		}
		if strings.Contains(got.Title, `"`) || strings.Contains(got.Date, `"`) {
			t.Errorf("row %d: quote left in %+v", row, got)
		}
	}
}
