package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// WriteCSV renders analysis results as CSV with one row per state
// interval. Issues whose analysis failed contribute no rows.
func WriteCSV(w io.Writer, results []IssueResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"issue_key", "state", "duration_calendar_days", "duration_business_hours"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, result := range results {
		if result.Err != nil {
			continue
		}
		for _, d := range result.Durations {
			row := []string{
				result.IssueKey,
				d.State,
				fmt.Sprintf("%.2f", d.CalendarDays),
				fmt.Sprintf("%.2f", d.BusinessHours),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDetailedCSV renders results with interval boundaries included.
// Open intervals report "Current" as their end time.
func WriteDetailedCSV(w io.Writer, results []IssueResult) error {
	cw := csv.NewWriter(w)
	header := []string{
		"issue_key", "state", "start_time", "end_time",
		"duration_calendar_days", "duration_business_hours",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, result := range results {
		if result.Err != nil {
			continue
		}
		for _, d := range result.Durations {
			end := "Current"
			if d.End != nil {
				end = d.End.UTC().Format(time.RFC3339)
			}
			row := []string{
				result.IssueKey,
				d.State,
				d.Start.UTC().Format(time.RFC3339),
				end,
				fmt.Sprintf("%.2f", d.CalendarDays),
				fmt.Sprintf("%.2f", d.BusinessHours),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
