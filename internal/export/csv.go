package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
)

// WriteCSV renders issues as CSV. Each issue is flattened to
// dot-notation columns; the header is the sorted union of every
// issue's columns so rows stay aligned even when issues carry
// different custom fields. Empty input produces no output at all.
func WriteCSV(w io.Writer, issues []map[string]any) error {
	if len(issues) == 0 {
		return nil
	}

	flattened := make([]map[string]string, len(issues))
	columns := make(map[string]bool)
	for i, issue := range issues {
		flattened[i] = Flatten(issue)
		for key := range flattened[i] {
			columns[key] = true
		}
	}

	header := make([]string, 0, len(columns))
	for key := range columns {
		header = append(header, key)
	}
	sort.Strings(header)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(header))
	for _, issue := range flattened {
		for i, key := range header {
			row[i] = protectCell(issue[key])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
