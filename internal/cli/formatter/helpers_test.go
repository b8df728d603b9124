package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanDate(t *testing.T) {
	past := time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Sep 30, 2022", HumanDate(past))

	assert.Equal(t, "Today", HumanDate(time.Now()))
	assert.Equal(t, "Yesterday", HumanDate(time.Now().AddDate(0, 0, -1)))
}

func TestHumanTimestamp(t *testing.T) {
	now := time.Now()

	assert.Equal(t, "Just now", HumanTimestamp(now))
	assert.Equal(t, "5m ago", HumanTimestamp(now.Add(-5*time.Minute)))
	assert.Equal(t, "3h ago", HumanTimestamp(now.Add(-3*time.Hour)))
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		name  string
		hours float64
		want  string
	}{
		{"zero", 0, "0m"},
		{"minutes only", 0.25, "15m"},
		{"hours only", 3, "3h"},
		{"hours and minutes", 2.5, "2h 30m"},
		{"days and hours", 27, "1d 3h"},
		{"days hours minutes", 51.75, "2d 3h 45m"},
		{"negative clamps", -4, "0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatHours(tt.hours))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))
	assert.Equal(t, "long…", Truncate("longer text", 5))
	assert.Equal(t, "…", Truncate("ab", 1))
	assert.Equal(t, "", Truncate("anything", 0))
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable(
		[]string{"KEY", "SUMMARY"},
		[][]string{
			{"PROJ-1", "Short"},
			{"PROJ-213", "A longer summary"},
		},
	)

	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "PROJ-213")
	assert.Contains(t, out, "─")

	// Short row contents still present.
	assert.Contains(t, out, "PROJ-1")
	assert.Contains(t, out, "Short")
}

func TestRenderTable_EmptyHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, nil))
}

func TestRenderAlignedTable_RightAlignsNumericColumns(t *testing.T) {
	out := RenderAlignedTable(
		[]string{"STATE", "DAYS"},
		[][]string{
			{"To Do", "1.00"},
			{"In Progress", "12.50"},
		},
		[]int{1},
	)

	// The numeric column is padded on the left so values line up on
	// their decimal point: "To Do" pads to the widest state (11) plus
	// the column gap, then one space right-aligns 1.00 under 12.50.
	assert.Contains(t, out, "To Do         1.00")
	assert.Contains(t, out, "In Progress  12.50")
}
