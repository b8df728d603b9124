package analysis

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed
}

func TestCalculateDurations_FullBusinessDayThenSameDayInterval(t *testing.T) {
	// Mon Jan 1 2024 through Tue Jan 2.
	transitions := []Transition{
		{Timestamp: ts(t, "2024-01-01T09:00:00Z"), ToState: "To Do"},
		{Timestamp: ts(t, "2024-01-02T09:00:00Z"), FromState: "To Do", ToState: "In Progress"},
		{Timestamp: ts(t, "2024-01-02T17:00:00Z"), FromState: "In Progress", ToState: "Done"},
	}
	now := ts(t, "2024-01-03T17:00:00Z")

	durations := CalculateDurations(transitions, now, DefaultBusinessWindow())
	require.Len(t, durations, 3)

	todo := durations[0]
	assert.Equal(t, "To Do", todo.State)
	assert.InDelta(t, 1.0, todo.CalendarDays, 1e-9)
	assert.InDelta(t, 8.0, todo.BusinessHours, 1e-9)
	require.NotNil(t, todo.End)
	assert.Equal(t, transitions[1].Timestamp, *todo.End)

	inProgress := durations[1]
	assert.Equal(t, "In Progress", inProgress.State)
	assert.InDelta(t, 8.0/24.0, inProgress.CalendarDays, 1e-9)
	assert.InDelta(t, 8.0, inProgress.BusinessHours, 1e-9)

	done := durations[2]
	assert.Equal(t, "Done", done.State)
	assert.Nil(t, done.End)
	assert.InDelta(t, 1.0, done.CalendarDays, 1e-9)
}

func TestCalculateDurations_EmptyInput(t *testing.T) {
	assert.Empty(t, CalculateDurations(nil, time.Now(), DefaultBusinessWindow()))
}

func TestCalculateDurations_SingleTransitionProducesOpenInterval(t *testing.T) {
	// Mon Jun 3 2024, four hours inside the window.
	transitions := []Transition{
		{Timestamp: ts(t, "2024-06-03T10:00:00Z"), ToState: "In Review"},
	}
	now := ts(t, "2024-06-03T14:00:00Z")

	durations := CalculateDurations(transitions, now, DefaultBusinessWindow())
	require.Len(t, durations, 1)

	open := durations[0]
	assert.Equal(t, "In Review", open.State)
	assert.Nil(t, open.End)
	assert.InDelta(t, 4.0/24.0, open.CalendarDays, 1e-4)
	assert.InDelta(t, 4.0, open.BusinessHours, 1e-9)
}

func TestCalculateDurations_ClampsBackwardsTimestamps(t *testing.T) {
	transitions := []Transition{
		{Timestamp: ts(t, "2024-03-10T12:00:00Z"), ToState: "To Do"},
		{Timestamp: ts(t, "2024-03-09T12:00:00Z"), FromState: "To Do", ToState: "Done"},
	}
	now := ts(t, "2024-03-08T12:00:00Z")

	durations := CalculateDurations(transitions, now, DefaultBusinessWindow())
	require.Len(t, durations, 2)
	for _, d := range durations {
		assert.GreaterOrEqual(t, d.CalendarDays, 0.0)
		assert.GreaterOrEqual(t, d.BusinessHours, 0.0)
	}
}

func TestBusinessWindow_WeekendContributesNothing(t *testing.T) {
	// Fri Jan 5 2024 16:00 to Mon Jan 8 10:00.
	window := DefaultBusinessWindow()
	hours := window.Hours(ts(t, "2024-01-05T16:00:00Z"), ts(t, "2024-01-08T10:00:00Z"))
	assert.InDelta(t, 2.0, hours, 1e-9)

	days := ts(t, "2024-01-08T10:00:00Z").Sub(ts(t, "2024-01-05T16:00:00Z")).Hours() / 24
	assert.InDelta(t, 2.75, days, 1e-9)
}

func TestBusinessWindow_EntirelyOutsideWindow(t *testing.T) {
	window := DefaultBusinessWindow()

	// Saturday.
	assert.Zero(t, window.Hours(ts(t, "2024-06-01T10:00:00Z"), ts(t, "2024-06-01T14:00:00Z")))
	// Weekday evening.
	assert.Zero(t, window.Hours(ts(t, "2024-01-02T18:00:00Z"), ts(t, "2024-01-02T22:00:00Z")))
}

func TestBusinessWindow_CustomWindowIncludesSaturday(t *testing.T) {
	window := BusinessWindow{
		StartHour: 8,
		EndHour:   12,
		Weekdays: map[time.Weekday]bool{
			time.Saturday: true,
		},
	}
	// Sat Jun 1 2024.
	hours := window.Hours(ts(t, "2024-06-01T07:00:00Z"), ts(t, "2024-06-01T10:00:00Z"))
	assert.InDelta(t, 2.0, hours, 1e-9)
}

func TestBusinessWindow_MultiWeekSpan(t *testing.T) {
	// Mon Jan 1 2024 00:00 to Mon Jan 15 00:00: ten full business days.
	window := DefaultBusinessWindow()
	hours := window.Hours(ts(t, "2024-01-01T00:00:00Z"), ts(t, "2024-01-15T00:00:00Z"))
	assert.InDelta(t, 80.0, hours, 1e-9)
}

func TestBusinessWindow_Validate(t *testing.T) {
	require.NoError(t, DefaultBusinessWindow().Validate())

	inverted := BusinessWindow{StartHour: 17, EndHour: 9, Weekdays: DefaultBusinessWindow().Weekdays}
	assert.Error(t, inverted.Validate())

	empty := BusinessWindow{StartHour: 9, EndHour: 17}
	assert.Error(t, empty.Validate())
}

// TestCalculateDurations_Invariants_NonNegativeAndBounded property-tests
// that durations stay non-negative and business hours never exceed the
// elapsed wall-clock hours, even for shuffled and reversed timestamps.
func TestCalculateDurations_Invariants_NonNegativeAndBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	window := DefaultBusinessWindow()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	states := []string{"To Do", "In Progress", "In Review", "Blocked", "Done"}

	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(8) + 1
		transitions := make([]Transition, n)
		for i := range transitions {
			// Offsets deliberately not monotonic: timestamps may run backwards.
			offset := time.Duration(rng.Intn(21*24)-7*24) * time.Hour
			transitions[i] = Transition{
				Timestamp: base.Add(offset),
				ToState:   states[rng.Intn(len(states))],
			}
		}
		now := base.Add(time.Duration(rng.Intn(28*24)-7*24) * time.Hour)

		durations := CalculateDurations(transitions, now, window)
		require.Len(t, durations, n, "trial %d", trial)

		for j, d := range durations {
			assert.GreaterOrEqual(t, d.CalendarDays, 0.0,
				"trial %d interval %d: calendar days must be non-negative", trial, j)
			assert.GreaterOrEqual(t, d.BusinessHours, 0.0,
				"trial %d interval %d: business hours must be non-negative", trial, j)
			assert.LessOrEqual(t, d.BusinessHours, d.CalendarDays*24+1e-9,
				"trial %d interval %d: business hours (%f) must not exceed elapsed hours (%f)",
				trial, j, d.BusinessHours, d.CalendarDays*24)
		}
	}
}

func TestCalculateDurations_Idempotent(t *testing.T) {
	transitions := []Transition{
		{Timestamp: ts(t, "2024-01-01T09:00:00Z"), ToState: "To Do"},
		{Timestamp: ts(t, "2024-01-04T11:30:00Z"), FromState: "To Do", ToState: "In Progress"},
		{Timestamp: ts(t, "2024-01-09T16:00:00Z"), FromState: "In Progress", ToState: "Done"},
	}
	now := ts(t, "2024-01-15T12:00:00Z")
	window := DefaultBusinessWindow()

	first := CalculateDurations(transitions, now, window)
	second := CalculateDurations(transitions, now, window)
	assert.Equal(t, first, second)
}

func TestCalculateDurations_ClosedAndOpenIntervalCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(10) + 1
		transitions := make([]Transition, n)
		at := base
		for i := range transitions {
			at = at.Add(time.Duration(rng.Intn(72)+1) * time.Hour)
			transitions[i] = Transition{Timestamp: at, ToState: "S"}
		}
		now := at.Add(24 * time.Hour)

		durations := CalculateDurations(transitions, now, DefaultBusinessWindow())
		require.Len(t, durations, n)

		closed := 0
		open := 0
		for _, d := range durations {
			if d.End == nil {
				open++
			} else {
				closed++
			}
		}
		assert.Equal(t, n-1, closed, "trial %d", trial)
		assert.Equal(t, 1, open, "trial %d", trial)
		assert.Nil(t, durations[n-1].End)
	}
}
