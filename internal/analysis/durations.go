package analysis

import (
	"fmt"
	"time"
)

// BusinessWindow defines which hours count as work time. Hours are
// whole clock hours in the timestamps' own zone; only the listed
// weekdays contribute.
type BusinessWindow struct {
	StartHour int
	EndHour   int
	Weekdays  map[time.Weekday]bool
}

// DefaultBusinessWindow is the conventional 09:00-17:00 Monday-Friday
// work week.
func DefaultBusinessWindow() BusinessWindow {
	return BusinessWindow{
		StartHour: 9,
		EndHour:   17,
		Weekdays: map[time.Weekday]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
		},
	}
}

// Validate rejects inverted or out-of-range windows.
func (w BusinessWindow) Validate() error {
	if w.StartHour < 0 || w.EndHour > 24 || w.StartHour >= w.EndHour {
		return fmt.Errorf("business window %d-%d is not a valid hour range", w.StartHour, w.EndHour)
	}
	if len(w.Weekdays) == 0 {
		return fmt.Errorf("business window has no working weekdays")
	}
	return nil
}

// Hours returns the work time in hours overlapping [start, end).
// Intervals that end before they start contribute zero.
func (w BusinessWindow) Hours(start, end time.Time) float64 {
	if !start.Before(end) {
		return 0
	}
	loc := start.Location()
	end = end.In(loc)

	total := 0.0
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	for !day.After(end) {
		if w.Weekdays[day.Weekday()] {
			slotStart := day.Add(time.Duration(w.StartHour) * time.Hour)
			slotEnd := day.Add(time.Duration(w.EndHour) * time.Hour)
			if slotStart.Before(start) {
				slotStart = start
			}
			if slotEnd.After(end) {
				slotEnd = end
			}
			if slotStart.Before(slotEnd) {
				total += slotEnd.Sub(slotStart).Hours()
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return total
}

// Duration is the time an issue spent in one state. End is nil for
// the open interval the issue is still in; its durations are measured
// up to the evaluation instant.
type Duration struct {
	State         string
	Start         time.Time
	End           *time.Time
	CalendarDays  float64
	BusinessHours float64
}

// CalculateDurations walks the transition sequence pairwise: interval
// i runs in transition i's ToState from its timestamp to the next
// transition's timestamp. The final interval is always open, closed
// for measurement at now. Durations are clamped to zero when source
// timestamps run backwards.
func CalculateDurations(transitions []Transition, now time.Time, window BusinessWindow) []Duration {
	if len(transitions) == 0 {
		return nil
	}

	durations := make([]Duration, 0, len(transitions))
	for i, tr := range transitions {
		var end *time.Time
		measureEnd := now
		if i < len(transitions)-1 {
			next := transitions[i+1].Timestamp
			end = &next
			measureEnd = next
		}

		days := measureEnd.Sub(tr.Timestamp).Hours() / 24
		if days < 0 {
			days = 0
		}

		durations = append(durations, Duration{
			State:         tr.ToState,
			Start:         tr.Timestamp,
			End:           end,
			CalendarDays:  days,
			BusinessHours: window.Hours(tr.Timestamp, measureEnd),
		})
	}
	return durations
}
