// Package match finds the earliest free slot of a required duration
// inside candidate-stated availability windows, around a calendar's
// busy intervals.
package match

import (
	"sort"
	"time"

	"github.com/susnata2002/ai-scheduling-bot/internal/interval"
)

// FindSlot returns the earliest slot of exactly duration that fits in
// some availability window without touching any busy interval.
// Windows are tried in the given order and the first window that
// admits a slot wins; windows are never compared against each other
// for a globally "best" slot. Returns ok=false when nothing fits.
func FindSlot(availability, busy []interval.Interval, duration time.Duration) (interval.Interval, bool) {
	if duration <= 0 {
		return interval.Interval{}, false
	}
	for _, window := range availability {
		if slot, ok := findInWindow(window, busy, duration); ok {
			return slot, true
		}
	}
	return interval.Interval{}, false
}

func findInWindow(window interval.Interval, busy []interval.Interval, duration time.Duration) (interval.Interval, bool) {
	var conflicts []interval.Interval
	for _, b := range busy {
		if b.Overlaps(window) {
			conflicts = append(conflicts, b)
		}
	}

	if len(conflicts) == 0 {
		if window.Duration() >= duration {
			return interval.Interval{Start: window.Start, End: window.Start.Add(duration)}, true
		}
		return interval.Interval{}, false
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].Start.Before(conflicts[j].Start)
	})

	// Sweep left to right, advancing the free cursor past each conflict.
	freeStart := window.Start
	for _, c := range conflicts {
		if c.Start.Sub(freeStart) >= duration {
			return interval.Interval{Start: freeStart, End: freeStart.Add(duration)}, true
		}
		if c.End.After(freeStart) {
			freeStart = c.End
		}
	}
	if window.End.Sub(freeStart) >= duration {
		return interval.Interval{Start: freeStart, End: freeStart.Add(duration)}, true
	}
	return interval.Interval{}, false
}
