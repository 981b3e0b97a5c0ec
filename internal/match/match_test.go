package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/susnata2002/ai-scheduling-bot/internal/interval"
)

func iv(t *testing.T, startHour, startMin, endHour, endMin int) interval.Interval {
	t.Helper()
	out, err := interval.New(
		time.Date(2026, 9, 7, startHour, startMin, 0, 0, time.UTC),
		time.Date(2026, 9, 7, endHour, endMin, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return out
}

func TestFindSlot_EmptyWindowBeforeConflict(t *testing.T) {
	// Earliest fit wins: the hour before the 10:00 meeting, not after it.
	slot, ok := FindSlot(
		[]interval.Interval{iv(t, 9, 0, 12, 0)},
		[]interval.Interval{iv(t, 10, 0, 10, 30)},
		time.Hour,
	)
	require.True(t, ok)
	assert.Equal(t, iv(t, 9, 0, 10, 0), slot)
}

func TestFindSlot_NoBusyOverlap(t *testing.T) {
	slot, ok := FindSlot(
		[]interval.Interval{iv(t, 9, 0, 12, 0)},
		[]interval.Interval{iv(t, 13, 0, 14, 0)},
		time.Hour,
	)
	require.True(t, ok)
	assert.Equal(t, iv(t, 9, 0, 10, 0), slot)
}

func TestFindSlot_RemainderTooShort(t *testing.T) {
	_, ok := FindSlot(
		[]interval.Interval{iv(t, 9, 0, 10, 30)},
		[]interval.Interval{iv(t, 9, 0, 10, 0)},
		time.Hour,
	)
	assert.False(t, ok)
}

func TestFindSlot_AfterLastConflict(t *testing.T) {
	slot, ok := FindSlot(
		[]interval.Interval{iv(t, 9, 0, 12, 0)},
		[]interval.Interval{iv(t, 9, 0, 10, 0), iv(t, 10, 0, 11, 0)},
		time.Hour,
	)
	require.True(t, ok)
	assert.Equal(t, iv(t, 11, 0, 12, 0), slot)
}

func TestFindSlot_BetweenConflicts(t *testing.T) {
	slot, ok := FindSlot(
		[]interval.Interval{iv(t, 9, 0, 13, 0)},
		[]interval.Interval{iv(t, 9, 0, 9, 30), iv(t, 11, 0, 12, 30)},
		time.Hour,
	)
	require.True(t, ok)
	assert.Equal(t, iv(t, 9, 30, 10, 30), slot)
}

func TestFindSlot_UnsortedBusyInput(t *testing.T) {
	// Busy intervals arrive in arbitrary order; the sweep must sort them
	// or the 9:00 conflict would be missed.
	slot, ok := FindSlot(
		[]interval.Interval{iv(t, 9, 0, 13, 0)},
		[]interval.Interval{iv(t, 11, 0, 12, 30), iv(t, 9, 0, 10, 30)},
		30*time.Minute,
	)
	require.True(t, ok)
	assert.Equal(t, iv(t, 10, 30, 11, 0), slot)
}

func TestFindSlot_FallsThroughToLaterWindow(t *testing.T) {
	slot, ok := FindSlot(
		[]interval.Interval{iv(t, 9, 0, 10, 0), iv(t, 14, 0, 16, 0)},
		[]interval.Interval{iv(t, 9, 0, 10, 0)},
		time.Hour,
	)
	require.True(t, ok)
	assert.Equal(t, iv(t, 14, 0, 15, 0), slot)
}

func TestFindSlot_OverlappingBusyIntervals(t *testing.T) {
	// The second conflict is swallowed by the first; the cursor must not
	// move backwards.
	slot, ok := FindSlot(
		[]interval.Interval{iv(t, 9, 0, 12, 0)},
		[]interval.Interval{iv(t, 9, 0, 11, 0), iv(t, 9, 30, 10, 0)},
		time.Hour,
	)
	require.True(t, ok)
	assert.Equal(t, iv(t, 11, 0, 12, 0), slot)
}

func TestFindSlot_NoWindows(t *testing.T) {
	_, ok := FindSlot(nil, []interval.Interval{iv(t, 9, 0, 10, 0)}, time.Hour)
	assert.False(t, ok)
}

func TestFindSlot_NonPositiveDuration(t *testing.T) {
	_, ok := FindSlot([]interval.Interval{iv(t, 9, 0, 12, 0)}, nil, 0)
	assert.False(t, ok)
}

func TestFindSlot_SlotDisjointFromAllBusy(t *testing.T) {
	availability := []interval.Interval{iv(t, 8, 0, 18, 0)}
	busy := []interval.Interval{
		iv(t, 8, 30, 9, 30),
		iv(t, 10, 0, 10, 15),
		iv(t, 10, 45, 12, 0),
	}
	slot, ok := FindSlot(availability, busy, 45*time.Minute)
	require.True(t, ok)
	for _, b := range busy {
		assert.False(t, slot.Overlaps(b), "slot %s overlaps busy %s", slot, b)
	}
	assert.True(t, !slot.Start.Before(availability[0].Start) && !slot.End.After(availability[0].End))
}
