package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/susnata2002/ai-scheduling-bot/internal/interval"
)

// Reference week: Monday 2026-09-07 .. Friday 2026-09-11.
var (
	monday  = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	tuesday = time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)
	friday  = time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)
)

type fakeExtractor struct {
	entities []Entity
	err      error
	calls    int
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) ([]Entity, error) {
	f.calls++
	return f.entities, f.err
}

// fakeTimes resolves a fixed vocabulary; anything else fails, like a
// fuzzy parser fed garbage.
type fakeTimes struct{}

func (fakeTimes) ParseDate(text string, _ time.Time) (time.Time, error) {
	switch text {
	case "Monday":
		return monday, nil
	case "Tuesday":
		return tuesday, nil
	case "Friday":
		return friday, nil
	}
	return time.Time{}, errors.New("unparseable date")
}

func (fakeTimes) ParseTime(text string) (TimeOfDay, error) {
	switch text {
	case "10 AM":
		return TimeOfDay{Hour: 10}, nil
	case "12 PM", "noon":
		return TimeOfDay{Hour: 12}, nil
	case "3pm", "3 PM":
		return TimeOfDay{Hour: 15}, nil
	case "9:30 AM":
		return TimeOfDay{Hour: 9, Minute: 30}, nil
	}
	return TimeOfDay{}, errors.New("unparseable time")
}

func newTestParser(ents []Entity) *Parser {
	p := NewParser(&fakeExtractor{entities: ents}, fakeTimes{})
	p.now = func() time.Time { return time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC) }
	return p
}

func mustIv(t *testing.T, day time.Time, startHour, startMin, endHour, endMin int) interval.Interval {
	t.Helper()
	iv, err := interval.New(
		time.Date(day.Year(), day.Month(), day.Day(), startHour, startMin, 0, 0, time.UTC),
		time.Date(day.Year(), day.Month(), day.Day(), endHour, endMin, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return iv
}

func TestParse_ExplicitRange(t *testing.T) {
	// "Monday 10 AM to 12 PM"
	p := newTestParser([]Entity{
		{KindDate, "Monday"},
		{KindTime, "10 AM"},
		{KindTime, "12 PM"},
	})
	got, err := p.Parse(context.Background(), "Monday 10 AM to 12 PM")
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{mustIv(t, monday, 10, 0, 12, 0)}, got)
}

func TestParse_VaguePhrase(t *testing.T) {
	// "Tuesday morning"
	p := newTestParser([]Entity{
		{KindDate, "Tuesday"},
		{KindTime, "morning"},
	})
	got, err := p.Parse(context.Background(), "Tuesday morning")
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{mustIv(t, tuesday, 8, 0, 12, 0)}, got)
}

func TestParse_VaguePhraseCaseAndSpace(t *testing.T) {
	p := newTestParser([]Entity{
		{KindDate, "Tuesday"},
		{KindTime, " Evening "},
	})
	got, err := p.Parse(context.Background(), "Tuesday Evening")
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{mustIv(t, tuesday, 17, 0, 20, 0)}, got)
}

func TestParse_SingleTimeDefaultsToOneHour(t *testing.T) {
	// "Friday at 3pm"
	p := newTestParser([]Entity{
		{KindDate, "Friday"},
		{KindTime, "3pm"},
	})
	got, err := p.Parse(context.Background(), "Friday at 3pm")
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{mustIv(t, friday, 15, 0, 16, 0)}, got)
}

func TestParse_NoEntities(t *testing.T) {
	p := newTestParser(nil)
	got, err := p.Parse(context.Background(), "thanks, talk soon!")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParse_TimeWithoutDateDiscarded(t *testing.T) {
	p := newTestParser([]Entity{
		{KindTime, "10 AM"},
		{KindTime, "12 PM"},
	})
	got, err := p.Parse(context.Background(), "10 AM to 12 PM works")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParse_UnparseableDateClearsContext(t *testing.T) {
	// A bad date drops the context, so the following time is discarded;
	// the later good date restores it.
	p := newTestParser([]Entity{
		{KindDate, "Monday"},
		{KindDate, "someday"},
		{KindTime, "10 AM"},
		{KindDate, "Friday"},
		{KindTime, "3pm"},
	})
	got, err := p.Parse(context.Background(), "Monday or someday at 10 AM, else Friday 3pm")
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{mustIv(t, friday, 15, 0, 16, 0)}, got)
}

func TestParse_UnparseableTimeClearsPending(t *testing.T) {
	// "Monday 10 AM, <garbage>, 12 PM": the garbage breaks the range, so
	// 12 PM starts a fresh one-hour slot instead of ending at 10 AM's.
	p := newTestParser([]Entity{
		{KindDate, "Monday"},
		{KindTime, "10 AM"},
		{KindTime, "tea time"},
		{KindTime, "12 PM"},
	})
	got, err := p.Parse(context.Background(), "Monday 10 AM, tea time, 12 PM")
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{
		mustIv(t, monday, 10, 0, 11, 0),
		mustIv(t, monday, 12, 0, 13, 0),
	}, got)
}

func TestParse_RangeDoesNotSpanDates(t *testing.T) {
	// The pending start is tagged with its date; a time under a new date
	// must not complete a range started under the old one.
	p := newTestParser([]Entity{
		{KindDate, "Monday"},
		{KindTime, "10 AM"},
		{KindDate, "Friday"},
		{KindTime, "3pm"},
	})
	got, err := p.Parse(context.Background(), "Monday 10 AM or Friday 3pm")
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{
		mustIv(t, monday, 10, 0, 11, 0),
		mustIv(t, friday, 15, 0, 16, 0),
	}, got)
}

func TestParse_ThreeTimesUnderOneDate(t *testing.T) {
	// After a range completes, the next time starts over as a point.
	p := newTestParser([]Entity{
		{KindDate, "Monday"},
		{KindTime, "10 AM"},
		{KindTime, "12 PM"},
		{KindTime, "3 PM"},
	})
	got, err := p.Parse(context.Background(), "Monday 10 AM to 12 PM, also 3 PM")
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{
		mustIv(t, monday, 10, 0, 12, 0),
		mustIv(t, monday, 15, 0, 16, 0),
	}, got)
}

func TestParse_MixedVagueAndExplicit(t *testing.T) {
	p := newTestParser([]Entity{
		{KindDate, "Tuesday"},
		{KindTime, "morning"},
		{KindDate, "Friday"},
		{KindTime, "afternoon"},
	})
	got, err := p.Parse(context.Background(), "Tuesday morning or Friday afternoon")
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{
		mustIv(t, tuesday, 8, 0, 12, 0),
		mustIv(t, friday, 13, 0, 17, 0),
	}, got)
}

func TestParse_ExtractorErrorPropagates(t *testing.T) {
	boom := errors.New("model unavailable")
	p := NewParser(&fakeExtractor{err: boom}, fakeTimes{})
	_, err := p.Parse(context.Background(), "Monday 10 AM")
	assert.ErrorIs(t, err, boom)
}

func TestParse_Idempotent(t *testing.T) {
	ents := []Entity{
		{KindDate, "Monday"},
		{KindTime, "10 AM"},
		{KindTime, "12 PM"},
		{KindDate, "Friday"},
		{KindTime, "morning"},
	}
	p := newTestParser(ents)
	first, err := p.Parse(context.Background(), "Monday 10 AM to 12 PM, Friday morning")
	require.NoError(t, err)
	second, err := p.Parse(context.Background(), "Monday 10 AM to 12 PM, Friday morning")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
