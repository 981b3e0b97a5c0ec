// Package availability turns free-text availability statements into
// ordered time intervals: "Monday 10 AM to 12 PM" becomes one window
// on the resolved Monday.
package availability

import (
	"context"
	"strings"
	"time"

	"github.com/susnata2002/ai-scheduling-bot/internal/interval"
)

// vagueRange maps a day-part word to its clock range.
type vagueRange struct {
	startHour, startMin int
	endHour, endMin     int
}

// Informal day-part phrases and the clock ranges they stand for.
// Read-only; shared by every parse.
var vagueTimes = map[string]vagueRange{
	"morning":   {8, 0, 12, 0},
	"afternoon": {13, 0, 17, 0},
	"evening":   {17, 0, 20, 0},
}

// Parser extracts availability windows from reply text. Stateless
// across calls: every Parse reprocesses the full text.
type Parser struct {
	extractor EntityExtractor
	times     DateTimeParser

	// now supplies the reference date for fuzzy resolution; overridable
	// in tests.
	now func() time.Time
}

func NewParser(extractor EntityExtractor, times DateTimeParser) *Parser {
	return &Parser{extractor: extractor, times: times, now: time.Now}
}

// Parse scans text once, in entity order, tracking a current-date
// context and a pending range start. Unparseable entities are dropped
// and processing continues; replies come from humans and silent
// recovery beats rejection. Text with nothing usable yields an empty
// sequence, not an error. Only extractor failures are returned.
func (p *Parser) Parse(ctx context.Context, text string) ([]interval.Interval, error) {
	entities, err := p.extractor.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	var out []interval.Interval
	ref := p.now().UTC()

	var (
		currentDate time.Time
		haveDate    bool
		// pending range start: set after a single time mention, consumed
		// if the very next time entity under the same date completes an
		// explicit range ("from 10 AM to 12 PM").
		pendingStart time.Time
		pendingDate  time.Time
		havePending  bool
	)

	for _, ent := range entities {
		switch ent.Kind {
		case KindDate:
			d, err := p.times.ParseDate(ent.Text, ref)
			if err != nil {
				// Not an error for the caller: the date context is simply
				// gone until the next parseable date.
				haveDate = false
				continue
			}
			currentDate = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
			haveDate = true

		case KindTime:
			if !haveDate {
				havePending = false
				continue
			}

			key := strings.ToLower(strings.TrimSpace(ent.Text))
			if vr, ok := vagueTimes[key]; ok {
				iv, err := interval.New(
					clockOn(currentDate, vr.startHour, vr.startMin),
					clockOn(currentDate, vr.endHour, vr.endMin),
				)
				if err == nil {
					out = append(out, iv)
				}
				// Day-part phrases stand alone; the pending range start is
				// untouched.
				continue
			}

			tod, err := p.times.ParseTime(ent.Text)
			if err != nil {
				havePending = false
				continue
			}
			at := clockOn(currentDate, tod.Hour, tod.Minute)

			if havePending && pendingDate.Equal(currentDate) && at.After(pendingStart) {
				// Second time under the same date: the previous mention was
				// the start of an explicit range. Widen the one-hour default
				// emitted for it into the full range.
				iv, err := interval.New(pendingStart, at)
				if err == nil {
					if n := len(out); n > 0 && out[n-1].Start.Equal(pendingStart) {
						out[n-1] = iv
					} else {
						out = append(out, iv)
					}
					havePending = false
					continue
				}
			}

			// Single point in time: assume a one-hour slot, and keep the
			// start around in case the next time entity continues a range.
			iv, err := interval.New(at, at.Add(time.Hour))
			if err == nil {
				out = append(out, iv)
			}
			pendingStart = at
			pendingDate = currentDate
			havePending = true
		}
	}
	return out, nil
}

func clockOn(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
}
