// Package fuzzytime interprets fuzzy date and time strings using the
// olebedev/when natural-language rules.
package fuzzytime

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/susnata2002/ai-scheduling-bot/internal/availability"
)

// Parser implements availability.DateTimeParser.
type Parser struct {
	w *when.Parser
}

func New() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{w: w}
}

// ParseDate resolves text like "next Monday" or "March 3" to a
// calendar date. Fields the text leaves open default to ref, the way
// a human reader would resolve them against today.
func (p *Parser) ParseDate(text string, ref time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("empty date text")
	}
	r, err := p.w.Parse(text, ref)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", text, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("no date found in %q", text)
	}
	y, m, d := r.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// ParseTime resolves text like "10 AM", "3pm" or "5:30 pm" to a clock
// time. The base date fed to the rules is arbitrary; only the clock
// portion of the match is kept.
func (p *Parser) ParseTime(text string) (availability.TimeOfDay, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return availability.TimeOfDay{}, fmt.Errorf("empty time text")
	}
	base := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	r, err := p.w.Parse(text, base)
	if err != nil {
		return availability.TimeOfDay{}, fmt.Errorf("parse time %q: %w", text, err)
	}
	if r == nil {
		return availability.TimeOfDay{}, fmt.Errorf("no time found in %q", text)
	}
	if r.Time.Equal(base) {
		// Matched something (e.g. a bare weekday) without moving the
		// clock; that is not a usable time of day.
		return availability.TimeOfDay{}, fmt.Errorf("no clock time in %q", text)
	}
	return availability.TimeOfDay{Hour: r.Time.Hour(), Minute: r.Time.Minute()}, nil
}
