package availability

import (
	"context"
	"time"
)

type EntityKind string

const (
	KindDate EntityKind = "DATE"
	KindTime EntityKind = "TIME"
)

// Entity is a typed span found in free text, in document order.
type Entity struct {
	Kind EntityKind
	Text string
}

// EntityExtractor finds date and time references in unstructured text.
// Implementations live elsewhere (internal/nlp); the parser only needs
// the ordered entity stream so its control flow can be tested against
// a fake.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
}

// TimeOfDay is a clock time with minute granularity.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// DateTimeParser interprets fuzzy date and time strings.
type DateTimeParser interface {
	// ParseDate resolves text like "Monday" or "March 3" to a calendar
	// date, defaulting ambiguous fields against ref.
	ParseDate(text string, ref time.Time) (time.Time, error)
	// ParseTime resolves text like "10 AM" or "15:30" to a clock time.
	ParseTime(text string) (TimeOfDay, error)
}
