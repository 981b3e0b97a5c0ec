package interval

import (
	"encoding/json"
	"fmt"
	"time"
)

// Interval is a half-open time range [Start, End). Values are built
// through New and never mutated afterwards.
type Interval struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("interval start %s must be before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps reports strict intersection: touching endpoints do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

func (iv Interval) String() string {
	return iv.Start.Format(time.RFC3339) + ".." + iv.End.Format(time.RFC3339)
}

// EncodeJSON serializes intervals as [[startISO8601, endISO8601], ...],
// the durable encoding for stored availability.
func EncodeJSON(ivs []Interval) ([]byte, error) {
	pairs := make([][2]string, 0, len(ivs))
	for _, iv := range ivs {
		pairs = append(pairs, [2]string{
			iv.Start.UTC().Format(time.RFC3339),
			iv.End.UTC().Format(time.RFC3339),
		})
	}
	return json.Marshal(pairs)
}

func DecodeJSON(b []byte) ([]Interval, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var pairs [][2]string
	if err := json.Unmarshal(b, &pairs); err != nil {
		return nil, fmt.Errorf("decode availability: %w", err)
	}
	var out []Interval
	for _, p := range pairs {
		start, err := time.Parse(time.RFC3339, p[0])
		if err != nil {
			return nil, fmt.Errorf("decode availability start %q: %w", p[0], err)
		}
		end, err := time.Parse(time.RFC3339, p[1])
		if err != nil {
			return nil, fmt.Errorf("decode availability end %q: %w", p[1], err)
		}
		iv, err := New(start, end)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, nil
}
