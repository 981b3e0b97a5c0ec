// Package calendar talks to Google Calendar: free/busy lookups for a
// recruiter's mailbox and interview event creation.
package calendar

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/susnata2002/ai-scheduling-bot/internal/interval"
)

const eventSummary = "Interview"

// GoogleClient uses a service account with domain-wide delegation and
// impersonates the calendar owner per call.
type GoogleClient struct {
	credsJSON  []byte
	calendarID string
}

func NewGoogle(serviceAccountFile string) (*GoogleClient, error) {
	b, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	// validate the key up front instead of on the first request
	if _, err := google.JWTConfigFromJSON(b, gcal.CalendarScope); err != nil {
		return nil, fmt.Errorf("service account config: %w", err)
	}
	return &GoogleClient{credsJSON: b, calendarID: "primary"}, nil
}

func (c *GoogleClient) service(ctx context.Context, subject string) (*gcal.Service, error) {
	conf, err := google.JWTConfigFromJSON(c.credsJSON, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("service account config: %w", err)
	}
	conf.Subject = subject
	return gcal.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
}

// BusyIntervals queries free/busy for owner's primary calendar over
// the window. Returned intervals come back in provider order.
func (c *GoogleClient) BusyIntervals(ctx context.Context, ownerEmail string, window interval.Interval) ([]interval.Interval, error) {
	svc, err := c.service(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}
	resp, err := svc.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin: window.Start.UTC().Format(time.RFC3339),
		TimeMax: window.End.UTC().Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: c.calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query for %s: %w", ownerEmail, err)
	}

	cal, ok := resp.Calendars[c.calendarID]
	if !ok {
		return nil, fmt.Errorf("freebusy response missing calendar %q", c.calendarID)
	}
	var out []interval.Interval
	for _, p := range cal.Busy {
		start, err := time.Parse(time.RFC3339, p.Start)
		if err != nil {
			return nil, fmt.Errorf("busy period start %q: %w", p.Start, err)
		}
		end, err := time.Parse(time.RFC3339, p.End)
		if err != nil {
			return nil, fmt.Errorf("busy period end %q: %w", p.End, err)
		}
		iv, err := interval.New(start.UTC(), end.UTC())
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, nil
}

// CreateEvent books the slot on owner's primary calendar with every
// attendee invited. Failure is the caller's problem: nothing here may
// pretend an event exists.
func (c *GoogleClient) CreateEvent(ctx context.Context, ownerEmail string, slot interval.Interval, attendeeEmails []string) error {
	svc, err := c.service(ctx, ownerEmail)
	if err != nil {
		return err
	}
	attendees := make([]*gcal.EventAttendee, 0, len(attendeeEmails))
	for _, email := range attendeeEmails {
		attendees = append(attendees, &gcal.EventAttendee{Email: email})
	}
	event := &gcal.Event{
		Summary:   eventSummary,
		Start:     &gcal.EventDateTime{DateTime: slot.Start.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:       &gcal.EventDateTime{DateTime: slot.End.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		Attendees: attendees,
	}
	if _, err := svc.Events.Insert(c.calendarID, event).SendUpdates("all").Context(ctx).Do(); err != nil {
		return fmt.Errorf("create event on %s: %w", ownerEmail, err)
	}
	return nil
}
