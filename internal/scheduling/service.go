// Package scheduling drives a request through its lifecycle: ask the
// candidate for availability, parse the reply, match against the
// recruiter's calendar, book the slot and confirm.
package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/susnata2002/ai-scheduling-bot/internal/db"
	"github.com/susnata2002/ai-scheduling-bot/internal/interval"
	"github.com/susnata2002/ai-scheduling-bot/internal/match"
	"github.com/susnata2002/ai-scheduling-bot/internal/notify"
	"github.com/susnata2002/ai-scheduling-bot/internal/requests"
)

// Store is the subset of the requests repo the orchestrator needs.
type Store interface {
	Create(ctx context.Context, candidateEmail, recruiterEmail string) (int64, error)
	Get(ctx context.Context, id int64) (requests.Request, error)
	SetAvailability(ctx context.Context, id int64, ivs []interval.Interval) error
	MarkScheduled(ctx context.Context, id int64, slot interval.Interval) (bool, error)
	MarkAttempt(ctx context.Context, id int64, stage string, success bool, detail string, lastErr *string) error
}

// Calendar is the busy-interval source and event creator for a
// recruiter's calendar.
type Calendar interface {
	BusyIntervals(ctx context.Context, ownerEmail string, window interval.Interval) ([]interval.Interval, error)
	CreateEvent(ctx context.Context, ownerEmail string, slot interval.Interval, attendeeEmails []string) error
}

// AvailabilityParser turns reply text into availability windows.
type AvailabilityParser interface {
	Parse(ctx context.Context, text string) ([]interval.Interval, error)
}

type Service struct {
	Store    Store
	Parser   AvailabilityParser
	Calendar Calendar
	Mailer   notify.Mailer

	// Required contiguous interview length. Zero means one hour.
	Duration time.Duration
}

func (s *Service) duration() time.Duration {
	if s.Duration > 0 {
		return s.Duration
	}
	return time.Hour
}

// Initiate creates a pending request and emails the candidate asking
// for availability. The returned id is valid even when the ask email
// fails; the error reports the failed send.
func (s *Service) Initiate(ctx context.Context, candidateEmail, recruiterEmail string) (int64, error) {
	id, err := s.Store.Create(ctx, candidateEmail, recruiterEmail)
	if err != nil {
		return 0, err
	}
	subject, body := notify.AvailabilityAsk(id)
	if err := s.Mailer.Send(ctx, candidateEmail, subject, body); err != nil {
		slog.Error("availability ask email failed", "request_id", id, "error", err)
		return id, fmt.Errorf("send availability ask: %w", err)
	}
	slog.Info("scheduling request created", "request_id", id, "candidate", candidateEmail)
	return id, nil
}

// Ingest processes a candidate reply. Unknown ids and requests no
// longer pending are silently skipped: duplicate and late replies are
// expected, not errors.
func (s *Service) Ingest(ctx context.Context, id int64, replyText string) error {
	req, err := s.Store.Get(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			slog.Info("reply for unknown request dropped", "request_id", id)
			return nil
		}
		return err
	}
	if req.Status != requests.StatusPending {
		slog.Info("reply for settled request dropped", "request_id", id, "status", req.Status)
		return nil
	}

	ivs, err := s.Parser.Parse(ctx, replyText)
	if err != nil {
		msg := fmt.Sprintf("parse reply: %v", err)
		_ = s.Store.MarkAttempt(ctx, id, "parse", false, "", &msg)
		return fmt.Errorf("request %d: %s", id, msg)
	}
	if err := s.Store.SetAvailability(ctx, id, ivs); err != nil {
		return err
	}
	req.Availability = ivs

	return s.AttemptSchedule(ctx, req)
}

// AttemptSchedule walks the availability windows in order and books
// the first viable slot. With no availability it does nothing: the
// request stays pending, waiting for a usable reply. With availability
// but no viable slot it tells the candidate and also leaves the
// request pending, so more availability can still reschedule it.
func (s *Service) AttemptSchedule(ctx context.Context, req requests.Request) error {
	if len(req.Availability) == 0 {
		slog.Info("no availability parsed yet", "request_id", req.ID)
		return nil
	}

	for _, window := range req.Availability {
		busy, err := s.Calendar.BusyIntervals(ctx, req.RecruiterEmail, window)
		if err != nil {
			msg := fmt.Sprintf("busy fetch: %v", err)
			_ = s.Store.MarkAttempt(ctx, req.ID, "busy_fetch", false, "", &msg)
			return fmt.Errorf("request %d: %s", req.ID, msg)
		}

		slot, ok := match.FindSlot([]interval.Interval{window}, busy, s.duration())
		if !ok {
			continue
		}

		if err := s.Calendar.CreateEvent(ctx, req.RecruiterEmail, slot, []string{req.RecruiterEmail, req.CandidateEmail}); err != nil {
			msg := fmt.Sprintf("create event: %v", err)
			_ = s.Store.MarkAttempt(ctx, req.ID, "create_event", false, "", &msg)
			return fmt.Errorf("request %d: %s", req.ID, msg)
		}

		won, err := s.Store.MarkScheduled(ctx, req.ID, slot)
		if err != nil {
			return err
		}
		if !won {
			// A concurrent ingest settled the request while we were
			// booking. The created event is surplus; flag it loudly.
			slog.Warn("lost scheduling race after event creation", "request_id", req.ID, "slot", slot)
			return nil
		}
		_ = s.Store.MarkAttempt(ctx, req.ID, "book", true, slot.String(), nil)

		subject, body := notify.Confirmation(req.ID, slot)
		if err := s.Mailer.Send(ctx, req.CandidateEmail, subject, body); err != nil {
			slog.Error("confirmation email failed", "request_id", req.ID, "error", err)
			return fmt.Errorf("request %d: send confirmation: %w", req.ID, err)
		}
		slog.Info("interview scheduled", "request_id", req.ID, "slot", slot)
		return nil
	}

	// Normal outcome, not a fault: nothing fits, the candidate is asked
	// for more availability and the request stays pending.
	subject, body := notify.NoSlotFound(req.ID)
	if err := s.Mailer.Send(ctx, req.CandidateEmail, subject, body); err != nil {
		msg := fmt.Sprintf("send no-slot notice: %v", err)
		_ = s.Store.MarkAttempt(ctx, req.ID, "notify", false, "", &msg)
		return fmt.Errorf("request %d: %s", req.ID, msg)
	}
	_ = s.Store.MarkAttempt(ctx, req.ID, "match", false, "no slot across availability", nil)
	slog.Info("no slot found", "request_id", req.ID, "windows", len(req.Availability))
	return nil
}
