package requests

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/susnata2002/ai-scheduling-bot/internal/db"
	"github.com/susnata2002/ai-scheduling-bot/internal/interval"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusFailed    Status = "failed"
)

// Request is a persisted interview-scheduling request. Status moves
// forward only: pending -> scheduled or pending -> failed.
type Request struct {
	ID             int64
	CandidateEmail string
	RecruiterEmail string
	Status         Status

	// Candidate-stated availability windows, empty until a reply is
	// parsed. Stored as ISO-8601 pair JSON.
	Availability []interval.Interval

	ScheduledStart *time.Time
	ScheduledEnd   *time.Time

	LastAttemptAt *time.Time
	LastError     *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Request) Validate() error {
	if !validEmail(r.CandidateEmail) {
		return fmt.Errorf("candidate email required")
	}
	if !validEmail(r.RecruiterEmail) {
		return fmt.Errorf("recruiter email required")
	}
	return nil
}

// ErrorText returns the last error as a plain string, empty when unset.
func (r Request) ErrorText() string {
	if r.LastError == nil {
		return ""
	}
	return *r.LastError
}

func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1
}

type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

const requestCols = `id,candidate_email,recruiter_email,status,availability,scheduled_start,scheduled_end,last_attempt_at,last_error,created_at,updated_at`

func (r *Repo) Create(ctx context.Context, candidateEmail, recruiterEmail string) (int64, error) {
	req := Request{CandidateEmail: candidateEmail, RecruiterEmail: recruiterEmail}
	if err := req.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO scheduling_requests(candidate_email,recruiter_email,status)
VALUES ($1,$2,'pending')
RETURNING id`, strings.TrimSpace(candidateEmail), strings.TrimSpace(recruiterEmail)).Scan(&id)
	return id, db.WrapNotFound(err)
}

func (r *Repo) Get(ctx context.Context, id int64) (Request, error) {
	row := r.db.QueryRow(ctx, `
SELECT `+requestCols+`
FROM scheduling_requests
WHERE id=$1`, id)
	return scanRequest(row)
}

func (r *Repo) List(ctx context.Context) ([]Request, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+requestCols+`
FROM scheduling_requests
ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// SetAvailability stores the parsed windows. Called once per usable
// reply, before the match-and-book step.
func (r *Repo) SetAvailability(ctx context.Context, id int64, ivs []interval.Interval) error {
	enc, err := interval.EncodeJSON(ivs)
	if err != nil {
		return err
	}
	return r.db.Exec(ctx, `
UPDATE scheduling_requests SET availability=$2, updated_at=now() WHERE id=$1`, id, enc)
}

// MarkScheduled flips pending -> scheduled and records the booked slot.
// The WHERE clause is the compare-and-swap guard against a concurrent
// ingest of the same request; false means the request was no longer
// pending and the caller must treat the attempt as lost.
func (r *Repo) MarkScheduled(ctx context.Context, id int64, slot interval.Interval) (bool, error) {
	n, err := r.db.ExecAffected(ctx, `
UPDATE scheduling_requests
SET status='scheduled', scheduled_start=$2, scheduled_end=$3, last_error=NULL, updated_at=now()
WHERE id=$1 AND status='pending'`, id, slot.Start, slot.End)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkFailed flips pending -> failed. Kept for operator tooling; the
// orchestrator leaves no-slot requests pending so a later reply can
// still reschedule them.
func (r *Repo) MarkFailed(ctx context.Context, id int64, reason string) (bool, error) {
	n, err := r.db.ExecAffected(ctx, `
UPDATE scheduling_requests
SET status='failed', last_error=$2, updated_at=now()
WHERE id=$1 AND status='pending'`, id, reason)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkAttempt records one match-and-book attempt for the audit trail
// and keeps last_attempt_at/last_error current on the request.
func (r *Repo) MarkAttempt(ctx context.Context, id int64, stage string, success bool, detail string, lastErr *string) error {
	if err := r.db.Exec(ctx, `
INSERT INTO request_attempts(request_id, stage, success, detail) VALUES ($1,$2,$3,$4)`,
		id, stage, success, detail); err != nil {
		return err
	}
	if success {
		return r.db.Exec(ctx, `
UPDATE scheduling_requests SET last_attempt_at=now(), last_error=NULL, updated_at=now() WHERE id=$1`, id)
	}
	return r.db.Exec(ctx, `
UPDATE scheduling_requests SET last_attempt_at=now(), last_error=$2, updated_at=now() WHERE id=$1`, id, lastErr)
}

// Retryable lists pending requests that already hold availability but
// whose last attempt aborted on a collaborator error, spaced by
// retryAfter. The recovery sweeper drains these.
func (r *Repo) Retryable(ctx context.Context, retryAfter time.Duration, limit int) ([]Request, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+requestCols+`
FROM scheduling_requests
WHERE status='pending'
  AND availability <> '[]'::jsonb
  AND last_error IS NOT NULL
  AND last_attempt_at < now() - $1::interval
ORDER BY last_attempt_at ASC
LIMIT $2`, fmt.Sprintf("%d seconds", int(retryAfter.Seconds())), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(row db.Row) (Request, error) {
	var req Request
	var status string
	var avail []byte
	if err := row.Scan(
		&req.ID, &req.CandidateEmail, &req.RecruiterEmail, &status, &avail,
		&req.ScheduledStart, &req.ScheduledEnd, &req.LastAttemptAt, &req.LastError,
		&req.CreatedAt, &req.UpdatedAt,
	); err != nil {
		return Request{}, db.WrapNotFound(err)
	}
	req.Status = Status(status)
	ivs, err := interval.DecodeJSON(avail)
	if err != nil {
		return Request{}, fmt.Errorf("request %d: %w", req.ID, err)
	}
	req.Availability = ivs
	return req, nil
}
