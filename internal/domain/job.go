package domain

import "time"

// JobStatus enumerates the lifecycle of a single scheduled send.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobSent    JobStatus = "sent"
	JobFailed  JobStatus = "failed"
	JobSkipped JobStatus = "skipped"
)

// MaxAttempts is the number of send attempts permitted before a job is
// marked FAILED; its lead then becomes FAILED too unless an earlier job for
// that lead was already sent. See internal/scheduler for the backoff curve
// applied between attempts.
const MaxAttempts = 3

// Job is a durable record of one scheduled send for one (lead, step).
type Job struct {
	ID          string     `json:"id" db:"id"`
	CampaignID  string     `json:"campaign_id" db:"campaign_id"`
	LeadID      string     `json:"lead_id" db:"lead_id"`
	StepNumber  int        `json:"step_number" db:"step_number"`
	ScheduledAt time.Time  `json:"scheduled_at" db:"scheduled_at"`
	SentAt      *time.Time `json:"sent_at" db:"sent_at"`
	Status      JobStatus  `json:"status" db:"status"`
	Attempts    int        `json:"attempts" db:"attempts"`
	LastError   string     `json:"last_error,omitempty" db:"last_error"`
	MessageID   string     `json:"message_id,omitempty" db:"message_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// HistoryEntry is the projection returned by the email-history endpoint.
type HistoryEntry struct {
	StepNumber  int        `json:"step_number"`
	Status      JobStatus  `json:"status"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	SentAt      *time.Time `json:"sent_at"`
	Subject     string     `json:"subject"`
	Attempts    int        `json:"attempts"`
	LastError   string     `json:"last_error,omitempty"`
}
