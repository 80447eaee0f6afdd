// Package store defines the transactional persistence contract for the
// campaign execution core and its PostgreSQL implementation.
package store

import (
	"context"
	"time"

	"github.com/outreachcore/campaign-engine/internal/domain"
)

// Store exposes atomic operations over campaigns, leads, templates, and
// jobs. Single-statement operations are individually atomic (CAS via
// UPDATE...WHERE + RowsAffected); job processing is not single-statement —
// see ClaimNextJob.
type Store interface {
	// ClaimNextJob opens a transaction and locks at most one PENDING job
	// due at or before now with FOR UPDATE SKIP LOCKED, returning a
	// JobClaim that owns that transaction. The row lock — and therefore
	// protection against a second claim or a concurrent
	// CancelPendingJobsForLead racing this job — is held for as long as
	// the caller keeps the claim open, not just for the claim statement.
	// The caller must Commit or Rollback the claim exactly once. Returns
	// a nil JobClaim (no error) when nothing is currently due.
	ClaimNextJob(ctx context.Context, now time.Time) (JobClaim, error)

	// CreateJob inserts a job for (leadID, step), idempotently: if a
	// non-FAILED job already exists for that (lead, step) the existing row
	// is returned instead of creating a duplicate.
	CreateJob(ctx context.Context, campaignID, leadID string, step int, scheduledAt time.Time) (domain.Job, error)

	// CancelPendingJobsForLead bulk-updates every PENDING job for leadID to
	// SKIPPED with reason "lead terminal". A job a JobClaim currently holds
	// locked is not PENDING from this statement's point of view until that
	// claim commits or rolls back, so this blocks on it and then re-checks
	// status before deciding whether to touch the row.
	CancelPendingJobsForLead(ctx context.Context, leadID string) error

	// ResetJobForRetry resets a FAILED job back to PENDING with
	// scheduled_at = now and attempts = 0. Returns ErrInvalidState if the
	// job is not currently FAILED.
	ResetJobForRetry(ctx context.Context, jobID string, now time.Time) error

	LoadCampaign(ctx context.Context, id string) (domain.Campaign, error)
	LoadLead(ctx context.Context, id string) (domain.Lead, error)
	LoadTemplate(ctx context.Context, campaignID string, step int) (domain.Template, error)
	LoadUser(ctx context.Context, id string) (domain.User, error)
	ListTemplates(ctx context.Context, campaignID string) ([]domain.Template, error)
	ListNonTerminalLeads(ctx context.Context, campaignID string) ([]domain.Lead, error)
	ListJobHistory(ctx context.Context, leadID string) ([]domain.HistoryEntry, error)

	// LeadHasSentJob reports whether any job for leadID has ever reached
	// SENT, used by bounce handling to decide whether to fail the lead.
	LeadHasSentJob(ctx context.Context, leadID string) (bool, error)

	// CampaignIsExhausted reports whether the campaign has no PENDING jobs
	// left. Lead statuses are not consulted.
	CampaignIsExhausted(ctx context.Context, campaignID string) (bool, error)

	// UpdateLeadStatus performs an atomic UPDATE ... WHERE status IN (from)
	// compare-and-swap to `to`. Returns false (no error) if no row matched,
	// i.e. the lead had already moved on.
	UpdateLeadStatus(ctx context.Context, leadID string, from []domain.LeadStatus, to domain.LeadStatus) (bool, error)

	// UpdateCampaignStatus performs the same compare-and-swap for campaigns.
	UpdateCampaignStatus(ctx context.Context, campaignID string, from []domain.CampaignStatus, to domain.CampaignStatus, startTime *time.Time) (bool, error)

	// DeleteCampaign removes a DRAFT campaign outright; ON DELETE CASCADE
	// foreign keys take its leads, templates, and jobs with it. Returns
	// ErrInvalidState if the campaign is not currently DRAFT.
	DeleteCampaign(ctx context.Context, campaignID string) error

	// FindLeadByMessageID resolves a lead and the specific job that sent
	// messageID, for reply/bounce correlation.
	FindLeadByMessageID(ctx context.Context, messageID string) (domain.Lead, domain.Job, error)

	CreateCampaign(ctx context.Context, c domain.Campaign) (domain.Campaign, error)
	CreateLead(ctx context.Context, l domain.Lead) (domain.Lead, error)
	CreateTemplate(ctx context.Context, t domain.Template) (domain.Template, error)
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
}

// JobClaim is a held claim on a single PENDING job row, returned by
// ClaimNextJob. It carries its own transaction: every read and write
// issued through it sees a consistent snapshot and holds the row lock
// until Commit or Rollback, so a multi-second Send() in between is exactly
// as protected against a duplicate claim or a concurrent
// CancelPendingJobsForLead as a single fast UPDATE would be.
type JobClaim interface {
	// Job returns the claimed row as it looked at claim time (attempts
	// already incremented to record the claim).
	Job() domain.Job

	LoadCampaign(ctx context.Context, id string) (domain.Campaign, error)
	LoadLead(ctx context.Context, id string) (domain.Lead, error)
	LoadTemplate(ctx context.Context, campaignID string, step int) (domain.Template, error)
	LoadUser(ctx context.Context, id string) (domain.User, error)
	LeadHasSentJob(ctx context.Context, leadID string) (bool, error)

	// MarkSent records a successful send on this claim's job.
	MarkSent(ctx context.Context, sentAt time.Time, messageID string) error
	// MarkFailed records a terminal failure on this claim's job.
	MarkFailed(ctx context.Context, reason string) error
	// MarkSkipped records a non-error skip on this claim's job.
	MarkSkipped(ctx context.Context, reason string) error
	// RescheduleForRetry moves this claim's job's scheduled_at forward
	// after a transient failure, recording the error without changing
	// status away from PENDING.
	RescheduleForRetry(ctx context.Context, nextAt time.Time, reason string) error

	// CreateJob inserts the next-step job inside this claim's transaction,
	// so the follow-up only becomes visible once this send commits.
	CreateJob(ctx context.Context, campaignID, leadID string, step int, scheduledAt time.Time) (domain.Job, error)
	// UpdateLeadStatus performs the lead CAS inside this claim's
	// transaction.
	UpdateLeadStatus(ctx context.Context, leadID string, from []domain.LeadStatus, to domain.LeadStatus) (bool, error)

	// Commit ends the claim, releasing the row lock and making every write
	// issued through it visible.
	Commit() error
	// Rollback ends the claim without persisting any write issued through
	// it, releasing the row lock. The job reverts to exactly its
	// pre-claim state (including its pre-claim attempts count).
	Rollback() error
}
