// Package scheduler computes job timings as pure functions of campaign
// state, kept free of any store or transport dependency so the dispatcher
// and lifecycle manager can both call it inside their own transactions.
package scheduler

import (
	"time"

	"github.com/outreachcore/campaign-engine/internal/domain"
)

// RetryBase is the starting backoff duration for transient transport
// failures; NextRetryAt doubles it per attempt up to RetryCap.
const RetryBase = 60 * time.Second

// RetryCap bounds the exponential backoff applied between retry attempts.
const RetryCap = time.Hour

// NextScheduledAt computes scheduled_at for stepNumber given the campaign's
// anchor time and, for step>1, the previous step's actual send time.
//
// Step 1 anchors at max(anchor, now); template delay is ignored for step 1
// per the data model's invariant. Step n>1 is previousSentAt plus the
// template's delay, measured from the actual send rather than the
// scheduled time so pauses don't compound drift.
func NextScheduledAt(stepNumber int, anchor time.Time, now time.Time, previousSentAt time.Time, delay time.Duration) time.Time {
	if stepNumber <= 1 {
		if anchor.After(now) {
			return anchor
		}
		return now
	}
	return previousSentAt.Add(delay)
}

// NextRetryAt computes the backoff schedule for a transient failure on the
// given attempt count (1-indexed: the attempt that just failed).
func NextRetryAt(now time.Time, attempts int) time.Time {
	return now.Add(backoffFor(attempts))
}

func backoffFor(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := RetryBase
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= RetryCap {
			return RetryCap
		}
	}
	return d
}

// CompareJobs implements the tie-break ordering for jobs that become due
// simultaneously: (scheduled_at, campaign_id, lead_id, step_number).
func CompareJobs(a, b domain.Job) bool {
	if !a.ScheduledAt.Equal(b.ScheduledAt) {
		return a.ScheduledAt.Before(b.ScheduledAt)
	}
	if a.CampaignID != b.CampaignID {
		return a.CampaignID < b.CampaignID
	}
	if a.LeadID != b.LeadID {
		return a.LeadID < b.LeadID
	}
	return a.StepNumber < b.StepNumber
}
