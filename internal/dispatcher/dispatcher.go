// Package dispatcher implements the polling worker pool that claims due
// jobs, renders and sends them, and schedules the next step.
package dispatcher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/outreachcore/campaign-engine/internal/clock"
	"github.com/outreachcore/campaign-engine/internal/domain"
	"github.com/outreachcore/campaign-engine/internal/logger"
	"github.com/outreachcore/campaign-engine/internal/renderer"
	"github.com/outreachcore/campaign-engine/internal/scheduler"
	"github.com/outreachcore/campaign-engine/internal/store"
	"github.com/outreachcore/campaign-engine/internal/transport"
)

// Config controls polling cadence and batch sizing.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	SendTimeout  time.Duration
}

// DefaultConfig matches the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		BatchSize:    10,
		MaxAttempts:  domain.MaxAttempts,
		SendTimeout:  30 * time.Second,
	}
}

// Stats exposes the atomic counters surfaced by the healthz/metrics path.
type Stats struct {
	Claimed uint64
	Sent    uint64
	Failed  uint64
	Skipped uint64
}

// Dispatcher is the polling worker pool described in §4.3: a ticker
// goroutine feeds a bounded pool of claim-and-process workers, coordinated
// with context cancellation and a WaitGroup, counting outcomes with
// sync/atomic for observability.
type Dispatcher struct {
	store     store.Store
	transport transport.EmailTransport
	clock     clock.Clock
	cfg       Config

	claimed uint64
	sent    uint64
	failed  uint64
	skipped uint64

	lastTick atomic.Int64 // unix nanos of the most recent completed tick, for healthz heartbeat age
}

// New builds a Dispatcher over the given store and transport.
func New(s store.Store, tr transport.EmailTransport, c clock.Clock, cfg Config) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg = DefaultConfig()
	}
	return &Dispatcher{store: s, transport: tr, clock: c, cfg: cfg}
}

// Stats returns a snapshot of the dispatcher's atomic counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Claimed: atomic.LoadUint64(&d.claimed),
		Sent:    atomic.LoadUint64(&d.sent),
		Failed:  atomic.LoadUint64(&d.failed),
		Skipped: atomic.LoadUint64(&d.skipped),
	}
}

// HeartbeatAge reports how long ago the dispatcher completed its last tick,
// used by the /healthz handler to detect a stalled worker.
func (d *Dispatcher) HeartbeatAge() time.Duration {
	last := d.lastTick.Load()
	if last == 0 {
		return 0
	}
	return time.Since(time.Unix(0, last))
}

// Run polls until ctx is cancelled, blocking until the current tick and any
// in-flight jobs finish. Each claimed job owns its own transaction from the
// moment it's claimed through Send() to the final Commit/Rollback, so the
// row lock behind FOR UPDATE SKIP LOCKED is held for the job's entire
// processing, not just the claim statement: a second tick or a second
// dispatcher instance can never reclaim it, and CancelPendingJobsForLead
// blocks on the same row instead of racing it. If the process is killed
// mid-send, the unresolved transaction's connection drops and Postgres
// rolls it back on its own, returning the job to PENDING for the next
// claim.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *Dispatcher) tick(ctx context.Context) {
	now := d.clock.Now()

	var claims []store.JobClaim
	for i := 0; i < d.cfg.BatchSize; i++ {
		claim, err := d.store.ClaimNextJob(ctx, now)
		if err != nil {
			logger.Error("dispatcher: claim next job failed", "error", err.Error())
			break
		}
		if claim == nil {
			break
		}
		claims = append(claims, claim)
	}
	atomic.AddUint64(&d.claimed, uint64(len(claims)))

	var wg sync.WaitGroup
	seenCampaigns := make(map[string]struct{})
	var mu sync.Mutex

	for _, claim := range claims {
		wg.Add(1)
		go func(c store.JobClaim) {
			defer wg.Done()
			campaignID := c.Job().CampaignID
			d.processClaim(ctx, c)
			mu.Lock()
			seenCampaigns[campaignID] = struct{}{}
			mu.Unlock()
		}(claim)
	}
	wg.Wait()

	for campaignID := range seenCampaigns {
		d.maybeCompleteCampaign(ctx, campaignID)
	}

	d.lastTick.Store(d.clock.Now().UnixNano())
}

// processClaim performs final validation, render, send, and outcome
// recording for one already-claimed job, inside the claim's transaction. A
// panic here is converted into a transient failure so the worker goroutine
// never dies from it.
func (d *Dispatcher) processClaim(ctx context.Context, c store.JobClaim) {
	job := c.Job()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("dispatcher: recovered panic in job processing", "job_id", job.ID, "panic", r)
			d.handleSendFailure(ctx, c, true, "panic: programmer error")
		}
	}()

	campaign, err := c.LoadCampaign(ctx, job.CampaignID)
	if err != nil {
		logger.Error("dispatcher: load campaign failed", "job_id", job.ID, "error", err.Error())
		d.abort(c, "load campaign")
		return
	}
	if campaign.Status != domain.CampaignActive {
		d.skip(ctx, c, "campaign not active")
		return
	}

	lead, err := c.LoadLead(ctx, job.LeadID)
	if err != nil {
		logger.Error("dispatcher: load lead failed", "job_id", job.ID, "error", err.Error())
		d.abort(c, "load lead")
		return
	}
	if lead.IsTerminal() {
		d.skip(ctx, c, "lead terminal: "+string(lead.Status))
		return
	}

	tmpl, err := c.LoadTemplate(ctx, job.CampaignID, job.StepNumber)
	if err != nil {
		d.skip(ctx, c, "template missing")
		return
	}

	owner, err := c.LoadUser(ctx, campaign.OwnerUserID)
	if err != nil {
		logger.Error("dispatcher: load owner failed", "job_id", job.ID, "error", err.Error())
		d.abort(c, "load owner")
		return
	}

	subject, body := renderer.Render(tmpl, lead, owner.SignatureHTML)

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	messageID, err := d.transport.Send(sendCtx, owner.Email, "", lead.Email, subject, body, nil)
	cancel()

	if err != nil {
		transient := true
		if te, ok := err.(*transport.TransportError); ok {
			transient = te.IsTransient()
		}
		d.handleSendFailure(ctx, c, transient, err.Error())
		return
	}

	d.handleSendSuccess(ctx, c, campaign, lead, tmpl, messageID)
}

// abort rolls back a claim whose read side failed before any outcome could
// be recorded, leaving the job PENDING for the next tick to retry.
func (d *Dispatcher) abort(c store.JobClaim, step string) {
	if err := c.Rollback(); err != nil {
		logger.Error("dispatcher: rollback failed", "job_id", c.Job().ID, "step", step, "error", err.Error())
	}
}

func (d *Dispatcher) skip(ctx context.Context, c store.JobClaim, reason string) {
	job := c.Job()
	if err := c.MarkSkipped(ctx, reason); err != nil {
		logger.Error("dispatcher: mark skipped failed", "job_id", job.ID, "error", err.Error())
		d.abort(c, "mark skipped")
		return
	}
	if err := c.Commit(); err != nil {
		logger.Error("dispatcher: commit skip failed", "job_id", job.ID, "error", err.Error())
		return
	}
	atomic.AddUint64(&d.skipped, 1)
}

func (d *Dispatcher) handleSendSuccess(ctx context.Context, c store.JobClaim, campaign domain.Campaign, lead domain.Lead, tmpl domain.Template, messageID string) {
	job := c.Job()
	now := d.clock.Now()
	if err := c.MarkSent(ctx, now, messageID); err != nil {
		logger.Error("dispatcher: mark sent failed", "job_id", job.ID, "error", err.Error())
		d.abort(c, "mark sent")
		return
	}

	if lead.Status == domain.LeadPending {
		if _, err := c.UpdateLeadStatus(ctx, lead.ID, []domain.LeadStatus{domain.LeadPending}, domain.LeadContacted); err != nil {
			logger.Error("dispatcher: transition lead to contacted failed", "lead_id", lead.ID, "error", err.Error())
		}
	}

	next, err := c.LoadTemplate(ctx, job.CampaignID, job.StepNumber+1)
	if err == nil {
		nextAt := scheduler.NextScheduledAt(next.StepNumber, now, now, now, time.Duration(next.DelayMinutes)*time.Minute)
		if _, err := c.CreateJob(ctx, job.CampaignID, job.LeadID, next.StepNumber, nextAt); err != nil {
			logger.Error("dispatcher: create next job failed", "job_id", job.ID, "error", err.Error())
		}
	} // else: no further step; lead will be swept up by campaign-completion check

	if err := c.Commit(); err != nil {
		logger.Error("dispatcher: commit send failed", "job_id", job.ID, "error", err.Error())
		return
	}
	atomic.AddUint64(&d.sent, 1)
}

func (d *Dispatcher) handleSendFailure(ctx context.Context, c store.JobClaim, transient bool, reason string) {
	job := c.Job()

	if transient && job.Attempts < d.cfg.MaxAttempts {
		nextAt := scheduler.NextRetryAt(d.clock.Now(), job.Attempts)
		if err := c.RescheduleForRetry(ctx, nextAt, reason); err != nil {
			logger.Error("dispatcher: reschedule for retry failed", "job_id", job.ID, "error", err.Error())
			d.abort(c, "reschedule for retry")
			return
		}
		if err := c.Commit(); err != nil {
			logger.Error("dispatcher: commit reschedule failed", "job_id", job.ID, "error", err.Error())
		}
		return
	}

	if err := c.MarkFailed(ctx, reason); err != nil {
		logger.Error("dispatcher: mark failed failed", "job_id", job.ID, "error", err.Error())
		d.abort(c, "mark failed")
		return
	}

	hasSent, err := c.LeadHasSentJob(ctx, job.LeadID)
	if err != nil {
		logger.Error("dispatcher: check lead sent history failed", "lead_id", job.LeadID, "error", err.Error())
		d.abort(c, "check lead sent history")
		return
	}
	if !hasSent {
		if _, err := c.UpdateLeadStatus(ctx, job.LeadID,
			[]domain.LeadStatus{domain.LeadPending, domain.LeadContacted}, domain.LeadFailed); err != nil {
			logger.Error("dispatcher: transition lead to failed failed", "lead_id", job.LeadID, "error", err.Error())
		}
	}

	if err := c.Commit(); err != nil {
		logger.Error("dispatcher: commit fail failed", "job_id", job.ID, "error", err.Error())
		return
	}
	atomic.AddUint64(&d.failed, 1)
}

func (d *Dispatcher) maybeCompleteCampaign(ctx context.Context, campaignID string) {
	exhausted, err := d.store.CampaignIsExhausted(ctx, campaignID)
	if err != nil {
		logger.Error("dispatcher: check campaign exhausted failed", "campaign_id", campaignID, "error", err.Error())
		return
	}
	if !exhausted {
		return
	}
	if _, err := d.store.UpdateCampaignStatus(ctx, campaignID,
		[]domain.CampaignStatus{domain.CampaignActive}, domain.CampaignCompleted, nil); err != nil {
		logger.Error("dispatcher: complete campaign failed", "campaign_id", campaignID, "error", err.Error())
	}
}
