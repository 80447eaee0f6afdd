// Package lifecycle implements campaign state transitions: Launch, Pause,
// Resume, Delete, and Duplicate.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/outreachcore/campaign-engine/internal/clock"
	"github.com/outreachcore/campaign-engine/internal/distlock"
	"github.com/outreachcore/campaign-engine/internal/domain"
	"github.com/outreachcore/campaign-engine/internal/logger"
	"github.com/outreachcore/campaign-engine/internal/scheduler"
	"github.com/outreachcore/campaign-engine/internal/store"
	"github.com/outreachcore/campaign-engine/internal/xerrors"
)

// LockTTL bounds how long a lifecycle-transition lock may be held, guarding
// against a crashed holder wedging future transitions.
const LockTTL = 10 * time.Second

// LockFactory builds the distributed lock used to serialize a single
// campaign's lifecycle transitions across replicas. Exists so tests and
// single-process deployments can skip Redis/Postgres advisory locks.
type LockFactory func(key string) distlock.DistLock

// Manager enforces campaign lifecycle transitions per §4.5.
type Manager struct {
	store store.Store
	clock clock.Clock
	locks LockFactory
}

// New builds a Manager. If locks is nil, transitions rely solely on the
// store's atomic compare-and-swap guard (correct but not contention-free
// across replicas).
func New(s store.Store, c clock.Clock, locks LockFactory) *Manager {
	return &Manager{store: s, clock: c, locks: locks}
}

func (m *Manager) withLock(ctx context.Context, campaignID string, fn func() error) error {
	if m.locks == nil {
		return fn()
	}
	lock := m.locks(distlock.CampaignKey(campaignID))
	ctx, cancel := context.WithTimeout(ctx, LockTTL)
	defer cancel()

	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lifecycle: acquire lock: %w", err)
	}
	if !acquired {
		return xerrors.InvalidState(xerrors.CodeCampaignInvalidState, "campaign is being modified concurrently, try again")
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			logger.Warn("lifecycle: release lock failed", "campaign_id", campaignID, "error", err.Error())
		}
	}()
	return fn()
}

// Launch requires at least one Lead and one step-1 Template. It transitions
// the campaign DRAFT→ACTIVE, sets start_time, and creates a step-1 Job for
// every non-terminal Lead. The distributed lock only avoids wasted work
// across replicas; the authoritative guard is the store's atomic
// status-IN(...) compare-and-swap.
func (m *Manager) Launch(ctx context.Context, campaignID string, startTime *time.Time) (domain.Campaign, error) {
	var result domain.Campaign
	err := m.withLock(ctx, campaignID, func() error {
		campaign, err := m.store.LoadCampaign(ctx, campaignID)
		if err != nil {
			return err
		}
		if !campaign.CanLaunch() {
			return xerrors.InvalidState(xerrors.CodeCampaignInvalidState,
				fmt.Sprintf("cannot launch campaign in status %q", campaign.Status))
		}

		leads, err := m.store.ListNonTerminalLeads(ctx, campaignID)
		if err != nil {
			return err
		}
		if len(leads) == 0 {
			return xerrors.New(xerrors.CodeCampaignNoLeads, "campaign has no leads to launch")
		}

		step1, err := m.store.LoadTemplate(ctx, campaignID, 1)
		if err != nil {
			return xerrors.New(xerrors.CodeCampaignNoTemplate, "campaign has no step-1 template")
		}

		now := m.clock.Now()
		anchor := now
		if startTime != nil {
			anchor = *startTime
		}

		ok, err := m.store.UpdateCampaignStatus(ctx, campaignID,
			[]domain.CampaignStatus{domain.CampaignDraft}, domain.CampaignActive, &anchor)
		if err != nil {
			return err
		}
		if !ok {
			return xerrors.InvalidState(xerrors.CodeCampaignInvalidState, "campaign launch raced with a concurrent transition")
		}

		scheduledAt := scheduler.NextScheduledAt(step1.StepNumber, anchor, now, time.Time{}, 0)
		for _, lead := range leads {
			if _, err := m.store.CreateJob(ctx, campaignID, lead.ID, 1, scheduledAt); err != nil {
				return fmt.Errorf("lifecycle: create step-1 job for lead %s: %w", lead.ID, err)
			}
		}

		result, err = m.store.LoadCampaign(ctx, campaignID)
		return err
	})
	return result, err
}

// Pause sets status=PAUSED. No job rows are mutated; the dispatcher's
// pre-send check is what actually stops sends, per §4.5/scenario 3.
func (m *Manager) Pause(ctx context.Context, campaignID string) (domain.Campaign, error) {
	return m.transitionStatus(ctx, campaignID, []domain.CampaignStatus{domain.CampaignActive}, domain.CampaignPaused, nil)
}

// Resume sets status=ACTIVE. Overdue PENDING jobs become immediately
// eligible; their scheduled_at is never altered.
func (m *Manager) Resume(ctx context.Context, campaignID string) (domain.Campaign, error) {
	return m.transitionStatus(ctx, campaignID, []domain.CampaignStatus{domain.CampaignPaused}, domain.CampaignActive, nil)
}

func (m *Manager) transitionStatus(ctx context.Context, campaignID string, from []domain.CampaignStatus, to domain.CampaignStatus, startTime *time.Time) (domain.Campaign, error) {
	var result domain.Campaign
	err := m.withLock(ctx, campaignID, func() error {
		ok, err := m.store.UpdateCampaignStatus(ctx, campaignID, from, to, startTime)
		if err != nil {
			return err
		}
		if !ok {
			current, loadErr := m.store.LoadCampaign(ctx, campaignID)
			if loadErr != nil {
				return loadErr
			}
			return xerrors.InvalidState(xerrors.CodeCampaignInvalidState,
				fmt.Sprintf("cannot transition campaign from %q to %q", current.Status, to))
		}
		result, err = m.store.LoadCampaign(ctx, campaignID)
		return err
	})
	return result, err
}

// Delete is only permitted from DRAFT. It removes the campaign row outright;
// the schema's ON DELETE CASCADE takes its leads, templates, and jobs with
// it. Store.DeleteCampaign re-checks the DRAFT guard itself (the lock here
// only avoids wasted work across replicas), so a campaign launched between
// our CanDelete check and the DELETE still fails instead of silently
// removing an ACTIVE campaign's data.
func (m *Manager) Delete(ctx context.Context, campaignID string) error {
	return m.withLock(ctx, campaignID, func() error {
		campaign, err := m.store.LoadCampaign(ctx, campaignID)
		if err != nil {
			return err
		}
		if !campaign.CanDelete() {
			return xerrors.InvalidState(xerrors.CodeCampaignInvalidState,
				fmt.Sprintf("cannot delete campaign in status %q", campaign.Status))
		}
		return m.store.DeleteCampaign(ctx, campaignID)
	})
}

// Duplicate copies a campaign's metadata and templates into a new DRAFT
// campaign. Leads are intentionally not copied: a duplicated campaign
// starts with no recipients.
func (m *Manager) Duplicate(ctx context.Context, campaignID, newName string) (domain.Campaign, error) {
	original, err := m.store.LoadCampaign(ctx, campaignID)
	if err != nil {
		return domain.Campaign{}, err
	}

	dup := domain.Campaign{
		OwnerUserID: original.OwnerUserID,
		Name:        newName,
		Pitch:       original.Pitch,
		Tone:        original.Tone,
		Status:      domain.CampaignDraft,
		Tags:        append([]string(nil), original.Tags...),
	}
	created, err := m.store.CreateCampaign(ctx, dup)
	if err != nil {
		return domain.Campaign{}, err
	}

	templates, err := m.store.ListTemplates(ctx, campaignID)
	if err != nil {
		return domain.Campaign{}, err
	}
	for _, t := range templates {
		t.ID = ""
		t.CampaignID = created.ID
		if _, err := m.store.CreateTemplate(ctx, t); err != nil {
			return domain.Campaign{}, fmt.Errorf("lifecycle: duplicate template step %d: %w", t.StepNumber, err)
		}
	}

	return created, nil
}
