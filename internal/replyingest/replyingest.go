// Package replyingest implements the inbound webhook path: authenticating
// a provider callback, correlating it to a lead via its message-id, and
// transitioning that lead out of the active send path.
package replyingest

import (
	"context"
	"net/http"

	"github.com/outreachcore/campaign-engine/internal/domain"
	"github.com/outreachcore/campaign-engine/internal/logger"
	"github.com/outreachcore/campaign-engine/internal/store"
	"github.com/outreachcore/campaign-engine/internal/transport"
)

// Ingestor accepts inbound reply/bounce webhooks and applies their effect
// to the matching lead, idempotently.
type Ingestor struct {
	store     store.Store
	transport transport.EmailTransport
}

// New builds an Ingestor backed by the given store and transport. The
// transport supplies VerifyInbound/ParseInbound; Send is unused here.
func New(s store.Store, tr transport.EmailTransport) *Ingestor {
	return &Ingestor{store: s, transport: tr}
}

// Authenticate reports whether the inbound request carries valid
// credentials for the configured transport.
func (i *Ingestor) Authenticate(r *http.Request) bool {
	return i.transport.VerifyInbound(r)
}

// Ingest parses and applies one inbound webhook request. It always returns
// nil for a well-formed, authenticated request with no matching lead (so
// the provider doesn't retry-storm), logging instead. The errors it returns
// are parse failures and store errors from applying the reply or bounce;
// callers choose the response (the HTTP handler answers 200 to both).
func (i *Ingestor) Ingest(ctx context.Context, r *http.Request) error {
	msg, err := i.transport.ParseInbound(r)
	if err != nil {
		logger.Warn("replyingest: parse inbound failed", "error", err.Error())
		return err
	}

	if msg.InReplyTo == "" {
		logger.Info("replyingest: inbound message has no correlatable message-id, ignoring")
		return nil
	}

	lead, job, err := i.store.FindLeadByMessageID(ctx, msg.InReplyTo)
	if err != nil {
		logger.Info("replyingest: no lead found for message-id, ignoring", "message_id", msg.InReplyTo)
		return nil
	}

	if msg.Bounced {
		return i.handleBounce(ctx, lead, job)
	}
	return i.handleReply(ctx, lead)
}

// handleReply transitions a non-terminal lead to REPLIED and cancels its
// pending jobs. Replaying the same webhook is a no-op: UpdateLeadStatus's
// compare-and-swap only succeeds once.
func (i *Ingestor) handleReply(ctx context.Context, lead domain.Lead) error {
	ok, err := i.store.UpdateLeadStatus(ctx, lead.ID,
		[]domain.LeadStatus{domain.LeadPending, domain.LeadContacted}, domain.LeadReplied)
	if err != nil {
		return err
	}
	if !ok {
		logger.Info("replyingest: lead already terminal, no-op", "lead_id", lead.ID)
		return nil
	}
	if err := i.store.CancelPendingJobsForLead(ctx, lead.ID); err != nil {
		return err
	}
	logger.Info("replyingest: lead marked replied", "lead_id", lead.ID)
	return nil
}

// handleBounce fails the lead only if no other job for it has already
// succeeded — a bounce on a later step shouldn't retroactively undo an
// earlier successful contact.
func (i *Ingestor) handleBounce(ctx context.Context, lead domain.Lead, _ domain.Job) error {
	hasSent, err := i.store.LeadHasSentJob(ctx, lead.ID)
	if err != nil {
		return err
	}
	if hasSent {
		logger.Info("replyingest: bounce ignored, lead has a prior successful send", "lead_id", lead.ID)
		return nil
	}

	ok, err := i.store.UpdateLeadStatus(ctx, lead.ID,
		[]domain.LeadStatus{domain.LeadPending, domain.LeadContacted}, domain.LeadFailed)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return i.store.CancelPendingJobsForLead(ctx, lead.ID)
}
