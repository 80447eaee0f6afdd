package replyingest

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outreachcore/campaign-engine/internal/domain"
	"github.com/outreachcore/campaign-engine/internal/store"
	"github.com/outreachcore/campaign-engine/internal/transport"
)

type fakeStore struct {
	lead           domain.Lead
	job            domain.Job
	found          bool
	hasSent        bool
	cancelledLead  string
	updateCalls    int
}

func (f *fakeStore) ClaimNextJob(ctx context.Context, now time.Time) (store.JobClaim, error) {
	return nil, nil
}
func (f *fakeStore) CreateJob(ctx context.Context, campaignID, leadID string, step int, scheduledAt time.Time) (domain.Job, error) {
	return domain.Job{}, nil
}
func (f *fakeStore) CancelPendingJobsForLead(ctx context.Context, leadID string) error {
	f.cancelledLead = leadID
	return nil
}
func (f *fakeStore) ResetJobForRetry(ctx context.Context, jobID string, now time.Time) error {
	return nil
}
func (f *fakeStore) LoadCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	return domain.Campaign{}, nil
}
func (f *fakeStore) LoadLead(ctx context.Context, id string) (domain.Lead, error) {
	return domain.Lead{}, nil
}
func (f *fakeStore) LoadTemplate(ctx context.Context, campaignID string, step int) (domain.Template, error) {
	return domain.Template{}, nil
}
func (f *fakeStore) LoadUser(ctx context.Context, id string) (domain.User, error) {
	return domain.User{}, nil
}
func (f *fakeStore) ListTemplates(ctx context.Context, campaignID string) ([]domain.Template, error) {
	return nil, nil
}
func (f *fakeStore) ListNonTerminalLeads(ctx context.Context, campaignID string) ([]domain.Lead, error) {
	return nil, nil
}
func (f *fakeStore) ListJobHistory(ctx context.Context, leadID string) ([]domain.HistoryEntry, error) {
	return nil, nil
}
func (f *fakeStore) LeadHasSentJob(ctx context.Context, leadID string) (bool, error) {
	return f.hasSent, nil
}
func (f *fakeStore) CampaignIsExhausted(ctx context.Context, campaignID string) (bool, error) {
	return false, nil
}
func (f *fakeStore) UpdateLeadStatus(ctx context.Context, leadID string, from []domain.LeadStatus, to domain.LeadStatus) (bool, error) {
	f.updateCalls++
	for _, s := range from {
		if f.lead.Status == s {
			f.lead.Status = to
			return true, nil
		}
	}
	return false, nil
}
func (f *fakeStore) UpdateCampaignStatus(ctx context.Context, campaignID string, from []domain.CampaignStatus, to domain.CampaignStatus, startTime *time.Time) (bool, error) {
	return true, nil
}
func (f *fakeStore) DeleteCampaign(ctx context.Context, campaignID string) error { return nil }
func (f *fakeStore) FindLeadByMessageID(ctx context.Context, messageID string) (domain.Lead, domain.Job, error) {
	if !f.found {
		return domain.Lead{}, domain.Job{}, errors.New("not found")
	}
	return f.lead, f.job, nil
}
func (f *fakeStore) CreateCampaign(ctx context.Context, c domain.Campaign) (domain.Campaign, error) {
	return c, nil
}
func (f *fakeStore) CreateLead(ctx context.Context, l domain.Lead) (domain.Lead, error) { return l, nil }
func (f *fakeStore) CreateTemplate(ctx context.Context, t domain.Template) (domain.Template, error) {
	return t, nil
}
func (f *fakeStore) CreateUser(ctx context.Context, u domain.User) (domain.User, error) { return u, nil }

type fakeTransport struct {
	verify bool
	msg    transport.InboundMessage
	err    error
}

func (t *fakeTransport) Send(ctx context.Context, from, replyTo, to, subject, htmlBody string, headers transport.Headers) (string, error) {
	return "", nil
}
func (t *fakeTransport) VerifyInbound(r *http.Request) bool { return t.verify }
func (t *fakeTransport) ParseInbound(r *http.Request) (transport.InboundMessage, error) {
	return t.msg, t.err
}

func newRequest() *http.Request {
	return &http.Request{}
}

func TestIngest_ReplyTransitionsLeadAndCancelsPendingJobs(t *testing.T) {
	fs := &fakeStore{found: true, lead: domain.Lead{ID: "l1", Status: domain.LeadContacted}}
	tr := &fakeTransport{msg: transport.InboundMessage{InReplyTo: "msg-1"}}
	ing := New(fs, tr)

	err := ing.Ingest(context.Background(), newRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.LeadReplied, fs.lead.Status)
	assert.Equal(t, "l1", fs.cancelledLead)
}

func TestIngest_ReplayIsIdempotent(t *testing.T) {
	fs := &fakeStore{found: true, lead: domain.Lead{ID: "l1", Status: domain.LeadContacted}}
	tr := &fakeTransport{msg: transport.InboundMessage{InReplyTo: "msg-1"}}
	ing := New(fs, tr)

	require.NoError(t, ing.Ingest(context.Background(), newRequest()))
	require.NoError(t, ing.Ingest(context.Background(), newRequest()))
	assert.Equal(t, domain.LeadReplied, fs.lead.Status)
	assert.Equal(t, 2, fs.updateCalls)
}

func TestIngest_NoMatchingLeadReturnsNilAnd200(t *testing.T) {
	fs := &fakeStore{found: false}
	tr := &fakeTransport{msg: transport.InboundMessage{InReplyTo: "msg-unknown"}}
	ing := New(fs, tr)

	err := ing.Ingest(context.Background(), newRequest())
	require.NoError(t, err)
}

func TestIngest_BounceFailsLeadWhenNoPriorSend(t *testing.T) {
	fs := &fakeStore{found: true, hasSent: false, lead: domain.Lead{ID: "l1", Status: domain.LeadPending}}
	tr := &fakeTransport{msg: transport.InboundMessage{InReplyTo: "msg-1", Bounced: true}}
	ing := New(fs, tr)

	err := ing.Ingest(context.Background(), newRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.LeadFailed, fs.lead.Status)
}

func TestIngest_BounceIgnoredWhenPriorSendExists(t *testing.T) {
	fs := &fakeStore{found: true, hasSent: true, lead: domain.Lead{ID: "l1", Status: domain.LeadContacted}}
	tr := &fakeTransport{msg: transport.InboundMessage{InReplyTo: "msg-1", Bounced: true}}
	ing := New(fs, tr)

	err := ing.Ingest(context.Background(), newRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.LeadContacted, fs.lead.Status)
}
