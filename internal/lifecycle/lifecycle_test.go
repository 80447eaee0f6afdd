package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outreachcore/campaign-engine/internal/clock"
	"github.com/outreachcore/campaign-engine/internal/domain"
	"github.com/outreachcore/campaign-engine/internal/store"
	"github.com/outreachcore/campaign-engine/internal/xerrors"
)

type fakeStore struct {
	campaign         domain.Campaign
	leads            []domain.Lead
	templates        map[int]domain.Template
	createdJobs      []domain.Job
	createdCampaigns []domain.Campaign
	createdTemplates []domain.Template
	deletedCampaign  string
}

func newFakeStore(status domain.CampaignStatus) *fakeStore {
	return &fakeStore{
		campaign:  domain.Campaign{ID: "c1", Status: status},
		templates: map[int]domain.Template{},
	}
}

func (f *fakeStore) ClaimNextJob(ctx context.Context, now time.Time) (store.JobClaim, error) {
	return nil, nil
}
func (f *fakeStore) CreateJob(ctx context.Context, campaignID, leadID string, step int, scheduledAt time.Time) (domain.Job, error) {
	j := domain.Job{ID: "job-" + leadID, CampaignID: campaignID, LeadID: leadID, StepNumber: step, ScheduledAt: scheduledAt}
	f.createdJobs = append(f.createdJobs, j)
	return j, nil
}
func (f *fakeStore) CancelPendingJobsForLead(ctx context.Context, leadID string) error { return nil }
func (f *fakeStore) ResetJobForRetry(ctx context.Context, jobID string, now time.Time) error {
	return nil
}
func (f *fakeStore) LoadCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	return f.campaign, nil
}
func (f *fakeStore) LoadLead(ctx context.Context, id string) (domain.Lead, error) {
	return domain.Lead{}, nil
}
func (f *fakeStore) LoadTemplate(ctx context.Context, campaignID string, step int) (domain.Template, error) {
	t, ok := f.templates[step]
	if !ok {
		return domain.Template{}, errors.New("not found")
	}
	return t, nil
}
func (f *fakeStore) LoadUser(ctx context.Context, id string) (domain.User, error) {
	return domain.User{}, nil
}
func (f *fakeStore) ListTemplates(ctx context.Context, campaignID string) ([]domain.Template, error) {
	var out []domain.Template
	for _, t := range f.templates {
		out = append(out, t)
	}
	return out, nil
}
func (f *fakeStore) ListNonTerminalLeads(ctx context.Context, campaignID string) ([]domain.Lead, error) {
	return f.leads, nil
}
func (f *fakeStore) ListJobHistory(ctx context.Context, leadID string) ([]domain.HistoryEntry, error) {
	return nil, nil
}
func (f *fakeStore) LeadHasSentJob(ctx context.Context, leadID string) (bool, error) {
	return false, nil
}
func (f *fakeStore) CampaignIsExhausted(ctx context.Context, campaignID string) (bool, error) {
	return false, nil
}
func (f *fakeStore) UpdateLeadStatus(ctx context.Context, leadID string, from []domain.LeadStatus, to domain.LeadStatus) (bool, error) {
	return true, nil
}
func (f *fakeStore) UpdateCampaignStatus(ctx context.Context, campaignID string, from []domain.CampaignStatus, to domain.CampaignStatus, startTime *time.Time) (bool, error) {
	for _, s := range from {
		if f.campaign.Status == s {
			f.campaign.Status = to
			if startTime != nil {
				f.campaign.StartTime = startTime
			}
			return true, nil
		}
	}
	return false, nil
}
func (f *fakeStore) DeleteCampaign(ctx context.Context, campaignID string) error {
	if f.campaign.Status != domain.CampaignDraft {
		return xerrors.InvalidState(xerrors.CodeCampaignInvalidState, "campaign is not in DRAFT status")
	}
	f.deletedCampaign = campaignID
	return nil
}
func (f *fakeStore) FindLeadByMessageID(ctx context.Context, messageID string) (domain.Lead, domain.Job, error) {
	return domain.Lead{}, domain.Job{}, errors.New("not found")
}
func (f *fakeStore) CreateCampaign(ctx context.Context, c domain.Campaign) (domain.Campaign, error) {
	c.ID = "dup-campaign"
	f.createdCampaigns = append(f.createdCampaigns, c)
	return c, nil
}
func (f *fakeStore) CreateLead(ctx context.Context, l domain.Lead) (domain.Lead, error) { return l, nil }
func (f *fakeStore) CreateTemplate(ctx context.Context, t domain.Template) (domain.Template, error) {
	f.createdTemplates = append(f.createdTemplates, t)
	return t, nil
}
func (f *fakeStore) CreateUser(ctx context.Context, u domain.User) (domain.User, error) { return u, nil }

func TestLaunch_RequiresLeadsAndStepOneTemplate(t *testing.T) {
	fs := newFakeStore(domain.CampaignDraft)
	m := New(fs, clock.NewMock(time.Now()), nil)

	_, err := m.Launch(context.Background(), "c1", nil)
	require.Error(t, err)
	var xe *xerrors.Error
	require.ErrorAs(t, err, &xe)
	assert.Equal(t, xerrors.CodeCampaignNoLeads, xe.Code)
}

func TestLaunch_CreatesStepOneJobForEveryLead(t *testing.T) {
	fs := newFakeStore(domain.CampaignDraft)
	fs.leads = []domain.Lead{{ID: "l1"}, {ID: "l2"}}
	fs.templates[1] = domain.Template{StepNumber: 1, Subject: "Hi"}
	m := New(fs, clock.NewMock(time.Now()), nil)

	campaign, err := m.Launch(context.Background(), "c1", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignActive, campaign.Status)
	assert.Len(t, fs.createdJobs, 2)
}

func TestLaunch_RejectsNonDraftCampaign(t *testing.T) {
	fs := newFakeStore(domain.CampaignActive)
	fs.leads = []domain.Lead{{ID: "l1"}}
	fs.templates[1] = domain.Template{StepNumber: 1}
	m := New(fs, clock.NewMock(time.Now()), nil)

	_, err := m.Launch(context.Background(), "c1", nil)
	require.Error(t, err)
}

func TestPauseThenResume(t *testing.T) {
	fs := newFakeStore(domain.CampaignActive)
	m := New(fs, clock.NewMock(time.Now()), nil)

	c, err := m.Pause(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignPaused, c.Status)

	c, err = m.Resume(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignActive, c.Status)
}

func TestPause_RejectsWhenNotActive(t *testing.T) {
	fs := newFakeStore(domain.CampaignDraft)
	m := New(fs, clock.NewMock(time.Now()), nil)

	_, err := m.Pause(context.Background(), "c1")
	require.Error(t, err)
}

func TestDelete_OnlyFromDraft(t *testing.T) {
	fs := newFakeStore(domain.CampaignActive)
	m := New(fs, clock.NewMock(time.Now()), nil)

	err := m.Delete(context.Background(), "c1")
	require.Error(t, err)
	assert.Empty(t, fs.deletedCampaign)
}

func TestDelete_RemovesDraftCampaign(t *testing.T) {
	fs := newFakeStore(domain.CampaignDraft)
	m := New(fs, clock.NewMock(time.Now()), nil)

	err := m.Delete(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", fs.deletedCampaign)
}

func TestDuplicate_CopiesTemplatesNotLeads(t *testing.T) {
	fs := newFakeStore(domain.CampaignDraft)
	fs.campaign.Name = "Original"
	fs.templates[1] = domain.Template{StepNumber: 1, Subject: "Hi"}
	fs.leads = []domain.Lead{{ID: "l1"}}
	m := New(fs, clock.NewMock(time.Now()), nil)

	dup, err := m.Duplicate(context.Background(), "c1", "Copy")
	require.NoError(t, err)
	assert.Equal(t, "Copy", dup.Name)
	assert.Equal(t, domain.CampaignDraft, dup.Status)
	assert.Len(t, fs.createdTemplates, 1)
}
