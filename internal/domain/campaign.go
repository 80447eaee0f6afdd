package domain

import "time"

// CampaignStatus enumerates the lifecycle states of a campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
)

// Campaign is a named sequence of templated emails owned by one user,
// targeting a set of leads.
type Campaign struct {
	ID          string         `json:"id" db:"id"`
	OwnerUserID string         `json:"owner_user_id" db:"owner_user_id"`
	Name        string         `json:"name" db:"name"`
	Pitch       string         `json:"pitch" db:"pitch"`
	Tone        string         `json:"tone" db:"tone"`
	Status      CampaignStatus `json:"status" db:"status"`
	StartTime   *time.Time     `json:"start_time" db:"start_time"`
	Tags        []string       `json:"tags" db:"tags"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether the campaign is COMPLETED and so can no longer
// transition to any other status.
func (c *Campaign) IsTerminal() bool {
	return c.Status == CampaignCompleted
}

// CanLaunch reports whether Launch is valid from the campaign's current status.
func (c *Campaign) CanLaunch() bool {
	return c.Status == CampaignDraft
}

// CanPause reports whether Pause is valid from the campaign's current status.
func (c *Campaign) CanPause() bool {
	return c.Status == CampaignActive
}

// CanResume reports whether Resume is valid from the campaign's current status.
func (c *Campaign) CanResume() bool {
	return c.Status == CampaignPaused
}

// CanDelete reports whether Delete is valid from the campaign's current status.
func (c *Campaign) CanDelete() bool {
	return c.Status == CampaignDraft
}
