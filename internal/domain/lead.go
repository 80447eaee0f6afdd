package domain

import "time"

// LeadStatus enumerates the states a lead moves through during a campaign.
type LeadStatus string

const (
	LeadPending   LeadStatus = "pending"
	LeadContacted LeadStatus = "contacted"
	LeadReplied   LeadStatus = "replied"
	LeadFailed    LeadStatus = "failed"
)

// Lead is one recipient (email + optional name/company) attached to one campaign.
type Lead struct {
	ID         string     `json:"id" db:"id"`
	CampaignID string     `json:"campaign_id" db:"campaign_id"`
	Email      string     `json:"email" db:"email"`
	FirstName  string     `json:"first_name" db:"first_name"`
	Company    string     `json:"company" db:"company"`
	Status     LeadStatus `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether no further sends are permitted for this lead.
func (l *Lead) IsTerminal() bool {
	return l.Status == LeadReplied || l.Status == LeadFailed
}
