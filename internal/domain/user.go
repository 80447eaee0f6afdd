package domain

import "time"

// User owns campaigns and supplies the signature appended to every send.
type User struct {
	ID               string    `json:"id" db:"id"`
	Email            string    `json:"email" db:"email"`
	SignatureHTML    string    `json:"signature_html" db:"signature_html"`
	ProfileCompleted bool      `json:"profile_completed" db:"profile_completed"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
