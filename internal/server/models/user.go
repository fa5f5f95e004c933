package models

import "time"

// User is owned by the external account service. The scanner reads the
// email for self scans and claims LastManualLookupAt for the quota.
type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	LastManualLookupAt *time.Time `json:"lastManualLookupAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}
