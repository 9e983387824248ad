package entity

import "time"

// Invoice represents one billing-period statement for a room/tenant.
//
// Status is a cache of the derived settlement state. It is refreshed after
// every mutation but never read for business decisions; guards and views
// always recompute from items and payments.
type Invoice struct {
	ID          int64     `json:"id"`
	DormID      int64     `json:"dorm_id"`
	Room        string    `json:"room"`
	TenantID    int64     `json:"tenant_id"`
	TenantName  string    `json:"tenant_name"`
	TenantEmail string    `json:"tenant_email"`
	Period      string    `json:"period"` // billing month, formatted as YYYY-MM
	DueDate     time.Time `json:"due_date"`
	Status      string    `json:"status"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
