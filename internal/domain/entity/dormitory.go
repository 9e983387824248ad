package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dormitory holds per-building billing configuration. The late-fee accrual
// reads LateFeePerDay from here at view time.
type Dormitory struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	LateFeePerDay decimal.Decimal `json:"late_fee_per_day"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
