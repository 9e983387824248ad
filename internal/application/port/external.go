package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/pkamnerd/dorm-billing/internal/domain/entity"
)

// Reminder carries everything the notifier needs to compose an overdue
// notice without reaching back into the ledger.
type Reminder struct {
	Invoice  *entity.Invoice
	Balance  decimal.Decimal
	LateDays int
	LateFee  decimal.Decimal
}

// ReminderNotifier delivers overdue reminders to tenants
type ReminderNotifier interface {
	SendReminder(ctx context.Context, reminder *Reminder) error
}
