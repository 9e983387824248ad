package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkamnerd/dorm-billing/internal/domain/entity"
)

// LateDays returns the number of whole days asOf is past the due date, at
// day granularity: both instants are truncated to their calendar date, so
// an invoice is never late on its due date itself.
func LateDays(dueDate, asOf time.Time) int {
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	now := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	days := int(now.Sub(due).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// AccrueLateFee derives the display-only late fee for an invoice. It is
// zero unless the balance is still positive and asOf is past the due date.
// The fee is never persisted here; an external billing job materializes it.
func AccrueLateFee(balance decimal.Decimal, chargePerDay decimal.Decimal, dueDate, asOf time.Time) (int, decimal.Decimal) {
	if balance.Sign() <= 0 {
		return 0, decimal.Zero
	}
	days := LateDays(dueDate, asOf)
	if days == 0 || chargePerDay.Sign() <= 0 {
		return days, decimal.Zero
	}
	return days, chargePerDay.Mul(decimal.NewFromInt(int64(days)))
}

// LateFeeItem synthesizes the system-managed late_fee line item layered into
// the invoice view. ID stays zero: the row exists for display only.
func LateFeeItem(invoiceID int64, lateDays int, chargePerDay decimal.Decimal) *entity.LineItem {
	return &entity.LineItem{
		InvoiceID:   invoiceID,
		Type:        entity.ItemTypeLateFee,
		Description: "Late fee",
		UnitCount:   decimal.NewFromInt(int64(lateDays)),
		Rate:        chargePerDay,
		Amount:      chargePerDay.Mul(decimal.NewFromInt(int64(lateDays))),
	}
}
