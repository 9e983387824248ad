// Package billing holds the pure calculation core of the invoice ledger:
// totals, balances, late-fee accrual and receipt numbering. Everything here
// is deterministic and side-effect free; callers re-run these functions
// after every mutation instead of trusting any cached figure.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/pkamnerd/dorm-billing/internal/domain/entity"
)

// ComputeTotal sums line-item amounts into the invoice total. Discount items
// contribute -abs(amount) regardless of the stored sign, so an upstream row
// persisted with the wrong sign still reduces the total.
func ComputeTotal(items []*entity.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Type == entity.ItemTypeDiscount {
			total = total.Sub(item.Amount.Abs())
			continue
		}
		total = total.Add(item.Amount)
	}
	return total
}

// SumPayments returns the cumulative amount paid against an invoice
func SumPayments(payments []*entity.Payment) decimal.Decimal {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// ComputeBalance derives the outstanding balance: total minus payments
// received. A result <= 0 means the invoice is settled; negative balances
// are possible because overpayment is accepted, not rejected.
func ComputeBalance(total decimal.Decimal, payments []*entity.Payment) decimal.Decimal {
	return total.Sub(SumPayments(payments))
}
