package billing

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkamnerd/dorm-billing/internal/domain/entity"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLateDays(t *testing.T) {
	due := date(2026, time.July, 5)

	tests := []struct {
		name     string
		asOf     time.Time
		expected int
	}{
		{"before due date", date(2026, time.July, 1), 0},
		{"on due date", due, 0},
		{"late evening of due date", time.Date(2026, time.July, 5, 23, 59, 0, 0, time.UTC), 0},
		{"one day past", date(2026, time.July, 6), 1},
		{"early morning counts a full day", time.Date(2026, time.July, 6, 0, 1, 0, 0, time.UTC), 1},
		{"ten days past", date(2026, time.July, 15), 10},
		{"across month boundary", date(2026, time.August, 4), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LateDays(due, tt.asOf); got != tt.expected {
				t.Errorf("LateDays() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestAccrueLateFee(t *testing.T) {
	due := date(2026, time.July, 5)
	perDay := decimal.NewFromInt(20)

	tests := []struct {
		name     string
		balance  string
		perDay   decimal.Decimal
		asOf     time.Time
		wantDays int
		wantFee  string
	}{
		{
			name:     "ten days late accrues per-day charge",
			balance:  "500",
			perDay:   perDay,
			asOf:     date(2026, time.July, 15),
			wantDays: 10,
			wantFee:  "200",
		},
		{
			name:     "no fee on due date",
			balance:  "500",
			perDay:   perDay,
			asOf:     due,
			wantDays: 0,
			wantFee:  "0",
		},
		{
			name:     "settled invoice accrues nothing",
			balance:  "0",
			perDay:   perDay,
			asOf:     date(2026, time.August, 1),
			wantDays: 0,
			wantFee:  "0",
		},
		{
			name:     "overpaid invoice accrues nothing",
			balance:  "-140",
			perDay:   perDay,
			asOf:     date(2026, time.August, 1),
			wantDays: 0,
			wantFee:  "0",
		},
		{
			name:     "dorm without late fee still reports late days",
			balance:  "500",
			perDay:   decimal.Zero,
			asOf:     date(2026, time.July, 8),
			wantDays: 3,
			wantFee:  "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance, _ := decimal.NewFromString(tt.balance)
			days, fee := AccrueLateFee(balance, tt.perDay, due, tt.asOf)
			if days != tt.wantDays {
				t.Errorf("AccrueLateFee() days = %d, want %d", days, tt.wantDays)
			}
			if fee.String() != tt.wantFee {
				t.Errorf("AccrueLateFee() fee = %s, want %s", fee, tt.wantFee)
			}
		})
	}
}

func TestLateFeeItem(t *testing.T) {
	perDay := decimal.NewFromInt(20)
	li := LateFeeItem(42, 10, perDay)

	if li.ID != 0 {
		t.Errorf("late fee item must stay unpersisted, got ID %d", li.ID)
	}
	if li.InvoiceID != 42 {
		t.Errorf("InvoiceID = %d, want 42", li.InvoiceID)
	}
	if li.Type != entity.ItemTypeLateFee {
		t.Errorf("Type = %s, want %s", li.Type, entity.ItemTypeLateFee)
	}
	if li.Amount.String() != "200" {
		t.Errorf("Amount = %s, want 200", li.Amount)
	}
	if li.Type.UserEditable() {
		t.Error("late fee item must not be user editable")
	}
}

func TestNewReceiptNumber(t *testing.T) {
	paidAt := date(2026, time.September, 1)

	no := NewReceiptNumber(paidAt)
	if !strings.HasPrefix(no, "RCP-202609-") {
		t.Errorf("NewReceiptNumber() = %s, want RCP-202609- prefix", no)
	}
	if len(no) != len("RCP-202609-")+8 {
		t.Errorf("NewReceiptNumber() = %s, want 8-char suffix", no)
	}
	if no == NewReceiptNumber(paidAt) {
		t.Error("consecutive receipt numbers must differ")
	}
}
