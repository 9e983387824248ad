package entity

import (
	"errors"
	"testing"
	"time"
)

func TestNewPayment(t *testing.T) {
	paidAt := time.Date(2026, time.July, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		amount    string
		method    PaymentMethod
		wantErr   bool
		wantField string
	}{
		{
			name:   "valid cash payment",
			amount: "3360",
			method: PaymentMethodCash,
		},
		{
			name:   "valid promptpay payment",
			amount: "0.01",
			method: PaymentMethodPromptPay,
		},
		{
			name:      "zero amount",
			amount:    "0",
			method:    PaymentMethodCash,
			wantErr:   true,
			wantField: "amount",
		},
		{
			name:      "negative amount",
			amount:    "-100",
			method:    PaymentMethodTransfer,
			wantErr:   true,
			wantField: "amount",
		},
		{
			name:      "unknown method",
			amount:    "100",
			method:    PaymentMethod("crypto"),
			wantErr:   true,
			wantField: "method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPayment(1, dec(tt.amount), tt.method, paidAt, "note")

			if tt.wantErr {
				if err == nil {
					t.Fatal("NewPayment() expected error, got nil")
				}
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("NewPayment() error = %v, want ValidationError", err)
				}
				if vErr.Field != tt.wantField {
					t.Errorf("ValidationError.Field = %s, want %s", vErr.Field, tt.wantField)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewPayment() unexpected error: %v", err)
			}
			if !p.PaidAt.Equal(paidAt) {
				t.Errorf("PaidAt = %v, want %v", p.PaidAt, paidAt)
			}
		})
	}
}

func TestNewPayment_DefaultsPaidAt(t *testing.T) {
	before := time.Now()
	p, err := NewPayment(1, dec("100"), PaymentMethodCard, time.Time{}, "")
	if err != nil {
		t.Fatalf("NewPayment() error: %v", err)
	}
	if p.PaidAt.Before(before) {
		t.Errorf("PaidAt = %v, want defaulted to now", p.PaidAt)
	}
}
