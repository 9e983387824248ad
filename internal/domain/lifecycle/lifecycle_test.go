package lifecycle

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name     string
		balance  string
		expected State
	}{
		{"positive balance", "360", StateUnsettled},
		{"fractional remainder", "0.01", StateUnsettled},
		{"zero balance", "0", StateSettled},
		{"overpayment", "-140", StateSettled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance, _ := decimal.NewFromString(tt.balance)
			if got := Derive(balance); got != tt.expected {
				t.Errorf("Derive(%s) = %s, want %s", tt.balance, got, tt.expected)
			}
		})
	}
}

func TestPermitted(t *testing.T) {
	tests := []struct {
		state    State
		action   Action
		expected bool
	}{
		{StateUnsettled, ActionAddItem, true},
		{StateUnsettled, ActionEditItem, true},
		{StateUnsettled, ActionDeleteItem, true},
		{StateUnsettled, ActionRecordPayment, true},
		{StateUnsettled, ActionDeleteInvoice, true},
		{StateUnsettled, ActionSendReminder, true},
		{StateUnsettled, ActionDeletePayment, true},
		{StateUnsettled, ActionView, true},
		{StateUnsettled, ActionPrint, true},

		{StateSettled, ActionAddItem, false},
		{StateSettled, ActionEditItem, false},
		{StateSettled, ActionDeleteItem, false},
		{StateSettled, ActionRecordPayment, false},
		{StateSettled, ActionDeleteInvoice, false},
		{StateSettled, ActionSendReminder, false},
		{StateSettled, ActionDeletePayment, true},
		{StateSettled, ActionView, true},
		{StateSettled, ActionPrint, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state)+"/"+string(tt.action), func(t *testing.T) {
			if got := Permitted(tt.state, tt.action); got != tt.expected {
				t.Errorf("Permitted(%s, %s) = %v, want %v", tt.state, tt.action, got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"unsettled", StateUnsettled, true},
		{"settled", StateSettled, true},
		{"invalid state", State("PENDING"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}
