// Package lifecycle models the settlement state of an invoice and the
// actions permitted in each state. The state is always derived from the
// outstanding balance; a stored status field is only ever a cache.
package lifecycle

import "github.com/shopspring/decimal"

// State represents the derived settlement state of an invoice
type State string

const (
	StateUnsettled State = "UNSETTLED"
	StateSettled   State = "SETTLED"
)

var validStates = map[State]bool{
	StateUnsettled: true,
	StateSettled:   true,
}

// Derive computes the settlement state from the outstanding balance.
// An invoice is settled iff balance <= 0; overpayment counts as settled.
func Derive(balance decimal.Decimal) State {
	if balance.Sign() <= 0 {
		return StateSettled
	}
	return StateUnsettled
}

// IsValid returns true if the state is a valid lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
