package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash      PaymentMethod = "cash"
	PaymentMethodTransfer  PaymentMethod = "transfer"
	PaymentMethodPromptPay PaymentMethod = "promptpay"
	PaymentMethodCard      PaymentMethod = "card"
)

var validPaymentMethods = map[PaymentMethod]bool{
	PaymentMethodCash:      true,
	PaymentMethodTransfer:  true,
	PaymentMethodPromptPay: true,
	PaymentMethodCard:      true,
}

// IsValid returns true if the payment method is one of the defined constants
func (m PaymentMethod) IsValid() bool {
	return validPaymentMethods[m]
}

// String returns the string representation of the payment method
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment is one append-only payment record against an invoice.
type Payment struct {
	ID        int64           `json:"id"`
	InvoiceID int64           `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	PaidAt    time.Time       `json:"paid_at"`
	Note      string          `json:"note"`
	ReceiptNo string          `json:"receipt_no"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewPayment validates the inputs and constructs a payment. The receipt
// number is assigned by the ledger on creation, not here.
func NewPayment(invoiceID int64, amount decimal.Decimal, method PaymentMethod, paidAt time.Time, note string) (*Payment, error) {
	if amount.Sign() <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "payment amount must be greater than zero"}
	}
	if !method.IsValid() {
		return nil, &ValidationError{Field: "method", Message: "unknown payment method: " + string(method)}
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	return &Payment{
		InvoiceID: invoiceID,
		Amount:    amount,
		Method:    method,
		PaidAt:    paidAt,
		Note:      note,
	}, nil
}
