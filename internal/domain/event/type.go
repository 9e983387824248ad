package event

// Type identifies the type of domain event
type Type string

const (
	TypePaymentRecorded Type = "payment.recorded"
	TypePaymentDeleted  Type = "payment.deleted"
	TypeItemChanged     Type = "invoice.item_changed"
	TypeInvoiceSettled  Type = "invoice.settled"
	TypeInvoiceReopened Type = "invoice.reopened"
	TypeInvoiceDeleted  Type = "invoice.deleted"
	TypeReminderSent    Type = "invoice.reminder_sent"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypePaymentRecorded,
		TypePaymentDeleted,
		TypeItemChanged,
		TypeInvoiceSettled,
		TypeInvoiceReopened,
		TypeInvoiceDeleted,
		TypeReminderSent:
		return true
	default:
		return false
	}
}
