package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event raised by the invoice ledger. Collaborators
// (receipt printer, reminder notifier, exporters) subscribe to these instead
// of embedding ledger logic.
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	DormID        int64                  `json:"dorm_id"`
	InvoiceID     int64                  `json:"invoice_id"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// New creates a domain event with generated ID and timestamp
func New(eventType Type, dormID, invoiceID int64, payload map[string]interface{}) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		DormID:        dormID,
		InvoiceID:     invoiceID,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: uuid.NewString(),
	}
}

// NewWithCorrelation creates an event linked to an existing correlation chain
func NewWithCorrelation(eventType Type, dormID, invoiceID int64, payload map[string]interface{}, correlationID string) *Event {
	e := New(eventType, dormID, invoiceID, payload)
	e.CorrelationID = correlationID
	return e
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetPayloadInt retrieves an int64 value from the payload
func (e *Event) GetPayloadInt(key string) int64 {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case float64:
			return int64(v)
		}
	}
	return 0
}
