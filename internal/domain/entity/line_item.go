package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemType identifies the kind of charge or discount a line item carries
type ItemType string

const (
	ItemTypeRent     ItemType = "rent"
	ItemTypeWater    ItemType = "water"
	ItemTypeElectric ItemType = "electric"
	ItemTypeService  ItemType = "service"
	ItemTypeDiscount ItemType = "discount"
	ItemTypeLateFee  ItemType = "late_fee"
)

var validItemTypes = map[ItemType]bool{
	ItemTypeRent:     true,
	ItemTypeWater:    true,
	ItemTypeElectric: true,
	ItemTypeService:  true,
	ItemTypeDiscount: true,
	ItemTypeLateFee:  true,
}

// IsValid returns true if the item type is one of the defined constants
func (t ItemType) IsValid() bool {
	return validItemTypes[t]
}

// UserEditable returns true for the types staff may edit or delete.
// rent/water/electric/late_fee rows are system-managed once created.
func (t ItemType) UserEditable() bool {
	return t == ItemTypeService || t == ItemTypeDiscount
}

// String returns the string representation of the item type
func (t ItemType) String() string {
	return string(t)
}

// LineItem is one charge or discount row on an invoice. Its lifetime is
// bound to the owning invoice. Type is immutable after creation.
type LineItem struct {
	ID          int64           `json:"id"`
	InvoiceID   int64           `json:"invoice_id"`
	Type        ItemType        `json:"type"`
	Description string          `json:"description"`
	UnitCount   decimal.Decimal `json:"unit_count"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewLineItem validates the inputs and constructs a line item with its
// derived amount. A negative rate is rejected for every type except discount.
func NewLineItem(invoiceID int64, itemType ItemType, description string, unitCount, rate decimal.Decimal) (*LineItem, error) {
	if !itemType.IsValid() {
		return nil, &ValidationError{Field: "type", Message: "unknown item type: " + string(itemType)}
	}
	if unitCount.Sign() <= 0 {
		return nil, &ValidationError{Field: "unit_count", Message: "unit count must be greater than zero"}
	}
	if rate.Sign() < 0 && itemType != ItemTypeDiscount {
		return nil, &ValidationError{Field: "rate", Message: "rate may be negative only for discount items"}
	}

	item := &LineItem{
		InvoiceID:   invoiceID,
		Type:        itemType,
		Description: description,
		UnitCount:   unitCount,
		Rate:        rate,
	}
	item.recomputeAmount()
	return item, nil
}

// SetQuantity updates unit count and rate, recomputing the derived amount.
// Callers enforce that only user-editable types reach this method.
func (li *LineItem) SetQuantity(unitCount, rate decimal.Decimal) error {
	if unitCount.Sign() <= 0 {
		return &ValidationError{Field: "unit_count", Message: "unit count must be greater than zero"}
	}
	if rate.Sign() < 0 && li.Type != ItemTypeDiscount {
		return &ValidationError{Field: "rate", Message: "rate may be negative only for discount items"}
	}

	li.UnitCount = unitCount
	li.Rate = rate
	li.recomputeAmount()
	return nil
}

// recomputeAmount derives amount = unit_count * rate, stored negative for
// discounts regardless of the sign of the inputs.
func (li *LineItem) recomputeAmount() {
	amount := li.UnitCount.Mul(li.Rate)
	if li.Type == ItemTypeDiscount {
		amount = amount.Abs().Neg()
	}
	li.Amount = amount
}
