package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkamnerd/dorm-billing/internal/application/dispatcher"
	"github.com/pkamnerd/dorm-billing/internal/application/port"
	"github.com/pkamnerd/dorm-billing/internal/domain/billing"
	"github.com/pkamnerd/dorm-billing/internal/domain/entity"
	"github.com/pkamnerd/dorm-billing/internal/domain/event"
	"github.com/pkamnerd/dorm-billing/internal/domain/lifecycle"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// InvoiceView is the canonical read model of an invoice. Every consumer
// (pages, print, export) reads totals from here instead of recomputing.
type InvoiceView struct {
	Invoice     *entity.Invoice    `json:"invoice"`
	Items       []*entity.LineItem `json:"items"`
	Payments    []*entity.Payment  `json:"payments"`
	Total       decimal.Decimal    `json:"total"`
	Paid        decimal.Decimal    `json:"paid"`
	Balance     decimal.Decimal    `json:"balance"`
	Status      lifecycle.State    `json:"status"`
	LateDays    int                `json:"late_days"`
	LateFee     decimal.Decimal    `json:"late_fee"`
	LateFeeItem *entity.LineItem   `json:"late_fee_item,omitempty"`
	AmountDue   decimal.Decimal    `json:"amount_due"`
	CanMutate   bool               `json:"can_mutate"`
}

// AddItemRequest carries the inputs for adding a charge or discount row
type AddItemRequest struct {
	Type        entity.ItemType
	Description string
	UnitCount   decimal.Decimal
	Rate        decimal.Decimal
}

// UpdateItemRequest carries the inputs for editing a service/discount row.
// An empty Description keeps the stored description; descriptions can be
// replaced but not cleared.
type UpdateItemRequest struct {
	Description string
	UnitCount   decimal.Decimal
	Rate        decimal.Decimal
}

// RecordPaymentRequest carries the inputs for recording a payment
type RecordPaymentRequest struct {
	Amount decimal.Decimal
	Method entity.PaymentMethod
	PaidAt time.Time
	Note   string
}

// PaymentResult reports the outcome of a recorded payment
type PaymentResult struct {
	Payment *entity.Payment `json:"payment"`
	Balance decimal.Decimal `json:"balance"`
	Status  lifecycle.State `json:"status"`
}

// LedgerService orchestrates all mutations of the invoice ledger. Each
// operation persists before acknowledging, recomputes totals from the
// transactional read, refreshes the cached status, and raises domain events
// after commit.
type LedgerService interface {
	GetInvoiceView(ctx context.Context, dormID, invoiceID int64) (*InvoiceView, error)
	CanMutate(ctx context.Context, dormID, invoiceID int64) (bool, error)
	AddItem(ctx context.Context, dormID, invoiceID int64, req AddItemRequest) (*entity.LineItem, error)
	UpdateItem(ctx context.Context, dormID, invoiceID, itemID int64, req UpdateItemRequest) (*entity.LineItem, error)
	DeleteItem(ctx context.Context, dormID, invoiceID, itemID int64) error
	RecordPayment(ctx context.Context, dormID, invoiceID int64, req RecordPaymentRequest) (*PaymentResult, error)
	DeletePayment(ctx context.Context, dormID, invoiceID, paymentID int64) error
	DeleteInvoice(ctx context.Context, dormID, invoiceID int64) error
	SendReminder(ctx context.Context, dormID, invoiceID int64) error
}

type ledgerServiceImpl struct {
	invoiceRepo port.InvoiceRepository
	itemRepo    port.LineItemRepository
	paymentRepo port.PaymentRepository
	dormRepo    port.DormitoryRepository
	txManager   port.TransactionManager
	notifier    port.ReminderNotifier
	events      dispatcher.Dispatcher
	logger      Logger
	now         func() time.Time
}

// Option configures the ledger service
type Option func(*ledgerServiceImpl)

// WithClock overrides the time source, used by late-fee tests
func WithClock(now func() time.Time) Option {
	return func(s *ledgerServiceImpl) {
		s.now = now
	}
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	invoiceRepo port.InvoiceRepository,
	itemRepo port.LineItemRepository,
	paymentRepo port.PaymentRepository,
	dormRepo port.DormitoryRepository,
	txManager port.TransactionManager,
	notifier port.ReminderNotifier,
	events dispatcher.Dispatcher,
	logger Logger,
	opts ...Option,
) LedgerService {
	s := &ledgerServiceImpl{
		invoiceRepo: invoiceRepo,
		itemRepo:    itemRepo,
		paymentRepo: paymentRepo,
		dormRepo:    dormRepo,
		txManager:   txManager,
		notifier:    notifier,
		events:      events,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// aggregate is one consistent snapshot of an invoice with derived figures
type aggregate struct {
	invoice  *entity.Invoice
	items    []*entity.LineItem
	payments []*entity.Payment
	total    decimal.Decimal
	balance  decimal.Decimal
	state    lifecycle.State
}

// loadAggregate fetches the invoice with its items and payments and derives
// total, balance and settlement state. The stored status column is ignored.
func (s *ledgerServiceImpl) loadAggregate(ctx context.Context, dormID, invoiceID int64) (*aggregate, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, dormID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, billing.ErrNotFound
	}

	items, err := s.itemRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	total := billing.ComputeTotal(items)
	balance := billing.ComputeBalance(total, payments)

	return &aggregate{
		invoice:  invoice,
		items:    items,
		payments: payments,
		total:    total,
		balance:  balance,
		state:    lifecycle.Derive(balance),
	}, nil
}

// GetInvoiceView returns the canonical read model for an invoice
func (s *ledgerServiceImpl) GetInvoiceView(ctx context.Context, dormID, invoiceID int64) (*InvoiceView, error) {
	agg, err := s.loadAggregate(ctx, dormID, invoiceID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, agg)
}

func (s *ledgerServiceImpl) buildView(ctx context.Context, agg *aggregate) (*InvoiceView, error) {
	view := &InvoiceView{
		Invoice:   agg.invoice,
		Items:     agg.items,
		Payments:  agg.payments,
		Total:     agg.total,
		Paid:      billing.SumPayments(agg.payments),
		Balance:   agg.balance,
		Status:    agg.state,
		AmountDue: agg.balance,
		CanMutate: lifecycle.Permitted(agg.state, lifecycle.ActionAddItem),
	}

	dorm, err := s.dormRepo.GetByID(ctx, agg.invoice.DormID)
	if err != nil {
		return nil, err
	}
	if dorm == nil {
		return nil, fmt.Errorf("dormitory %d: %w", agg.invoice.DormID, billing.ErrNotFound)
	}

	days, fee := billing.AccrueLateFee(agg.balance, dorm.LateFeePerDay, agg.invoice.DueDate, s.now())
	view.LateDays = days
	view.LateFee = fee
	if fee.Sign() > 0 {
		view.LateFeeItem = billing.LateFeeItem(agg.invoice.ID, days, dorm.LateFeePerDay)
		view.AmountDue = agg.balance.Add(fee)
	}

	return view, nil
}

// CanMutate is the single source of truth for whether mutation-guarded
// actions are enabled for an invoice
func (s *ledgerServiceImpl) CanMutate(ctx context.Context, dormID, invoiceID int64) (bool, error) {
	agg, err := s.loadAggregate(ctx, dormID, invoiceID)
	if err != nil {
		return false, err
	}
	return lifecycle.Permitted(agg.state, lifecycle.ActionAddItem), nil
}

// AddItem appends a service or discount row to an unsettled invoice
func (s *ledgerServiceImpl) AddItem(ctx context.Context, dormID, invoiceID int64, req AddItemRequest) (*entity.LineItem, error) {
	agg, err := s.loadAggregate(ctx, dormID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.Permitted(agg.state, lifecycle.ActionAddItem) {
		return nil, billing.ErrAlreadySettled
	}
	if !req.Type.UserEditable() {
		return nil, &entity.ValidationError{Field: "type", Message: "only service and discount items can be added"}
	}

	item, err := entity.NewLineItem(invoiceID, req.Type, req.Description, req.UnitCount, req.Rate)
	if err != nil {
		return nil, err
	}

	outcome, err := s.mutate(ctx, agg, func(txCtx context.Context) error {
		return s.itemRepo.Create(txCtx, item)
	})
	if err != nil {
		s.logger.Error("Failed to add item", "error", err, "invoice_id", invoiceID)
		return nil, err
	}

	s.logger.Info("Item added", "invoice_id", invoiceID, "item_id", item.ID, "type", req.Type)
	s.raiseItemChanged(ctx, agg, outcome, map[string]interface{}{"item_id": item.ID, "op": "add"})
	return item, nil
}

// UpdateItem edits a service or discount row on an unsettled invoice
func (s *ledgerServiceImpl) UpdateItem(ctx context.Context, dormID, invoiceID, itemID int64, req UpdateItemRequest) (*entity.LineItem, error) {
	agg, err := s.loadAggregate(ctx, dormID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.Permitted(agg.state, lifecycle.ActionEditItem) {
		return nil, billing.ErrAlreadySettled
	}

	item, err := s.findItem(agg, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Type.UserEditable() {
		return nil, &entity.ValidationError{Field: "type", Message: string(item.Type) + " items are system-managed"}
	}

	if err := item.SetQuantity(req.UnitCount, req.Rate); err != nil {
		return nil, err
	}
	if req.Description != "" {
		item.Description = req.Description
	}

	outcome, err := s.mutate(ctx, agg, func(txCtx context.Context) error {
		return s.itemRepo.Update(txCtx, item)
	})
	if err != nil {
		s.logger.Error("Failed to update item", "error", err, "invoice_id", invoiceID, "item_id", itemID)
		return nil, err
	}

	s.logger.Info("Item updated", "invoice_id", invoiceID, "item_id", itemID)
	s.raiseItemChanged(ctx, agg, outcome, map[string]interface{}{"item_id": itemID, "op": "edit"})
	return item, nil
}

// DeleteItem removes a service or discount row from an unsettled invoice
func (s *ledgerServiceImpl) DeleteItem(ctx context.Context, dormID, invoiceID, itemID int64) error {
	agg, err := s.loadAggregate(ctx, dormID, invoiceID)
	if err != nil {
		return err
	}
	if !lifecycle.Permitted(agg.state, lifecycle.ActionDeleteItem) {
		return billing.ErrAlreadySettled
	}

	item, err := s.findItem(agg, itemID)
	if err != nil {
		return err
	}
	if !item.Type.UserEditable() {
		return &entity.ValidationError{Field: "type", Message: string(item.Type) + " items are system-managed"}
	}

	outcome, err := s.mutate(ctx, agg, func(txCtx context.Context) error {
		return s.itemRepo.Delete(txCtx, itemID)
	})
	if err != nil {
		s.logger.Error("Failed to delete item", "error", err, "invoice_id", invoiceID, "item_id", itemID)
		return err
	}

	s.logger.Info("Item deleted", "invoice_id", invoiceID, "item_id", itemID)
	s.raiseItemChanged(ctx, agg, outcome, map[string]interface{}{"item_id": itemID, "op": "delete"})
	return nil
}

// RecordPayment appends a payment against an unsettled invoice. Overpayment
// is accepted; the resulting negative balance is reported, not rejected.
func (s *ledgerServiceImpl) RecordPayment(ctx context.Context, dormID, invoiceID int64, req RecordPaymentRequest) (*PaymentResult, error) {
	agg, err := s.loadAggregate(ctx, dormID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.Permitted(agg.state, lifecycle.ActionRecordPayment) {
		return nil, billing.ErrAlreadySettled
	}

	payment, err := entity.NewPayment(invoiceID, req.Amount, req.Method, req.PaidAt, req.Note)
	if err != nil {
		return nil, err
	}
	payment.ReceiptNo = billing.NewReceiptNumber(payment.PaidAt)

	outcome, err := s.mutate(ctx, agg, func(txCtx context.Context) error {
		return s.paymentRepo.Create(txCtx, payment)
	})
	if err != nil {
		s.logger.Error("Failed to record payment", "error", err, "invoice_id", invoiceID)
		return nil, err
	}

	s.logger.Info("Payment recorded",
		"invoice_id", invoiceID,
		"payment_id", payment.ID,
		"receipt_no", payment.ReceiptNo,
		"balance", outcome.balance.String())

	evt := event.New(event.TypePaymentRecorded, dormID, invoiceID, map[string]interface{}{
		"payment_id": payment.ID,
		"receipt_no": payment.ReceiptNo,
		"amount":     payment.Amount.String(),
		"balance":    outcome.balance.String(),
	})
	s.events.DispatchAsync(ctx, evt)
	s.raiseTransition(ctx, agg, outcome, evt.CorrelationID)

	return &PaymentResult{
		Payment: payment,
		Balance: outcome.balance,
		Status:  outcome.state,
	}, nil
}

// DeletePayment removes a payment unconditionally. Deleting the payment
// that settled an invoice reopens it.
func (s *ledgerServiceImpl) DeletePayment(ctx context.Context, dormID, invoiceID, paymentID int64) error {
	agg, err := s.loadAggregate(ctx, dormID, invoiceID)
	if err != nil {
		return err
	}

	var found bool
	for _, p := range agg.payments {
		if p.ID == paymentID {
			found = true
			break
		}
	}
	if !found {
		return billing.ErrNotFound
	}

	outcome, err := s.mutate(ctx, agg, func(txCtx context.Context) error {
		return s.paymentRepo.Delete(txCtx, paymentID)
	})
	if err != nil {
		s.logger.Error("Failed to delete payment", "error", err, "invoice_id", invoiceID, "payment_id", paymentID)
		return err
	}

	s.logger.Info("Payment deleted",
		"invoice_id", invoiceID,
		"payment_id", paymentID,
		"balance", outcome.balance.String())

	evt := event.New(event.TypePaymentDeleted, dormID, invoiceID, map[string]interface{}{
		"payment_id": paymentID,
		"balance":    outcome.balance.String(),
	})
	s.events.DispatchAsync(ctx, evt)
	s.raiseTransition(ctx, agg, outcome, evt.CorrelationID)
	return nil
}

// DeleteInvoice removes an unsettled invoice together with its items and
// payment history in a single transaction
func (s *ledgerServiceImpl) DeleteInvoice(ctx context.Context, dormID, invoiceID int64) error {
	agg, err := s.loadAggregate(ctx, dormID, invoiceID)
	if err != nil {
		return err
	}
	if !lifecycle.Permitted(agg.state, lifecycle.ActionDeleteInvoice) {
		return billing.ErrAlreadySettled
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.paymentRepo.DeleteByInvoice(txCtx, invoiceID); err != nil {
			return fmt.Errorf("delete payments: %w", err)
		}
		if err := s.itemRepo.DeleteByInvoice(txCtx, invoiceID); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if err := s.invoiceRepo.Delete(txCtx, invoiceID, agg.invoice.Version); err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to delete invoice", "error", err, "invoice_id", invoiceID)
		return err
	}

	s.logger.Info("Invoice deleted", "invoice_id", invoiceID, "dorm_id", dormID)
	s.events.DispatchAsync(ctx, event.New(event.TypeInvoiceDeleted, dormID, invoiceID, nil))
	return nil
}

// SendReminder delivers an overdue notice for an unsettled invoice
func (s *ledgerServiceImpl) SendReminder(ctx context.Context, dormID, invoiceID int64) error {
	agg, err := s.loadAggregate(ctx, dormID, invoiceID)
	if err != nil {
		return err
	}
	if !lifecycle.Permitted(agg.state, lifecycle.ActionSendReminder) {
		return billing.ErrAlreadySettled
	}

	dorm, err := s.dormRepo.GetByID(ctx, dormID)
	if err != nil {
		return err
	}
	if dorm == nil {
		return fmt.Errorf("dormitory %d: %w", dormID, billing.ErrNotFound)
	}

	days, fee := billing.AccrueLateFee(agg.balance, dorm.LateFeePerDay, agg.invoice.DueDate, s.now())
	reminder := &port.Reminder{
		Invoice:  agg.invoice,
		Balance:  agg.balance,
		LateDays: days,
		LateFee:  fee,
	}

	if err := s.notifier.SendReminder(ctx, reminder); err != nil {
		s.logger.Error("Failed to send reminder", "error", err, "invoice_id", invoiceID)
		return &billing.TransportError{Op: "send reminder", Err: err}
	}

	s.logger.Info("Reminder sent", "invoice_id", invoiceID, "tenant_email", agg.invoice.TenantEmail)
	s.events.DispatchAsync(ctx, event.New(event.TypeReminderSent, dormID, invoiceID, map[string]interface{}{
		"balance":   agg.balance.String(),
		"late_days": days,
	}))
	return nil
}

// mutationOutcome captures the recomputed figures after a persisted mutation
type mutationOutcome struct {
	balance decimal.Decimal
	state   lifecycle.State
}

// mutate runs the persisting function inside a transaction, recomputes total
// and balance from the transactional read, and refreshes the cached status
// with an optimistic version check. Nothing is acknowledged before commit;
// on any failure the transaction rolls back and no local state survives.
func (s *ledgerServiceImpl) mutate(ctx context.Context, agg *aggregate, fn func(txCtx context.Context) error) (*mutationOutcome, error) {
	outcome := &mutationOutcome{}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := fn(txCtx); err != nil {
			return err
		}

		items, err := s.itemRepo.ListByInvoice(txCtx, agg.invoice.ID)
		if err != nil {
			return fmt.Errorf("reload items: %w", err)
		}
		payments, err := s.paymentRepo.ListByInvoice(txCtx, agg.invoice.ID)
		if err != nil {
			return fmt.Errorf("reload payments: %w", err)
		}

		total := billing.ComputeTotal(items)
		outcome.balance = billing.ComputeBalance(total, payments)
		outcome.state = lifecycle.Derive(outcome.balance)

		if err := s.invoiceRepo.RefreshStatus(txCtx, agg.invoice.ID, outcome.state.String(), agg.invoice.Version); err != nil {
			return fmt.Errorf("refresh status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// findItem locates an item inside the loaded aggregate
func (s *ledgerServiceImpl) findItem(agg *aggregate, itemID int64) (*entity.LineItem, error) {
	for _, item := range agg.items {
		if item.ID == itemID {
			return item, nil
		}
	}
	return nil, billing.ErrNotFound
}

// raiseItemChanged emits the item-changed event plus any settlement
// transition caused by the mutation
func (s *ledgerServiceImpl) raiseItemChanged(ctx context.Context, agg *aggregate, outcome *mutationOutcome, payload map[string]interface{}) {
	payload["balance"] = outcome.balance.String()
	evt := event.New(event.TypeItemChanged, agg.invoice.DormID, agg.invoice.ID, payload)
	s.events.DispatchAsync(ctx, evt)
	s.raiseTransition(ctx, agg, outcome, evt.CorrelationID)
}

// raiseTransition emits invoice.settled or invoice.reopened when the
// mutation crossed the settlement boundary
func (s *ledgerServiceImpl) raiseTransition(ctx context.Context, agg *aggregate, outcome *mutationOutcome, correlationID string) {
	if agg.state == outcome.state {
		return
	}

	eventType := event.TypeInvoiceReopened
	if outcome.state == lifecycle.StateSettled {
		eventType = event.TypeInvoiceSettled
	}

	evt := event.NewWithCorrelation(eventType, agg.invoice.DormID, agg.invoice.ID, map[string]interface{}{
		"balance": outcome.balance.String(),
	}, correlationID)
	s.events.DispatchAsync(ctx, evt)
}
