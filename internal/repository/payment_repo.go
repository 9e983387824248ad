package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pkamnerd/dorm-billing/internal/domain/entity"
	"github.com/pkamnerd/dorm-billing/pkg/database"
)

// PaymentRepository handles payment database operations
type PaymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB, logger *zap.Logger) *PaymentRepository {
	return &PaymentRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a payment record
func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (
			invoice_id, amount, method, paid_at, note, receipt_no
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := database.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		payment.InvoiceID,
		payment.Amount.String(),
		payment.Method.String(),
		payment.PaidAt,
		payment.Note,
		payment.ReceiptNo,
	)
	if err != nil {
		r.logger.Error("Failed to create payment", zap.Int64("invoice_id", payment.InvoiceID), zap.Error(err))
		return fmt.Errorf("failed to create payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	payment.ID = id
	return nil
}

// GetByID retrieves a payment by its ID. Returns nil, nil when absent.
func (r *PaymentRepository) GetByID(ctx context.Context, paymentID int64) (*entity.Payment, error) {
	query := `
		SELECT id, invoice_id, amount, method, paid_at, note, receipt_no, created_at
		FROM payments
		WHERE id = ?
	`

	payment, err := scanPayment(database.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, paymentID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get payment", zap.Int64("payment_id", paymentID), zap.Error(err))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

// ListByInvoice retrieves all payments of an invoice in recording order
func (r *PaymentRepository) ListByInvoice(ctx context.Context, invoiceID int64) ([]*entity.Payment, error) {
	query := `
		SELECT id, invoice_id, amount, method, paid_at, note, receipt_no, created_at
		FROM payments
		WHERE invoice_id = ?
		ORDER BY id
	`

	rows, err := database.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, invoiceID)
	if err != nil {
		r.logger.Error("Failed to list payments", zap.Int64("invoice_id", invoiceID), zap.Error(err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

// Delete removes a payment record
func (r *PaymentRepository) Delete(ctx context.Context, paymentID int64) error {
	_, err := database.ExecutorFrom(ctx, r.db).ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, paymentID)
	if err != nil {
		r.logger.Error("Failed to delete payment", zap.Int64("payment_id", paymentID), zap.Error(err))
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}

// DeleteByInvoice removes all payments of an invoice
func (r *PaymentRepository) DeleteByInvoice(ctx context.Context, invoiceID int64) error {
	_, err := database.ExecutorFrom(ctx, r.db).ExecContext(ctx, `DELETE FROM payments WHERE invoice_id = ?`, invoiceID)
	if err != nil {
		r.logger.Error("Failed to delete invoice payments", zap.Int64("invoice_id", invoiceID), zap.Error(err))
		return fmt.Errorf("failed to delete invoice payments: %w", err)
	}
	return nil
}

// scanPayment reads one payment row, parsing the decimal amount column
func scanPayment(row rowScanner) (*entity.Payment, error) {
	var payment entity.Payment
	var amount, method string

	err := row.Scan(
		&payment.ID,
		&payment.InvoiceID,
		&amount,
		&method,
		&payment.PaidAt,
		&payment.Note,
		&payment.ReceiptNo,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	payment.Method = entity.PaymentMethod(method)
	if payment.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	return &payment, nil
}
