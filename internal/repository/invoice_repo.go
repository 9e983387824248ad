// Package repository provides the SQLite implementations of the persistence
// ports. Monetary columns are stored as decimal strings so no precision is
// lost crossing the database boundary.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/pkamnerd/dorm-billing/internal/domain/billing"
	"github.com/pkamnerd/dorm-billing/internal/domain/entity"
	"github.com/pkamnerd/dorm-billing/pkg/database"
)

// InvoiceRepository handles invoice database operations
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new invoice record. Used by the bill-generation job and
// by test fixtures; the ledger itself never creates invoices.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (
			dorm_id, room, tenant_id, tenant_name, tenant_email,
			period, due_date, status, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)
	`

	result, err := database.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		invoice.DormID,
		invoice.Room,
		invoice.TenantID,
		invoice.TenantName,
		invoice.TenantEmail,
		invoice.Period,
		invoice.DueDate,
		invoice.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice", zap.Int64("dorm_id", invoice.DormID), zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	invoice.ID = id
	invoice.Version = 1
	return nil
}

// GetByID retrieves an invoice scoped to its dormitory. Returns nil, nil
// when no row matches.
func (r *InvoiceRepository) GetByID(ctx context.Context, dormID, invoiceID int64) (*entity.Invoice, error) {
	query := `
		SELECT id, dorm_id, room, tenant_id, tenant_name, tenant_email,
			period, due_date, status, version, created_at, updated_at
		FROM invoices
		WHERE id = ? AND dorm_id = ?
	`

	var invoice entity.Invoice
	err := database.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, invoiceID, dormID).Scan(
		&invoice.ID,
		&invoice.DormID,
		&invoice.Room,
		&invoice.TenantID,
		&invoice.TenantName,
		&invoice.TenantEmail,
		&invoice.Period,
		&invoice.DueDate,
		&invoice.Status,
		&invoice.Version,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get invoice", zap.Int64("invoice_id", invoiceID), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return &invoice, nil
}

// ListByPeriod retrieves all invoices of a dormitory for a billing month
func (r *InvoiceRepository) ListByPeriod(ctx context.Context, dormID int64, period string) ([]*entity.Invoice, error) {
	query := `
		SELECT id, dorm_id, room, tenant_id, tenant_name, tenant_email,
			period, due_date, status, version, created_at, updated_at
		FROM invoices
		WHERE dorm_id = ? AND period = ?
		ORDER BY room, id
	`

	rows, err := database.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, dormID, period)
	if err != nil {
		r.logger.Error("Failed to list invoices",
			zap.Int64("dorm_id", dormID),
			zap.String("period", period),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		var invoice entity.Invoice
		err := rows.Scan(
			&invoice.ID,
			&invoice.DormID,
			&invoice.Room,
			&invoice.TenantID,
			&invoice.TenantName,
			&invoice.TenantEmail,
			&invoice.Period,
			&invoice.DueDate,
			&invoice.Status,
			&invoice.Version,
			&invoice.CreatedAt,
			&invoice.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, &invoice)
	}

	return invoices, rows.Err()
}

// RefreshStatus writes the derived status cache and bumps the version.
// A version mismatch means another writer got there first; the caller gets
// billing.ErrConflict and must refetch before retrying.
func (r *InvoiceRepository) RefreshStatus(ctx context.Context, invoiceID int64, status string, version int64) error {
	query := `
		UPDATE invoices
		SET status = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?
	`

	result, err := database.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, status, invoiceID, version)
	if err != nil {
		r.logger.Error("Failed to refresh invoice status", zap.Int64("invoice_id", invoiceID), zap.Error(err))
		return fmt.Errorf("failed to refresh invoice status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invoice %d at version %d: %w", invoiceID, version, billing.ErrConflict)
	}

	return nil
}

// Delete removes an invoice with an optimistic version check
func (r *InvoiceRepository) Delete(ctx context.Context, invoiceID, version int64) error {
	query := `DELETE FROM invoices WHERE id = ? AND version = ?`

	result, err := database.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, invoiceID, version)
	if err != nil {
		r.logger.Error("Failed to delete invoice", zap.Int64("invoice_id", invoiceID), zap.Error(err))
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invoice %d at version %d: %w", invoiceID, version, billing.ErrConflict)
	}

	return nil
}
