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

// LineItemRepository handles line-item database operations
type LineItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLineItemRepository creates a new line-item repository
func NewLineItemRepository(db *sql.DB, logger *zap.Logger) *LineItemRepository {
	return &LineItemRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new line item
func (r *LineItemRepository) Create(ctx context.Context, item *entity.LineItem) error {
	query := `
		INSERT INTO line_items (
			invoice_id, item_type, description, unit_count, rate, amount
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := database.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		item.InvoiceID,
		item.Type.String(),
		item.Description,
		item.UnitCount.String(),
		item.Rate.String(),
		item.Amount.String(),
	)
	if err != nil {
		r.logger.Error("Failed to create line item", zap.Int64("invoice_id", item.InvoiceID), zap.Error(err))
		return fmt.Errorf("failed to create line item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	item.ID = id
	return nil
}

// GetByID retrieves a line item by its ID. Returns nil, nil when absent.
func (r *LineItemRepository) GetByID(ctx context.Context, itemID int64) (*entity.LineItem, error) {
	query := `
		SELECT id, invoice_id, item_type, description, unit_count, rate, amount,
			created_at, updated_at
		FROM line_items
		WHERE id = ?
	`

	item, err := scanLineItem(database.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, itemID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get line item", zap.Int64("item_id", itemID), zap.Error(err))
		return nil, fmt.Errorf("failed to get line item: %w", err)
	}

	return item, nil
}

// ListByInvoice retrieves all line items of an invoice
func (r *LineItemRepository) ListByInvoice(ctx context.Context, invoiceID int64) ([]*entity.LineItem, error) {
	query := `
		SELECT id, invoice_id, item_type, description, unit_count, rate, amount,
			created_at, updated_at
		FROM line_items
		WHERE invoice_id = ?
		ORDER BY id
	`

	rows, err := database.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, invoiceID)
	if err != nil {
		r.logger.Error("Failed to list line items", zap.Int64("invoice_id", invoiceID), zap.Error(err))
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	defer rows.Close()

	var items []*entity.LineItem
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Update rewrites the mutable columns of a line item. Type is immutable.
func (r *LineItemRepository) Update(ctx context.Context, item *entity.LineItem) error {
	query := `
		UPDATE line_items
		SET description = ?, unit_count = ?, rate = ?, amount = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := database.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		item.Description,
		item.UnitCount.String(),
		item.Rate.String(),
		item.Amount.String(),
		item.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update line item", zap.Int64("item_id", item.ID), zap.Error(err))
		return fmt.Errorf("failed to update line item: %w", err)
	}

	return nil
}

// Delete removes a line item
func (r *LineItemRepository) Delete(ctx context.Context, itemID int64) error {
	_, err := database.ExecutorFrom(ctx, r.db).ExecContext(ctx, `DELETE FROM line_items WHERE id = ?`, itemID)
	if err != nil {
		r.logger.Error("Failed to delete line item", zap.Int64("item_id", itemID), zap.Error(err))
		return fmt.Errorf("failed to delete line item: %w", err)
	}
	return nil
}

// DeleteByInvoice removes all line items of an invoice
func (r *LineItemRepository) DeleteByInvoice(ctx context.Context, invoiceID int64) error {
	_, err := database.ExecutorFrom(ctx, r.db).ExecContext(ctx, `DELETE FROM line_items WHERE invoice_id = ?`, invoiceID)
	if err != nil {
		r.logger.Error("Failed to delete invoice line items", zap.Int64("invoice_id", invoiceID), zap.Error(err))
		return fmt.Errorf("failed to delete invoice line items: %w", err)
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanLineItem reads one line-item row, parsing decimal text columns
func scanLineItem(row rowScanner) (*entity.LineItem, error) {
	var item entity.LineItem
	var itemType, unitCount, rate, amount string

	err := row.Scan(
		&item.ID,
		&item.InvoiceID,
		&itemType,
		&item.Description,
		&unitCount,
		&rate,
		&amount,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Type = entity.ItemType(itemType)
	if item.UnitCount, err = decimal.NewFromString(unitCount); err != nil {
		return nil, fmt.Errorf("invalid unit_count %q: %w", unitCount, err)
	}
	if item.Rate, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", rate, err)
	}
	if item.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	return &item, nil
}
