package port

import (
	"context"

	"github.com/pkamnerd/dorm-billing/internal/domain/entity"
)

// InvoiceRepository defines persistence operations for Invoice.
// Mutations carry the caller's last-seen version; implementations return
// billing.ErrConflict when the stored version no longer matches.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, dormID, invoiceID int64) (*entity.Invoice, error)
	ListByPeriod(ctx context.Context, dormID int64, period string) ([]*entity.Invoice, error)
	// RefreshStatus updates the cached status and bumps the version
	RefreshStatus(ctx context.Context, invoiceID int64, status string, version int64) error
	Delete(ctx context.Context, invoiceID, version int64) error
}

// LineItemRepository defines persistence operations for LineItem
type LineItemRepository interface {
	Create(ctx context.Context, item *entity.LineItem) error
	GetByID(ctx context.Context, itemID int64) (*entity.LineItem, error)
	ListByInvoice(ctx context.Context, invoiceID int64) ([]*entity.LineItem, error)
	Update(ctx context.Context, item *entity.LineItem) error
	Delete(ctx context.Context, itemID int64) error
	DeleteByInvoice(ctx context.Context, invoiceID int64) error
}

// PaymentRepository defines persistence operations for Payment
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, paymentID int64) (*entity.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID int64) ([]*entity.Payment, error)
	Delete(ctx context.Context, paymentID int64) error
	DeleteByInvoice(ctx context.Context, invoiceID int64) error
}

// DormitoryRepository defines persistence operations for Dormitory
type DormitoryRepository interface {
	GetByID(ctx context.Context, dormID int64) (*entity.Dormitory, error)
}

// TransactionManager executes a function within a database transaction.
// The transactional context must be passed to repository calls inside fn.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
