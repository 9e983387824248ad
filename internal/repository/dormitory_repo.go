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

// DormitoryRepository handles dormitory database operations
type DormitoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDormitoryRepository creates a new dormitory repository
func NewDormitoryRepository(db *sql.DB, logger *zap.Logger) *DormitoryRepository {
	return &DormitoryRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a dormitory by its ID. Returns nil, nil when absent.
func (r *DormitoryRepository) GetByID(ctx context.Context, dormID int64) (*entity.Dormitory, error) {
	query := `
		SELECT id, name, late_fee_per_day, created_at, updated_at
		FROM dormitories
		WHERE id = ?
	`

	var dorm entity.Dormitory
	var lateFeePerDay string

	err := database.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, dormID).Scan(
		&dorm.ID,
		&dorm.Name,
		&lateFeePerDay,
		&dorm.CreatedAt,
		&dorm.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get dormitory", zap.Int64("dorm_id", dormID), zap.Error(err))
		return nil, fmt.Errorf("failed to get dormitory: %w", err)
	}

	if dorm.LateFeePerDay, err = decimal.NewFromString(lateFeePerDay); err != nil {
		return nil, fmt.Errorf("invalid late_fee_per_day %q: %w", lateFeePerDay, err)
	}

	return &dorm, nil
}
