package credit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	"github.com/hngo-dev/meshmart-backend/pkg/pagination"
)

// Repository defines persistence operations for the store-credit ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, tx *models.CreditTransaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.CreditTransaction, *pagination.Cursor, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a credit repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, tx *models.CreditTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.CreditTransaction, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.CreditTransaction{}).
		Where("user_id = ?", userID)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.CreditTransaction
	err = query.Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return rows, next, nil
}
