package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
)

// Repository defines persistence operations for the catalog tables the
// settlement core consumes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stockQty int) error
	UpdateVariantStock(ctx context.Context, variantID uuid.UUID, stockQty int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) UpdateStock(ctx context.Context, id uuid.UUID, stockQty int) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock_qty", stockQty).Error
}

func (r *repository) UpdateVariantStock(ctx context.Context, variantID uuid.UUID, stockQty int) error {
	return r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		Update("stock_qty", stockQty).Error
}
