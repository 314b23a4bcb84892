package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/types"
)

// Product is either a simple product with a scalar stock counter or a
// variable product whose stock lives on its variants.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	SellerID    uuid.UUID        `gorm:"column:seller_id;type:uuid;not null;index"`
	Name        string           `gorm:"column:name;not null"`
	Slug        *string          `gorm:"column:slug;uniqueIndex"`
	PriceCents  int              `gorm:"column:price_cents;not null"`
	StockQty    int              `gorm:"column:stock_qty;not null;default:0"`
	HasVariants bool             `gorm:"column:has_variants;not null;default:false"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductVariant carries an attribute set (e.g. Color=Red, Size=M) and its
// own stock counter.
type ProductVariant struct {
	ID         uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	ProductID  uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index"`
	SKU        *string                 `gorm:"column:sku"`
	Attributes types.VariantAttributes `gorm:"column:attributes;type:jsonb;serializer:json"`
	PriceCents int                     `gorm:"column:price_cents;not null"`
	StockQty   int                     `gorm:"column:stock_qty;not null;default:0"`
	IsActive   bool                    `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (v *ProductVariant) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
