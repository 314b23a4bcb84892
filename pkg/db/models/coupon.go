package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/enums"
)

// Coupon is a discount code. Codes are stored upper-cased and matched
// case-insensitively at validation time.
type Coupon struct {
	ID   uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	Code string                   `gorm:"column:code;not null;uniqueIndex"`
	Type enums.CouponDiscountType `gorm:"column:type;type:text;not null"`
	// Value is a percent (0-100) for percentage coupons and an amount in
	// cents for fixed coupons.
	Value            int        `gorm:"column:value;not null"`
	MinOrderCents    int        `gorm:"column:min_order_cents;not null;default:0"`
	MaxDiscountCents *int       `gorm:"column:max_discount_cents"`
	StartsAt         *time.Time `gorm:"column:starts_at"`
	ExpiresAt        *time.Time `gorm:"column:expires_at"`
	UsageLimit       *int       `gorm:"column:usage_limit"`
	UsageCount       int        `gorm:"column:usage_count;not null;default:0"`
	PerUserLimit     *int       `gorm:"column:per_user_limit"`
	IsActive         bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (c *Coupon) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CouponRedemption links one coupon use to the order it discounted. The
// per-user usage limit is enforced by counting these rows.
type CouponRedemption struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CouponID      uuid.UUID `gorm:"column:coupon_id;type:uuid;not null;index"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	OrderID       uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	DiscountCents int       `gorm:"column:discount_cents;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (r *CouponRedemption) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
