package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	"github.com/hngo-dev/meshmart-backend/pkg/types"
)

// Order identifies a purchase. Orders are never hard-deleted; cancellation
// and returns are expressed through the status field plus the refund flags.
type Order struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	UserID           uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	Status           enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentMethod    string               `gorm:"column:payment_method;not null"`
	IsPaid           bool                 `gorm:"column:is_paid;not null;default:false"`
	PaidAt           *time.Time           `gorm:"column:paid_at"`
	PaymentResult    *types.PaymentResult `gorm:"column:payment_result;type:jsonb;serializer:json"`
	IsDelivered      bool                 `gorm:"column:is_delivered;not null;default:false"`
	DeliveredAt      *time.Time           `gorm:"column:delivered_at"`
	ShippingAddress  *types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	ItemsPriceCents  int                  `gorm:"column:items_price_cents;not null"`
	TaxPriceCents    int                  `gorm:"column:tax_price_cents;not null;default:0"`
	ShipPriceCents   int                  `gorm:"column:ship_price_cents;not null;default:0"`
	TotalPriceCents  int                  `gorm:"column:total_price_cents;not null"`
	CouponCode       *string              `gorm:"column:coupon_code"`
	DiscountCents    int                  `gorm:"column:discount_cents;not null;default:0"`
	CreditUsedCents  int                  `gorm:"column:credit_used_cents;not null;default:0"`
	RefundedToCredit bool                 `gorm:"column:refunded_to_credit;not null;default:false"`
	RefundCents      int                  `gorm:"column:refund_cents;not null;default:0"`
	Items            []OrderLineItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderLineItem is the snapshot of one purchased item, including the selected
// variant attributes used to locate the matching stock counter.
type OrderLineItem struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID               `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index"`
	SellerID       uuid.UUID               `gorm:"column:seller_id;type:uuid;not null;index"`
	Name           string                  `gorm:"column:name;not null"`
	UnitPriceCents int                     `gorm:"column:unit_price_cents;not null"`
	Qty            int                     `gorm:"column:qty;not null"`
	Attributes     types.VariantAttributes `gorm:"column:attributes;type:jsonb;serializer:json"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (i *OrderLineItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
