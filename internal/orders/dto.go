package orders

import (
	"github.com/google/uuid"

	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	"github.com/hngo-dev/meshmart-backend/pkg/pagination"
	"github.com/hngo-dev/meshmart-backend/pkg/types"
)

// LineItemInput selects a product (and optionally a variant via attributes)
// plus a quantity.
type LineItemInput struct {
	ProductID  uuid.UUID               `json:"productId"`
	Qty        int                     `json:"qty"`
	Attributes types.VariantAttributes `json:"attributes,omitempty"`
}

// CreateOrderInput carries everything needed to create and settle an order.
type CreateOrderInput struct {
	UserID          uuid.UUID
	Items           []LineItemInput
	ShippingAddress *types.Address
	PaymentMethod   string
	TaxCents        int
	ShipCents       int
	CouponCode      *string
	UseCreditCents  int
}

// PayOrderInput confirms payment for an existing order.
type PayOrderInput struct {
	OrderID       uuid.UUID
	PaymentResult types.PaymentResult
}

// UpdateStatusInput transitions an order's lifecycle status.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
}

// CommissionSummary aggregates the splits posted for one settlement.
type CommissionSummary struct {
	ItemCount            int  `json:"itemCount"`
	SellerEarningsCents  int  `json:"sellerEarningsCents"`
	AdminCommissionCents int  `json:"adminCommissionCents"`
	DegradedItems        int  `json:"degradedItems"`
	AlreadyPaid          bool `json:"alreadyPaid,omitempty"`
}

// SettlementResult is returned by order creation and payment confirmation.
type SettlementResult struct {
	Order      *models.Order      `json:"order"`
	Commission *CommissionSummary `json:"commission"`
}

// OrderList is one page of orders.
type OrderList struct {
	Orders     []models.Order     `json:"orders"`
	NextCursor *pagination.Cursor `json:"nextCursor,omitempty"`
}
