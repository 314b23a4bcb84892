package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/internal/credit"
	"github.com/hngo-dev/meshmart-backend/internal/inventory"
	"github.com/hngo-dev/meshmart-backend/internal/notifications"
	"github.com/hngo-dev/meshmart-backend/internal/products"
	"github.com/hngo-dev/meshmart-backend/internal/settlement"
	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
	"github.com/hngo-dev/meshmart-backend/pkg/metrics"
	"github.com/hngo-dev/meshmart-backend/pkg/outbox"
	"github.com/hngo-dev/meshmart-backend/pkg/pagination"
	"github.com/hngo-dev/meshmart-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type couponRedeemer interface {
	Redeem(ctx context.Context, tx *gorm.DB, code string, userID, orderID uuid.UUID, orderTotalCents int) (int, error)
}

// OrderEvent is the outbox payload for order lifecycle events.
type OrderEvent struct {
	OrderID         uuid.UUID         `json:"order_id"`
	UserID          uuid.UUID         `json:"user_id"`
	Status          enums.OrderStatus `json:"status"`
	TotalPriceCents int               `json:"total_price_cents"`
	RefundCents     int               `json:"refund_cents,omitempty"`
}

// Service is the per-order transaction boundary: creation, payment
// confirmation and status transitions, each settling or reversing wallet and
// stock effects as one atomic unit.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*SettlementResult, error)
	MarkPaid(ctx context.Context, input PayOrderInput) (*SettlementResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderList, error)
}

type service struct {
	repo      Repository
	products  products.Repository
	inventory inventory.Adjuster
	engine    settlement.Engine
	coupons   couponRedeemer
	credit    credit.Service
	notify    notifications.Service
	tx        txRunner
	outbox    outboxPublisher
	logg      *logger.Logger
	metrics   *metrics.SettlementMetrics
}

// NewService builds the order settlement orchestrator.
func NewService(
	repo Repository,
	productsRepo products.Repository,
	adjuster inventory.Adjuster,
	engine settlement.Engine,
	couponsSvc couponRedeemer,
	creditSvc credit.Service,
	notify notifications.Service,
	tx txRunner,
	ob outboxPublisher,
	logg *logger.Logger,
	m *metrics.SettlementMetrics,
) (Service, error) {
	switch {
	case repo == nil:
		return nil, fmt.Errorf("orders repository required")
	case productsRepo == nil:
		return nil, fmt.Errorf("products repository required")
	case adjuster == nil:
		return nil, fmt.Errorf("inventory adjuster required")
	case engine == nil:
		return nil, fmt.Errorf("settlement engine required")
	case couponsSvc == nil:
		return nil, fmt.Errorf("coupon redeemer required")
	case creditSvc == nil:
		return nil, fmt.Errorf("credit service required")
	case notify == nil:
		return nil, fmt.Errorf("notification service required")
	case tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case ob == nil:
		return nil, fmt.Errorf("outbox publisher required")
	case logg == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		products:  productsRepo,
		inventory: adjuster,
		engine:    engine,
		coupons:   couponsSvc,
		credit:    creditSvc,
		notify:    notify,
		tx:        tx,
		outbox:    ob,
		logg:      logg,
		metrics:   m,
	}, nil
}

// CreateOrder creates an order marked paid immediately with a synthetic
// payment result (payment authorization happens upstream), reserves stock,
// settles commission per line item, and optionally applies a coupon and
// store credit. Everything commits or rolls back as a unit; the buyer
// notification afterwards is best effort.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*SettlementResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item required")
	}
	if input.PaymentMethod == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method required")
	}
	if input.UseCreditCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit amount cannot be negative")
	}

	items, itemsCents, err := s.snapshotLineItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	grossCents := itemsCents + input.TaxCents + input.ShipCents

	now := time.Now()
	order := &models.Order{
		ID:              uuid.New(),
		UserID:          input.UserID,
		Status:          enums.OrderStatusProcessing,
		PaymentMethod:   input.PaymentMethod,
		IsPaid:          true,
		PaidAt:          &now,
		ShippingAddress: input.ShippingAddress,
		ItemsPriceCents: itemsCents,
		TaxPriceCents:   input.TaxCents,
		ShipPriceCents:  input.ShipCents,
		PaymentResult: &types.PaymentResult{
			ID:         "internal-" + uuid.NewString(),
			Status:     "COMPLETED",
			UpdateTime: now.UTC().Format(time.RFC3339),
		},
	}

	var summary CommissionSummary
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		totalCents := grossCents

		if input.CouponCode != nil && *input.CouponCode != "" {
			discount, err := s.coupons.Redeem(ctx, tx, *input.CouponCode, input.UserID, order.ID, grossCents)
			if err != nil {
				return err
			}
			order.CouponCode = input.CouponCode
			order.DiscountCents = discount
			totalCents -= discount
		}

		if input.UseCreditCents > 0 {
			if input.UseCreditCents > totalCents {
				return pkgerrors.New(pkgerrors.CodeValidation, "credit amount exceeds order total")
			}
			if _, err := s.credit.Debit(ctx, tx, input.UserID, input.UseCreditCents, &order.ID,
				enums.CreditReasonOrderPayment, "Store credit applied at checkout"); err != nil {
				return err
			}
			order.CreditUsedCents = input.UseCreditCents
		}

		order.TotalPriceCents = totalCents
		for i := range items {
			items[i].OrderID = order.ID
		}
		order.Items = items

		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return fmt.Errorf("creating order: %w", err)
		}

		sum, err := s.settleItems(ctx, tx, order)
		if err != nil {
			return err
		}
		summary = *sum

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID},
			Data: OrderEvent{
				OrderID:         order.ID,
				UserID:          order.UserID,
				Status:          order.Status,
				TotalPriceCents: order.TotalPriceCents,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrdersSettled()
	s.notify.NotifyOrderPlaced(ctx, order.UserID, order.ID)

	return &SettlementResult{Order: order, Commission: &summary}, nil
}

// MarkPaid confirms payment for an existing order and settles commission.
// A second call on an already-paid order is a no-op reporting AlreadyPaid.
func (s *service) MarkPaid(ctx context.Context, input PayOrderInput) (*SettlementResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	if order.IsPaid {
		return &SettlementResult{
			Order:      order,
			Commission: &CommissionSummary{AlreadyPaid: true},
		}, nil
	}

	now := time.Now()
	order.PaymentResult = &input.PaymentResult
	var summary CommissionSummary
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, order.ID, map[string]any{
			"is_paid":        true,
			"paid_at":        now,
			"payment_result": order.PaymentResult,
			"status":         enums.OrderStatusProcessing,
		}); err != nil {
			return fmt.Errorf("marking order paid: %w", err)
		}
		order.IsPaid = true
		order.PaidAt = &now
		order.Status = enums.OrderStatusProcessing

		sum, err := s.settleItems(ctx, tx, order)
		if err != nil {
			return err
		}
		summary = *sum

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: OrderEvent{
				OrderID:         order.ID,
				UserID:          order.UserID,
				Status:          order.Status,
				TotalPriceCents: order.TotalPriceCents,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrdersSettled()
	s.notify.NotifyOrderPlaced(ctx, order.UserID, order.ID)

	return &SettlementResult{Order: order, Commission: &summary}, nil
}

// UpdateStatus transitions the order lifecycle. Entering cancelled or
// returned triggers an idempotent refund to store credit plus stock
// restoration, gated by the refunded_to_credit flag.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", input.Status))
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}

	refunded := false
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		updates := map[string]any{"status": input.Status}

		if input.Status == enums.OrderStatusDelivered {
			now := time.Now()
			updates["is_delivered"] = true
			updates["delivered_at"] = now
			order.IsDelivered = true
			order.DeliveredAt = &now
		}

		if input.Status.RequiresRefund() && !order.RefundedToCredit {
			refundCents := order.TotalPriceCents
			reason := enums.CreditReasonOrderCancelled
			if input.Status == enums.OrderStatusReturned {
				reason = enums.CreditReasonOrderReturned
			}

			if refundCents > 0 {
				if _, err := s.credit.Credit(ctx, tx, order.UserID, refundCents, &order.ID,
					reason, fmt.Sprintf("Refund for order %s", order.ID)); err != nil {
					return err
				}
			}

			for _, item := range order.Items {
				if err := s.inventory.Adjust(ctx, tx, item, inventory.DirectionRestore); err != nil {
					return fmt.Errorf("restoring stock for line item %s: %w", item.ID, err)
				}
			}

			updates["refunded_to_credit"] = true
			updates["refund_cents"] = refundCents
			order.RefundedToCredit = true
			order.RefundCents = refundCents
			refunded = true

			eventType := enums.EventOrderCanceled
			if input.Status == enums.OrderStatusReturned {
				eventType = enums.EventOrderReturned
			}
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     eventType,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Data: OrderEvent{
					OrderID:         order.ID,
					UserID:          order.UserID,
					Status:          input.Status,
					TotalPriceCents: order.TotalPriceCents,
					RefundCents:     refundCents,
				},
			}); err != nil {
				return err
			}
		}

		if err := s.repo.WithTx(tx).Update(ctx, order.ID, updates); err != nil {
			return fmt.Errorf("updating order status: %w", err)
		}
		order.Status = input.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	if refunded {
		s.metrics.AddRefundCents(order.RefundCents)
		s.notify.NotifyOrderRefunded(ctx, order.UserID, order.ID, order.RefundCents)
	} else {
		s.notify.NotifyStatusChanged(ctx, order.UserID, order.ID, order.Status)
	}
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return order, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	return s.repo.ListByUser(ctx, userID, params)
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	return s.repo.ListBySeller(ctx, sellerID, params)
}

// snapshotLineItems resolves unit price, seller and name from the live
// catalog so the order carries an immutable copy.
func (s *service) snapshotLineItems(ctx context.Context, inputs []LineItemInput) ([]models.OrderLineItem, int, error) {
	items := make([]models.OrderLineItem, 0, len(inputs))
	total := 0
	for _, in := range inputs {
		if in.Qty <= 0 {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "line item quantity must be positive")
		}
		product, err := s.products.FindByID(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", in.ProductID))
			}
			return nil, 0, err
		}

		unitCents := product.PriceCents
		if product.HasVariants {
			var matched bool
			for _, variant := range product.Variants {
				if variant.Attributes.Matches(in.Attributes) {
					unitCents = variant.PriceCents
					matched = true
					break
				}
			}
			if !matched {
				return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "no variant matches the selected attributes").
					WithDetails(map[string]any{"productId": product.ID.String()})
			}
		}

		items = append(items, models.OrderLineItem{
			ID:             uuid.New(),
			ProductID:      product.ID,
			SellerID:       product.SellerID,
			Name:           product.Name,
			UnitPriceCents: unitCents,
			Qty:            in.Qty,
			Attributes:     in.Attributes,
		})
		total += unitCents * in.Qty
	}
	return items, total, nil
}

// settleItems reserves stock and posts commission for each line item.
// Inventory failures abort immediately; commission failures are collected
// across all items so the aggregate error can name how many failed, then
// the whole transaction rolls back.
func (s *service) settleItems(ctx context.Context, tx *gorm.DB, order *models.Order) (*CommissionSummary, error) {
	summary := &CommissionSummary{ItemCount: len(order.Items)}

	var settleErr error
	failed := 0
	for _, item := range order.Items {
		if err := s.inventory.Adjust(ctx, tx, item, inventory.DirectionReserve); err != nil {
			return nil, err
		}

		split, err := s.engine.SettleLineItem(ctx, tx, order, item)
		if err != nil {
			failed++
			settleErr = multierr.Append(settleErr, fmt.Errorf("line item %s: %w", item.ID, err))
			continue
		}
		summary.SellerEarningsCents += split.SellerEarningCents
		summary.AdminCommissionCents += split.AdminCommissionCents
		if split.Resolution.Degraded() {
			summary.DegradedItems++
		}
	}
	if settleErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, settleErr,
			fmt.Sprintf("commission settlement failed for %d of %d items", failed, len(order.Items)))
	}
	return summary, nil
}
