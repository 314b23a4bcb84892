package orders

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/internal/inventory"
	"github.com/hngo-dev/meshmart-backend/internal/products"
	"github.com/hngo-dev/meshmart-backend/internal/settlement"
	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
	"github.com/hngo-dev/meshmart-backend/pkg/outbox"
	"github.com/hngo-dev/meshmart-backend/pkg/pagination"
	"github.com/hngo-dev/meshmart-backend/pkg/types"
)

type stubOrdersRepo struct {
	created *models.Order
	order   *models.Order
	updates map[string]any

	findByID func(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) error {
	s.created = order
	return nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	if s.order == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrdersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.updates == nil {
		s.updates = map[string]any{}
	}
	for key, value := range updates {
		s.updates[key] = value
	}
	return nil
}

func (s *stubOrdersRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	panic("not implemented")
}

type stubCatalog struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubCatalog) add(product *models.Product) {
	if s.products == nil {
		s.products = map[uuid.UUID]*models.Product{}
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.products[product.ID] = product
}

func (s *stubCatalog) WithTx(tx *gorm.DB) products.Repository { return s }

func (s *stubCatalog) Create(ctx context.Context, product *models.Product) error {
	s.add(product)
	return nil
}

func (s *stubCatalog) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (s *stubCatalog) UpdateStock(ctx context.Context, id uuid.UUID, stockQty int) error {
	s.products[id].StockQty = stockQty
	return nil
}

func (s *stubCatalog) UpdateVariantStock(ctx context.Context, variantID uuid.UUID, stockQty int) error {
	return nil
}

type adjustCall struct {
	itemID    uuid.UUID
	direction inventory.Direction
}

type stubAdjuster struct {
	calls []adjustCall
	err   error
}

func (s *stubAdjuster) Adjust(ctx context.Context, tx *gorm.DB, item models.OrderLineItem, direction inventory.Direction) error {
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, adjustCall{itemID: item.ID, direction: direction})
	return nil
}

type stubEngine struct {
	settled []uuid.UUID
	errFor  map[uuid.UUID]error
}

func (s *stubEngine) SettleLineItem(ctx context.Context, tx *gorm.DB, order *models.Order, item models.OrderLineItem) (*settlement.Split, error) {
	if err, ok := s.errFor[item.ID]; ok {
		return nil, err
	}
	s.settled = append(s.settled, item.ID)
	gross := item.UnitPriceCents * item.Qty
	sellerCents, commissionCents := settlement.CommissionSplit(gross, 200)
	return &settlement.Split{
		SellerID:             item.SellerID,
		SellerEarningCents:   sellerCents,
		AdminCommissionCents: commissionCents,
		Resolution:           settlement.SellerResolution{Outcome: settlement.OutcomeResolved},
	}, nil
}

type stubCoupons struct {
	discount int
	err      error
	redeemed []string
}

func (s *stubCoupons) Redeem(ctx context.Context, tx *gorm.DB, code string, userID, orderID uuid.UUID, orderTotalCents int) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.redeemed = append(s.redeemed, code)
	return s.discount, nil
}

type creditCall struct {
	userID      uuid.UUID
	amountCents int
	direction   enums.TransactionDirection
	reason      enums.CreditReason
}

type stubCredit struct {
	calls    []creditCall
	debitErr error
}

func (s *stubCredit) Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amountCents int, orderID *uuid.UUID, reason enums.CreditReason, description string) (*models.CreditTransaction, error) {
	if s.debitErr != nil {
		return nil, s.debitErr
	}
	s.calls = append(s.calls, creditCall{userID: userID, amountCents: amountCents, direction: enums.TransactionDirectionDebit, reason: reason})
	return &models.CreditTransaction{}, nil
}

func (s *stubCredit) Credit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amountCents int, orderID *uuid.UUID, reason enums.CreditReason, description string) (*models.CreditTransaction, error) {
	s.calls = append(s.calls, creditCall{userID: userID, amountCents: amountCents, direction: enums.TransactionDirectionCredit, reason: reason})
	return &models.CreditTransaction{}, nil
}

func (s *stubCredit) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}

func (s *stubCredit) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.CreditTransaction, *pagination.Cursor, error) {
	panic("not implemented")
}

type stubNotify struct {
	placed   int
	changed  int
	refunded int
}

func (s *stubNotify) NotifyOrderPlaced(ctx context.Context, userID, orderID uuid.UUID) { s.placed++ }

func (s *stubNotify) NotifyStatusChanged(ctx context.Context, userID, orderID uuid.UUID, status enums.OrderStatus) {
	s.changed++
}

func (s *stubNotify) NotifyOrderRefunded(ctx context.Context, userID, orderID uuid.UUID, refundCents int) {
	s.refunded++
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type orderTestDeps struct {
	repo     *stubOrdersRepo
	catalog  *stubCatalog
	adjuster *stubAdjuster
	engine   *stubEngine
	coupons  *stubCoupons
	credit   *stubCredit
	notify   *stubNotify
	outbox   *stubOutbox
}

func newTestOrderService(t *testing.T, deps *orderTestDeps) Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(
		deps.repo,
		deps.catalog,
		deps.adjuster,
		deps.engine,
		deps.coupons,
		deps.credit,
		deps.notify,
		stubTxRunner{},
		deps.outbox,
		logg,
		nil,
	)
	require.NoError(t, err)
	return svc
}

func defaultOrderDeps() *orderTestDeps {
	return &orderTestDeps{
		repo:     &stubOrdersRepo{},
		catalog:  &stubCatalog{},
		adjuster: &stubAdjuster{},
		engine:   &stubEngine{},
		coupons:  &stubCoupons{},
		credit:   &stubCredit{},
		notify:   &stubNotify{},
		outbox:   &stubOutbox{},
	}
}

func TestCreateOrderSettlesAndEmits(t *testing.T) {
	deps := defaultOrderDeps()
	deps.coupons.discount = 500

	sellerID := uuid.New()
	product := &models.Product{SellerID: sellerID, Name: "Cedar Shelf", PriceCents: 2500, StockQty: 5}
	deps.catalog.add(product)

	svc := newTestOrderService(t, deps)

	userID := uuid.New()
	coupon := "SAVE10"
	result, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:         userID,
		Items:          []LineItemInput{{ProductID: product.ID, Qty: 2}},
		PaymentMethod:  "card",
		TaxCents:       100,
		ShipCents:      200,
		CouponCode:     &coupon,
		UseCreditCents: 300,
	})
	require.NoError(t, err)

	order := deps.repo.created
	require.NotNil(t, order)
	assert.Equal(t, enums.OrderStatusProcessing, order.Status)
	assert.True(t, order.IsPaid)
	require.NotNil(t, order.PaidAt)
	require.NotNil(t, order.PaymentResult)
	assert.Equal(t, "COMPLETED", order.PaymentResult.Status)

	// items 5000 + tax 100 + ship 200 - discount 500
	assert.Equal(t, 5000, order.ItemsPriceCents)
	assert.Equal(t, 500, order.DiscountCents)
	assert.Equal(t, 4800, order.TotalPriceCents)
	assert.Equal(t, 300, order.CreditUsedCents)

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, sellerID, item.SellerID)
	assert.Equal(t, "Cedar Shelf", item.Name)
	assert.Equal(t, 2500, item.UnitPriceCents)
	assert.Equal(t, order.ID, item.OrderID)

	assert.Equal(t, []string{"SAVE10"}, deps.coupons.redeemed)
	require.Len(t, deps.credit.calls, 1)
	assert.Equal(t, enums.TransactionDirectionDebit, deps.credit.calls[0].direction)
	assert.Equal(t, 300, deps.credit.calls[0].amountCents)
	assert.Equal(t, enums.CreditReasonOrderPayment, deps.credit.calls[0].reason)

	require.Len(t, deps.adjuster.calls, 1)
	assert.Equal(t, inventory.DirectionReserve, deps.adjuster.calls[0].direction)
	assert.Len(t, deps.engine.settled, 1)

	require.NotNil(t, result.Commission)
	assert.Equal(t, 1, result.Commission.ItemCount)
	assert.Equal(t, 4900, result.Commission.SellerEarningsCents)
	assert.Equal(t, 100, result.Commission.AdminCommissionCents)
	assert.Equal(t, 0, result.Commission.DegradedItems)

	require.Len(t, deps.outbox.events, 1)
	assert.Equal(t, enums.EventOrderCreated, deps.outbox.events[0].EventType)
	assert.Equal(t, order.ID, deps.outbox.events[0].AggregateID)
	assert.Equal(t, 1, deps.notify.placed)
}

func TestCreateOrderValidation(t *testing.T) {
	deps := defaultOrderDeps()
	svc := newTestOrderService(t, deps)

	cases := []struct {
		name  string
		input CreateOrderInput
	}{
		{"missing user", CreateOrderInput{Items: []LineItemInput{{ProductID: uuid.New(), Qty: 1}}, PaymentMethod: "card"}},
		{"no items", CreateOrderInput{UserID: uuid.New(), PaymentMethod: "card"}},
		{"no payment method", CreateOrderInput{UserID: uuid.New(), Items: []LineItemInput{{ProductID: uuid.New(), Qty: 1}}}},
		{"negative credit", CreateOrderInput{UserID: uuid.New(), Items: []LineItemInput{{ProductID: uuid.New(), Qty: 1}}, PaymentMethod: "card", UseCreditCents: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestCreateOrderCreditExceedsTotal(t *testing.T) {
	deps := defaultOrderDeps()
	product := &models.Product{SellerID: uuid.New(), Name: "Coaster", PriceCents: 500, StockQty: 5}
	deps.catalog.add(product)
	svc := newTestOrderService(t, deps)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:         uuid.New(),
		Items:          []LineItemInput{{ProductID: product.ID, Qty: 1}},
		PaymentMethod:  "card",
		UseCreditCents: 600,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Empty(t, deps.credit.calls)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	deps := defaultOrderDeps()
	svc := newTestOrderService(t, deps)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:        uuid.New(),
		Items:         []LineItemInput{{ProductID: uuid.New(), Qty: 1}},
		PaymentMethod: "card",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreateOrderVariantPriceAndMismatch(t *testing.T) {
	deps := defaultOrderDeps()
	sellerID := uuid.New()
	product := &models.Product{
		SellerID:    sellerID,
		Name:        "Club Chair",
		PriceCents:  10000,
		HasVariants: true,
		Variants: []models.ProductVariant{
			{
				ID:         uuid.New(),
				Attributes: types.VariantAttributes{{Name: "Fabric", Value: "Linen"}},
				PriceCents: 12500,
				StockQty:   3,
			},
		},
	}
	deps.catalog.add(product)
	svc := newTestOrderService(t, deps)

	result, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:        uuid.New(),
		Items:         []LineItemInput{{ProductID: product.ID, Qty: 1, Attributes: types.VariantAttributes{{Name: "fabric", Value: "Linen"}}}},
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, 12500, result.Order.Items[0].UnitPriceCents, "variant price overrides the base price")

	_, err = svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:        uuid.New(),
		Items:         []LineItemInput{{ProductID: product.ID, Qty: 1, Attributes: types.VariantAttributes{{Name: "Fabric", Value: "Velvet"}}}},
		PaymentMethod: "card",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCreateOrderAbortsOnOutOfStock(t *testing.T) {
	deps := defaultOrderDeps()
	deps.adjuster.err = pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock")
	product := &models.Product{SellerID: uuid.New(), Name: "Bench", PriceCents: 9000, StockQty: 0}
	deps.catalog.add(product)
	svc := newTestOrderService(t, deps)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:        uuid.New(),
		Items:         []LineItemInput{{ProductID: product.ID, Qty: 1}},
		PaymentMethod: "card",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeOutOfStock, typed.Code())
	assert.Empty(t, deps.engine.settled, "settlement must not run after a stock failure")
	assert.Equal(t, 0, deps.notify.placed)
}

func TestCreateOrderAggregatesSettlementFailures(t *testing.T) {
	deps := defaultOrderDeps()
	product := &models.Product{SellerID: uuid.New(), Name: "Stool", PriceCents: 3000, StockQty: 9}
	deps.catalog.add(product)

	// The line item ID is minted inside the service, so fail every item.
	svc, err := NewService(
		deps.repo, deps.catalog, deps.adjuster, failEverythingEngine{}, deps.coupons, deps.credit, deps.notify,
		stubTxRunner{}, deps.outbox,
		logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard}), nil,
	)
	require.NoError(t, err)

	_, err = svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:        uuid.New(),
		Items:         []LineItemInput{{ProductID: product.ID, Qty: 1}},
		PaymentMethod: "card",
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInternal, typed.Code())
	assert.Contains(t, typed.Message(), "commission settlement failed for 1 of 1 items")
	assert.Equal(t, 0, deps.notify.placed)
}

type failEverythingEngine struct{}

func (failEverythingEngine) SettleLineItem(ctx context.Context, tx *gorm.DB, order *models.Order, item models.OrderLineItem) (*settlement.Split, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "no seller account exists to credit")
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	deps := defaultOrderDeps()
	deps.repo.order = &models.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		IsPaid: true,
		Status: enums.OrderStatusProcessing,
	}
	svc := newTestOrderService(t, deps)

	result, err := svc.MarkPaid(context.Background(), PayOrderInput{
		OrderID:       deps.repo.order.ID,
		PaymentResult: types.PaymentResult{ID: "gw-1", Status: "COMPLETED"},
	})
	require.NoError(t, err)
	assert.True(t, result.Commission.AlreadyPaid)
	assert.Empty(t, deps.engine.settled)
	assert.Empty(t, deps.adjuster.calls)
	assert.Empty(t, deps.outbox.events)
	assert.Equal(t, 0, deps.notify.placed)
}

func TestMarkPaidSettlesUnpaidOrder(t *testing.T) {
	deps := defaultOrderDeps()
	sellerID := uuid.New()
	deps.repo.order = &models.Order{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		Status:          enums.OrderStatusPending,
		TotalPriceCents: 6000,
		Items: []models.OrderLineItem{
			{ID: uuid.New(), SellerID: sellerID, Name: "Lamp", UnitPriceCents: 6000, Qty: 1},
		},
	}
	svc := newTestOrderService(t, deps)

	result, err := svc.MarkPaid(context.Background(), PayOrderInput{
		OrderID:       deps.repo.order.ID,
		PaymentResult: types.PaymentResult{ID: "gw-2", Status: "COMPLETED", PayerEmail: "buyer@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, true, deps.repo.updates["is_paid"])
	assert.Equal(t, enums.OrderStatusProcessing, deps.repo.updates["status"])
	assert.Contains(t, deps.repo.updates, "paid_at")
	assert.Contains(t, deps.repo.updates, "payment_result")

	assert.Len(t, deps.engine.settled, 1)
	assert.False(t, result.Commission.AlreadyPaid)
	assert.Equal(t, 5880, result.Commission.SellerEarningsCents)
	assert.Equal(t, 120, result.Commission.AdminCommissionCents)

	require.Len(t, deps.outbox.events, 1)
	assert.Equal(t, enums.EventOrderPaid, deps.outbox.events[0].EventType)
	assert.Equal(t, 1, deps.notify.placed)
}

func TestMarkPaidUnknownOrder(t *testing.T) {
	deps := defaultOrderDeps()
	svc := newTestOrderService(t, deps)

	_, err := svc.MarkPaid(context.Background(), PayOrderInput{OrderID: uuid.New()})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateStatusCancelRefundsOnce(t *testing.T) {
	deps := defaultOrderDeps()
	userID := uuid.New()
	deps.repo.order = &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          enums.OrderStatusProcessing,
		TotalPriceCents: 5000,
		Items: []models.OrderLineItem{
			{ID: uuid.New(), SellerID: uuid.New(), Name: "Rug", UnitPriceCents: 5000, Qty: 1},
		},
	}
	svc := newTestOrderService(t, deps)

	order, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: deps.repo.order.ID,
		Status:  enums.OrderStatusCancelled,
	})
	require.NoError(t, err)

	require.Len(t, deps.credit.calls, 1)
	assert.Equal(t, enums.TransactionDirectionCredit, deps.credit.calls[0].direction)
	assert.Equal(t, 5000, deps.credit.calls[0].amountCents)
	assert.Equal(t, enums.CreditReasonOrderCancelled, deps.credit.calls[0].reason)
	assert.Equal(t, userID, deps.credit.calls[0].userID)

	require.Len(t, deps.adjuster.calls, 1)
	assert.Equal(t, inventory.DirectionRestore, deps.adjuster.calls[0].direction)

	assert.Equal(t, true, deps.repo.updates["refunded_to_credit"])
	assert.Equal(t, 5000, deps.repo.updates["refund_cents"])
	assert.True(t, order.RefundedToCredit)
	assert.Equal(t, 5000, order.RefundCents)

	require.Len(t, deps.outbox.events, 1)
	assert.Equal(t, enums.EventOrderCanceled, deps.outbox.events[0].EventType)
	assert.Equal(t, 1, deps.notify.refunded)
	assert.Equal(t, 0, deps.notify.changed)
}

func TestUpdateStatusSecondCancelDoesNotDoubleRefund(t *testing.T) {
	deps := defaultOrderDeps()
	deps.repo.order = &models.Order{
		ID:               uuid.New(),
		UserID:           uuid.New(),
		Status:           enums.OrderStatusCancelled,
		TotalPriceCents:  5000,
		RefundedToCredit: true,
		RefundCents:      5000,
		Items: []models.OrderLineItem{
			{ID: uuid.New(), SellerID: uuid.New(), Name: "Rug", UnitPriceCents: 5000, Qty: 1},
		},
	}
	svc := newTestOrderService(t, deps)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: deps.repo.order.ID,
		Status:  enums.OrderStatusCancelled,
	})
	require.NoError(t, err)

	assert.Empty(t, deps.credit.calls)
	assert.Empty(t, deps.adjuster.calls)
	assert.Empty(t, deps.outbox.events)
	assert.Equal(t, 0, deps.notify.refunded)
	assert.Equal(t, 1, deps.notify.changed)
}

func TestUpdateStatusReturnedUsesReturnReason(t *testing.T) {
	deps := defaultOrderDeps()
	deps.repo.order = &models.Order{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		Status:          enums.OrderStatusDelivered,
		TotalPriceCents: 2500,
	}
	svc := newTestOrderService(t, deps)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: deps.repo.order.ID,
		Status:  enums.OrderStatusReturned,
	})
	require.NoError(t, err)

	require.Len(t, deps.credit.calls, 1)
	assert.Equal(t, enums.CreditReasonOrderReturned, deps.credit.calls[0].reason)
	require.Len(t, deps.outbox.events, 1)
	assert.Equal(t, enums.EventOrderReturned, deps.outbox.events[0].EventType)
}

func TestUpdateStatusDelivered(t *testing.T) {
	deps := defaultOrderDeps()
	deps.repo.order = &models.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: enums.OrderStatusShipped,
	}
	svc := newTestOrderService(t, deps)

	order, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: deps.repo.order.ID,
		Status:  enums.OrderStatusDelivered,
	})
	require.NoError(t, err)

	assert.Equal(t, true, deps.repo.updates["is_delivered"])
	assert.Contains(t, deps.repo.updates, "delivered_at")
	assert.True(t, order.IsDelivered)
	assert.Equal(t, 1, deps.notify.changed)
}

func TestUpdateStatusRejectsInvalidStatus(t *testing.T) {
	deps := defaultOrderDeps()
	svc := newTestOrderService(t, deps)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: uuid.New(),
		Status:  enums.OrderStatus("teleported"),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
