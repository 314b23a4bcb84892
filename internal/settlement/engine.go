package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/internal/users"
	"github.com/hngo-dev/meshmart-backend/internal/wallet"
	"github.com/hngo-dev/meshmart-backend/pkg/config"
	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
	"github.com/hngo-dev/meshmart-backend/pkg/metrics"
)

// Split is the outcome of settling one line item.
type Split struct {
	SellerID             uuid.UUID
	SellerEarningCents   int
	AdminCommissionCents int
	Resolution           SellerResolution
}

// Engine computes the commission split for a line item and posts the
// matching wallet mutations and ledger rows inside the caller's transaction.
type Engine interface {
	SettleLineItem(ctx context.Context, tx *gorm.DB, order *models.Order, item models.OrderLineItem) (*Split, error)
}

type engine struct {
	users   users.Repository
	wallets wallet.Repository
	cfg     config.SettlementConfig
	logg    *logger.Logger
	metrics *metrics.SettlementMetrics
}

// NewEngine builds a commission engine.
func NewEngine(usersRepo users.Repository, walletRepo wallet.Repository, cfg config.SettlementConfig, logg *logger.Logger, m *metrics.SettlementMetrics) (Engine, error) {
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if walletRepo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.CommissionBasisPoints < 0 || cfg.CommissionBasisPoints > 10000 {
		return nil, fmt.Errorf("commission basis points out of range: %d", cfg.CommissionBasisPoints)
	}
	return &engine{
		users:   usersRepo,
		wallets: walletRepo,
		cfg:     cfg,
		logg:    logg,
		metrics: m,
	}, nil
}

// CommissionSplit computes (sellerEarning, adminCommission) in cents for a
// gross amount. The commission is rounded to the nearest cent; the seller
// receives the exact remainder so the two always sum to the gross.
func CommissionSplit(grossCents int, basisPoints int) (sellerCents, commissionCents int) {
	gross := decimal.NewFromInt(int64(grossCents))
	rate := decimal.NewFromInt(int64(basisPoints)).Div(decimal.NewFromInt(10000))
	commission := gross.Mul(rate).Round(0)
	commissionCents = int(commission.IntPart())
	sellerCents = grossCents - commissionCents
	return sellerCents, commissionCents
}

func (e *engine) SettleLineItem(ctx context.Context, tx *gorm.DB, order *models.Order, item models.OrderLineItem) (*Split, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if item.UnitPriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item price must be positive")
	}
	if item.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item quantity must be positive")
	}

	usersRepo := e.users.WithTx(tx)
	walletRepo := e.wallets.WithTx(tx)

	resolution, err := resolveSeller(ctx, usersRepo, item.SellerID)
	if err != nil {
		return nil, fmt.Errorf("resolving seller for line item %s: %w", item.ID, err)
	}
	if resolution.Outcome == OutcomeUnresolved {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "no seller account exists to credit")
	}
	if resolution.Degraded() {
		logCtx := e.logg.WithFields(ctx, map[string]any{
			"order_id":     order.ID.String(),
			"line_item_id": item.ID.String(),
			"seller_id":    resolution.Seller.ID.String(),
			"reason":       resolution.Reason,
		})
		e.logg.Warn(logCtx, "degraded seller resolution during settlement")
	}

	if _, err := usersRepo.FindAdmin(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "admin user not found")
	}

	grossCents := item.UnitPriceCents * item.Qty
	sellerCents, commissionCents := CommissionSplit(grossCents, e.cfg.CommissionBasisPoints)

	inCurrentMonth := paidInCurrentMonth(order, time.Now())

	sellerWallet, err := walletRepo.FirstOrCreateSellerWallet(ctx, resolution.Seller.ID)
	if err != nil {
		return nil, fmt.Errorf("loading seller wallet: %w", err)
	}
	sellerUpdates := map[string]any{
		"balance_cents":        sellerWallet.BalanceCents + sellerCents,
		"total_earnings_cents": sellerWallet.TotalEarningsCents + sellerCents,
	}
	if inCurrentMonth {
		sellerUpdates["this_month_earnings_cents"] = sellerWallet.ThisMonthEarningsCents + sellerCents
	}
	if err := walletRepo.UpdateSellerWallet(ctx, sellerWallet.ID, sellerUpdates); err != nil {
		return nil, fmt.Errorf("crediting seller wallet: %w", err)
	}

	adminWallet, err := walletRepo.FirstOrCreateAdminWallet(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading admin wallet: %w", err)
	}
	adminUpdates := map[string]any{
		"balance_cents":        adminWallet.BalanceCents + commissionCents,
		"total_earnings_cents": adminWallet.TotalEarningsCents + commissionCents,
	}
	if inCurrentMonth {
		adminUpdates["this_month_earnings_cents"] = adminWallet.ThisMonthEarningsCents + commissionCents
	}
	if err := walletRepo.UpdateAdminWallet(ctx, adminUpdates); err != nil {
		return nil, fmt.Errorf("crediting admin wallet: %w", err)
	}

	metadata, err := settlementMetadata(order, item, e.cfg.CommissionBasisPoints, resolution)
	if err != nil {
		return nil, err
	}

	sellerTx := models.WalletTransaction{
		WalletType:  enums.WalletTypeSeller,
		SellerID:    &resolution.Seller.ID,
		OrderID:     &order.ID,
		Direction:   enums.TransactionDirectionCredit,
		AmountCents: sellerCents,
		Description: fmt.Sprintf("Earning for %q x%d", item.Name, item.Qty),
		Status:      enums.TransactionStatusCompleted,
		Metadata:    metadata,
	}
	if err := walletRepo.CreateTransaction(ctx, &sellerTx); err != nil {
		return nil, fmt.Errorf("recording seller ledger entry: %w", err)
	}

	adminTx := models.WalletTransaction{
		WalletType:  enums.WalletTypeAdmin,
		SellerID:    &resolution.Seller.ID,
		OrderID:     &order.ID,
		Direction:   enums.TransactionDirectionCredit,
		AmountCents: commissionCents,
		Description: fmt.Sprintf("Commission for %q x%d", item.Name, item.Qty),
		Status:      enums.TransactionStatusCompleted,
		Metadata:    metadata,
	}
	if err := walletRepo.CreateTransaction(ctx, &adminTx); err != nil {
		return nil, fmt.Errorf("recording admin ledger entry: %w", err)
	}

	e.metrics.IncItemSettled(string(resolution.Outcome))
	e.metrics.AddSellerCents(sellerCents)
	e.metrics.AddCommissionCents(commissionCents)

	return &Split{
		SellerID:             resolution.Seller.ID,
		SellerEarningCents:   sellerCents,
		AdminCommissionCents: commissionCents,
		Resolution:           resolution,
	}, nil
}

func paidInCurrentMonth(order *models.Order, now time.Time) bool {
	if order.PaidAt == nil {
		return false
	}
	paid := order.PaidAt.UTC()
	now = now.UTC()
	return paid.Year() == now.Year() && paid.Month() == now.Month()
}

func settlementMetadata(order *models.Order, item models.OrderLineItem, basisPoints int, resolution SellerResolution) (json.RawMessage, error) {
	meta := map[string]any{
		"orderId":               order.ID.String(),
		"lineItemId":            item.ID.String(),
		"qty":                   item.Qty,
		"unitPriceCents":        item.UnitPriceCents,
		"commissionBasisPoints": basisPoints,
		"counterpartySellerId":  resolution.Seller.ID.String(),
	}
	if resolution.Degraded() {
		meta["degradedResolution"] = true
		meta["degradedReason"] = resolution.Reason
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encoding settlement metadata: %w", err)
	}
	return raw, nil
}
