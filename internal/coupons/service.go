package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
)

// CreateCouponInput carries the admin-supplied coupon definition.
type CreateCouponInput struct {
	Code             string
	Type             enums.CouponDiscountType
	Value            int
	MinOrderCents    int
	MaxDiscountCents *int
	StartsAt         *time.Time
	ExpiresAt        *time.Time
	UsageLimit       *int
	PerUserLimit     *int
}

// Service validates and redeems discount codes.
type Service interface {
	Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	// Validate checks every redemption rule and returns the coupon plus the
	// discount it would grant for the given order total. Read-only.
	Validate(ctx context.Context, code string, userID uuid.UUID, orderTotalCents int) (*models.Coupon, int, error)
	// Redeem re-validates inside the caller's transaction, bumps the usage
	// counter and records the redemption.
	Redeem(ctx context.Context, tx *gorm.DB, code string, userID, orderID uuid.UUID, orderTotalCents int) (int, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires a coupon service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid coupon type %q", input.Type))
	}
	if input.Value <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon value must be positive")
	}
	if input.Type == enums.CouponDiscountPercentage && input.Value > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage value cannot exceed 100")
	}

	coupon := models.Coupon{
		Code:             code,
		Type:             input.Type,
		Value:            input.Value,
		MinOrderCents:    input.MinOrderCents,
		MaxDiscountCents: input.MaxDiscountCents,
		StartsAt:         input.StartsAt,
		ExpiresAt:        input.ExpiresAt,
		UsageLimit:       input.UsageLimit,
		PerUserLimit:     input.PerUserLimit,
		IsActive:         true,
	}
	if err := s.repo.Create(ctx, &coupon); err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (s *service) List(ctx context.Context) ([]models.Coupon, error) {
	return s.repo.List(ctx)
}

func (s *service) Validate(ctx context.Context, code string, userID uuid.UUID, orderTotalCents int) (*models.Coupon, int, error) {
	return s.validate(ctx, s.repo, code, userID, orderTotalCents)
}

func (s *service) validate(ctx context.Context, repo Repository, code string, userID uuid.UUID, orderTotalCents int) (*models.Coupon, int, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	coupon, err := repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, 0, err
	}

	now := s.now()
	switch {
	case !coupon.IsActive:
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "coupon is not active")
	case coupon.StartsAt != nil && now.Before(*coupon.StartsAt):
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "coupon is not yet valid")
	case coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt):
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired")
	case coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit:
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "coupon usage limit reached")
	case orderTotalCents < coupon.MinOrderCents:
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "order total below coupon minimum").
			WithDetails(map[string]any{"minOrderCents": coupon.MinOrderCents})
	}

	if coupon.PerUserLimit != nil {
		used, err := repo.CountRedemptionsByUser(ctx, coupon.ID, userID)
		if err != nil {
			return nil, 0, err
		}
		if used >= int64(*coupon.PerUserLimit) {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "coupon per-user limit reached")
		}
	}

	return coupon, discountFor(coupon, orderTotalCents), nil
}

func (s *service) Redeem(ctx context.Context, tx *gorm.DB, code string, userID, orderID uuid.UUID, orderTotalCents int) (int, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction required")
	}

	repo := s.repo.WithTx(tx)
	coupon, discountCents, err := s.validate(ctx, repo, code, userID, orderTotalCents)
	if err != nil {
		return 0, err
	}

	if err := repo.IncrementUsage(ctx, coupon.ID); err != nil {
		return 0, fmt.Errorf("incrementing coupon usage: %w", err)
	}
	redemption := models.CouponRedemption{
		CouponID:      coupon.ID,
		UserID:        userID,
		OrderID:       orderID,
		DiscountCents: discountCents,
	}
	if err := repo.CreateRedemption(ctx, &redemption); err != nil {
		return 0, fmt.Errorf("recording coupon redemption: %w", err)
	}
	return discountCents, nil
}

func discountFor(coupon *models.Coupon, orderTotalCents int) int {
	var discount int
	switch coupon.Type {
	case enums.CouponDiscountPercentage:
		d := decimal.NewFromInt(int64(orderTotalCents)).
			Mul(decimal.NewFromInt(int64(coupon.Value))).
			Div(decimal.NewFromInt(100)).
			Round(0)
		discount = int(d.IntPart())
	case enums.CouponDiscountFixed:
		discount = coupon.Value
	}
	if coupon.MaxDiscountCents != nil && discount > *coupon.MaxDiscountCents {
		discount = *coupon.MaxDiscountCents
	}
	if discount > orderTotalCents {
		discount = orderTotalCents
	}
	return discount
}
