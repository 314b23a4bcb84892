package controllers

import (
	"net/http"
	"time"

	"github.com/hngo-dev/meshmart-backend/api/middleware"
	"github.com/hngo-dev/meshmart-backend/api/responses"
	"github.com/hngo-dev/meshmart-backend/api/validators"
	internalcoupons "github.com/hngo-dev/meshmart-backend/internal/coupons"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
)

type createCouponRequest struct {
	Code             string     `json:"code" validate:"required,min=3,max=32"`
	Type             string     `json:"type" validate:"required,oneof=percentage fixed"`
	Value            int        `json:"value" validate:"required,gt=0"`
	MinOrderCents    int        `json:"minOrderCents" validate:"min=0"`
	MaxDiscountCents *int       `json:"maxDiscountCents,omitempty"`
	StartsAt         *time.Time `json:"startsAt,omitempty"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	UsageLimit       *int       `json:"usageLimit,omitempty"`
	PerUserLimit     *int       `json:"perUserLimit,omitempty"`
}

type validateCouponRequest struct {
	Code            string `json:"code" validate:"required"`
	OrderTotalCents int    `json:"orderTotalCents" validate:"required,gt=0"`
}

// CouponCreate lets admins define a discount code.
func CouponCreate(svc internalcoupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupons service unavailable"))
			return
		}

		var body createCouponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Create(r.Context(), internalcoupons.CreateCouponInput{
			Code:             body.Code,
			Type:             enums.CouponDiscountType(body.Type),
			Value:            body.Value,
			MinOrderCents:    body.MinOrderCents,
			MaxDiscountCents: body.MaxDiscountCents,
			StartsAt:         body.StartsAt,
			ExpiresAt:        body.ExpiresAt,
			UsageLimit:       body.UsageLimit,
			PerUserLimit:     body.PerUserLimit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

// CouponList returns all coupons for the admin dashboard.
func CouponList(svc internalcoupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupons service unavailable"))
			return
		}

		coupons, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons"))
			return
		}
		responses.WriteSuccess(w, coupons)
	}
}

// CouponValidate dry-runs a code against the caller's cart total without
// consuming a redemption.
func CouponValidate(svc internalcoupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupons service unavailable"))
			return
		}

		var body validateCouponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, discount, err := svc.Validate(r.Context(), body.Code, middleware.UserUUIDFromContext(r.Context()), body.OrderTotalCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"coupon":        coupon,
			"discountCents": discount,
		})
	}
}
