package controllers

import (
	"net/http"
	"strings"

	"github.com/hngo-dev/meshmart-backend/api/middleware"
	"github.com/hngo-dev/meshmart-backend/api/responses"
	"github.com/hngo-dev/meshmart-backend/api/validators"
	internalorders "github.com/hngo-dev/meshmart-backend/internal/orders"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
	"github.com/hngo-dev/meshmart-backend/pkg/pagination"
	"github.com/hngo-dev/meshmart-backend/pkg/types"
)

type createOrderRequest struct {
	Items           []internalorders.LineItemInput `json:"items" validate:"required,min=1,dive"`
	ShippingAddress *types.Address                 `json:"shippingAddress"`
	PaymentMethod   string                         `json:"paymentMethod" validate:"required"`
	TaxCents        int                            `json:"taxCents" validate:"min=0"`
	ShipCents       int                            `json:"shipCents" validate:"min=0"`
	CouponCode      *string                        `json:"couponCode,omitempty"`
	UseCreditCents  int                            `json:"useCreditCents" validate:"min=0"`
}

type payOrderRequest struct {
	PaymentResult types.PaymentResult `json:"paymentResult" validate:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderCreate creates and immediately settles an order for the
// authenticated buyer.
func OrderCreate(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserUUIDFromContext(r.Context())
		result, err := svc.CreateOrder(r.Context(), internalorders.CreateOrderInput{
			UserID:          userID,
			Items:           body.Items,
			ShippingAddress: body.ShippingAddress,
			PaymentMethod:   body.PaymentMethod,
			TaxCents:        body.TaxCents,
			ShipCents:       body.ShipCents,
			CouponCode:      body.CouponCode,
			UseCreditCents:  body.UseCreditCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// OrderPay confirms payment for an existing order. Replays on an
// already-paid order succeed without re-settling.
func OrderPay(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body payOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MarkPaid(r.Context(), internalorders.PayOrderInput{
			OrderID:       orderID,
			PaymentResult: body.PaymentResult,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// OrderUpdateStatus transitions an order's lifecycle status, triggering the
// refund-to-credit path for cancellations and returns.
func OrderUpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), internalorders.UpdateStatusInput{
			OrderID: orderID,
			Status:  status,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// OrderDetail returns a single order. Buyers only see their own orders;
// admins see everything.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role := middleware.RoleFromContext(r.Context())
		if role != string(enums.UserRoleAdmin) && order.UserID != middleware.UserUUIDFromContext(r.Context()) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// OrderListMine pages through the authenticated buyer's orders.
func OrderListMine(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByUser(r.Context(), middleware.UserUUIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders"))
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrderListSeller pages through orders containing at least one of the
// authenticated seller's line items.
func OrderListSeller(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListBySeller(r.Context(), middleware.UserUUIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller orders"))
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
