package controllers

import (
	"net/http"
	"strings"

	"github.com/hngo-dev/meshmart-backend/api/middleware"
	"github.com/hngo-dev/meshmart-backend/api/responses"
	"github.com/hngo-dev/meshmart-backend/api/validators"
	internalwallet "github.com/hngo-dev/meshmart-backend/internal/wallet"
	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
	"github.com/hngo-dev/meshmart-backend/pkg/pagination"
	"github.com/hngo-dev/meshmart-backend/pkg/types"
)

type withdrawalRequestBody struct {
	AmountCents int               `json:"amountCents" validate:"required,gt=0"`
	BankDetails types.BankDetails `json:"bankDetails" validate:"required"`
	Note        *string           `json:"note,omitempty"`
}

type rejectWithdrawalBody struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type transactionPage struct {
	Transactions []models.WalletTransaction `json:"transactions"`
	NextCursor   *pagination.Cursor         `json:"nextCursor,omitempty"`
}

// SellerWalletDetail returns the authenticated seller's wallet with its
// recent ledger page.
func SellerWalletDetail(svc internalwallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetSellerWallet(r.Context(), middleware.UserUUIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// SellerWalletStats returns the seller's dashboard aggregates.
func SellerWalletStats(svc internalwallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		stats, err := svc.SellerStats(r.Context(), middleware.UserUUIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// WithdrawalCreate reserves funds and opens a pending payout request.
func WithdrawalCreate(svc internalwallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		var body withdrawalRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.RequestWithdrawal(r.Context(), internalwallet.WithdrawalRequestInput{
			SellerID:    middleware.UserUUIDFromContext(r.Context()),
			AmountCents: body.AmountCents,
			BankDetails: body.BankDetails,
			Note:        body.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// WithdrawalListMine lists the authenticated seller's payout requests.
func WithdrawalListMine(svc internalwallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		sellerID := middleware.UserUUIDFromContext(r.Context())
		filters := internalwallet.WithdrawalFilters{SellerID: &sellerID}
		if status, err := parseWithdrawalStatus(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if status != "" {
			filters.Status = status
		}

		rows, err := svc.ListWithdrawals(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list withdrawals"))
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AdminWalletDetail returns the platform commission wallet.
func AdminWalletDetail(svc internalwallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		wallet, err := svc.GetAdminWallet(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin wallet"))
			return
		}
		responses.WriteSuccess(w, wallet)
	}
}

// AdminWalletStats returns platform-wide ledger aggregates.
func AdminWalletStats(svc internalwallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		stats, err := svc.AdminStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// AdminWithdrawalList lists payout requests across all sellers, optionally
// filtered by status or seller.
func AdminWithdrawalList(svc internalwallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		var filters internalwallet.WithdrawalFilters
		if status, err := parseWithdrawalStatus(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if status != "" {
			filters.Status = status
		}

		rows, err := svc.ListWithdrawals(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list withdrawals"))
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AdminWithdrawalApprove finalizes a payout: debit, ledger row, reservation
// release.
func AdminWithdrawalApprove(svc internalwallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		requestID, err := validators.ParseUUIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.ApproveWithdrawal(r.Context(), requestID, middleware.UserUUIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// AdminWithdrawalReject releases the reservation and records the reason.
func AdminWithdrawalReject(svc internalwallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		requestID, err := validators.ParseUUIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rejectWithdrawalBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.RejectWithdrawal(r.Context(), requestID, middleware.UserUUIDFromContext(r.Context()), body.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// AdminTransactionList pages through the full wallet ledger with optional
// wallet-type, direction and seller filters.
func AdminTransactionList(svc internalwallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters internalwallet.TransactionFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("walletType")); raw != "" {
			walletType := enums.WalletType(raw)
			if !walletType.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid wallet type").WithDetails(map[string]any{"walletType": raw}))
				return
			}
			filters.WalletType = walletType
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("direction")); raw != "" {
			direction := enums.TransactionDirection(raw)
			if !direction.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid direction").WithDetails(map[string]any{"direction": raw}))
				return
			}
			filters.Direction = direction
		}

		rows, next, err := svc.ListTransactions(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet transactions"))
			return
		}

		responses.WriteSuccess(w, transactionPage{Transactions: rows, NextCursor: next})
	}
}

func parseWithdrawalStatus(r *http.Request) (enums.WithdrawalStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return "", nil
	}
	status, err := enums.ParseWithdrawalStatus(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid withdrawal status")
	}
	return status, nil
}
