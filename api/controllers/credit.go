package controllers

import (
	"net/http"

	"github.com/hngo-dev/meshmart-backend/api/middleware"
	"github.com/hngo-dev/meshmart-backend/api/responses"
	internalcredit "github.com/hngo-dev/meshmart-backend/internal/credit"
	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
	"github.com/hngo-dev/meshmart-backend/pkg/pagination"
)

type creditHistoryPage struct {
	Transactions []models.CreditTransaction `json:"transactions"`
	NextCursor   *pagination.Cursor         `json:"nextCursor,omitempty"`
}

// CreditBalance returns the authenticated user's store-credit balance.
func CreditBalance(svc internalcredit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "credit service unavailable"))
			return
		}

		balance, err := svc.Balance(r.Context(), middleware.UserUUIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"balanceCents": balance})
	}
}

// CreditHistory pages through the user's credit ledger.
func CreditHistory(svc internalcredit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "credit service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := svc.ListTransactions(r.Context(), middleware.UserUUIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list credit transactions"))
			return
		}
		responses.WriteSuccess(w, creditHistoryPage{Transactions: rows, NextCursor: next})
	}
}
