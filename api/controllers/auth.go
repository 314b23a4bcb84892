package controllers

import (
	"net/http"

	"github.com/hngo-dev/meshmart-backend/api/responses"
	"github.com/hngo-dev/meshmart-backend/api/validators"
	"github.com/hngo-dev/meshmart-backend/internal/auth"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, loginResponse{Token: result.Token, User: result.User})
	}
}
