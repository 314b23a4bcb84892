package settlement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/internal/users"
	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
)

// ResolutionOutcome tags how the responsible seller was found.
type ResolutionOutcome string

const (
	// OutcomeResolved means the line item's seller reference was valid.
	OutcomeResolved ResolutionOutcome = "resolved"
	// OutcomeResolvedDegraded means a substitute seller received the
	// earning because the referenced seller no longer exists. Revenue is
	// attributed to some seller rather than lost; callers must log it.
	OutcomeResolvedDegraded ResolutionOutcome = "resolved_degraded"
	// OutcomeUnresolved means no seller-role user exists at all.
	OutcomeUnresolved ResolutionOutcome = "unresolved"
)

// SellerResolution is the tagged result of resolving a line item's seller.
type SellerResolution struct {
	Seller  *models.User
	Outcome ResolutionOutcome
	Reason  string
}

// Degraded reports whether the resolution fell back to a substitute seller.
func (r SellerResolution) Degraded() bool {
	return r.Outcome == OutcomeResolvedDegraded
}

// resolveSeller finds the seller to credit for a line item. The fallback
// chain exists because historical orders may reference a since-removed
// seller account.
func resolveSeller(ctx context.Context, repo users.Repository, sellerID uuid.UUID) (SellerResolution, error) {
	seller, err := repo.FindSellerByID(ctx, sellerID)
	if err == nil {
		return SellerResolution{Seller: seller, Outcome: OutcomeResolved}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return SellerResolution{}, err
	}

	seller, err = repo.FindAnyActiveSeller(ctx)
	if err == nil {
		return SellerResolution{
			Seller:  seller,
			Outcome: OutcomeResolvedDegraded,
			Reason:  "referenced seller missing, substituted first active seller",
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return SellerResolution{}, err
	}

	seller, err = repo.FindAnySeller(ctx)
	if err == nil {
		return SellerResolution{
			Seller:  seller,
			Outcome: OutcomeResolvedDegraded,
			Reason:  "referenced seller missing, substituted inactive seller",
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return SellerResolution{}, err
	}

	return SellerResolution{Outcome: OutcomeUnresolved}, nil
}
