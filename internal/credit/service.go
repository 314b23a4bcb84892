package credit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/internal/users"
	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/pagination"
)

// Service manages the per-user store-credit balance. Every mutation re-reads
// the live balance inside the transaction and snapshots before/after values
// on the ledger row; client-supplied balances are never trusted.
type Service interface {
	Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amountCents int, orderID *uuid.UUID, reason enums.CreditReason, description string) (*models.CreditTransaction, error)
	Credit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amountCents int, orderID *uuid.UUID, reason enums.CreditReason, description string) (*models.CreditTransaction, error)
	Balance(ctx context.Context, userID uuid.UUID) (int, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.CreditTransaction, *pagination.Cursor, error)
}

type service struct {
	repo  Repository
	users users.Repository
}

// NewService wires a credit service with the provided repositories.
func NewService(repo Repository, usersRepo users.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("credit repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, users: usersRepo}, nil
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amountCents int, orderID *uuid.UUID, reason enums.CreditReason, description string) (*models.CreditTransaction, error) {
	return s.apply(ctx, tx, userID, amountCents, orderID, enums.TransactionDirectionDebit, reason, description)
}

func (s *service) Credit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amountCents int, orderID *uuid.UUID, reason enums.CreditReason, description string) (*models.CreditTransaction, error) {
	return s.apply(ctx, tx, userID, amountCents, orderID, enums.TransactionDirectionCredit, reason, description)
}

func (s *service) apply(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amountCents int, orderID *uuid.UUID, direction enums.TransactionDirection, reason enums.CreditReason, description string) (*models.CreditTransaction, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}
	if !reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid credit reason %q", reason))
	}

	usersRepo := s.users.WithTx(tx)
	user, err := usersRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
	}

	before := user.CreditBalanceCents
	var after int
	switch direction {
	case enums.TransactionDirectionDebit:
		if before < amountCents {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientFunds, "insufficient store credit").
				WithDetails(map[string]any{
					"balanceCents":   before,
					"requestedCents": amountCents,
				})
		}
		after = before - amountCents
	case enums.TransactionDirectionCredit:
		after = before + amountCents
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid direction %q", direction))
	}

	if err := usersRepo.UpdateCreditBalance(ctx, userID, after); err != nil {
		return nil, fmt.Errorf("updating credit balance: %w", err)
	}

	entry := models.CreditTransaction{
		UserID:             userID,
		OrderID:            orderID,
		Direction:          direction,
		AmountCents:        amountCents,
		Reason:             reason,
		BalanceBeforeCents: before,
		BalanceAfterCents:  after,
		Description:        description,
	}
	if err := s.repo.WithTx(tx).Create(ctx, &entry); err != nil {
		return nil, fmt.Errorf("recording credit ledger entry: %w", err)
	}
	return &entry, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
	}
	return user.CreditBalanceCents, nil
}

func (s *service) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.CreditTransaction, *pagination.Cursor, error) {
	return s.repo.ListByUser(ctx, userID, params)
}
