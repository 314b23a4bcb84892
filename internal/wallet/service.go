package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
	"github.com/hngo-dev/meshmart-backend/pkg/metrics"
	"github.com/hngo-dev/meshmart-backend/pkg/outbox"
	"github.com/hngo-dev/meshmart-backend/pkg/pagination"
	"github.com/hngo-dev/meshmart-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// WithdrawalRequestInput captures a seller's payout ask.
type WithdrawalRequestInput struct {
	SellerID    uuid.UUID
	AmountCents int
	BankDetails types.BankDetails
	Note        *string
}

// SellerWalletView bundles a wallet with its recent ledger rows.
type SellerWalletView struct {
	Wallet       *models.SellerWallet       `json:"wallet"`
	Transactions []models.WalletTransaction `json:"transactions"`
	NextCursor   *pagination.Cursor         `json:"nextCursor,omitempty"`
}

// Stats are dashboard aggregates recomputed from the ledger so they can be
// cross-checked against the stored wallet balance.
type Stats struct {
	BalanceCents       int   `json:"balanceCents"`
	AvailableCents     int   `json:"availableCents"`
	TotalCreditsCents  int64 `json:"totalCreditsCents"`
	TotalDebitsCents   int64 `json:"totalDebitsCents"`
	LedgerBalanceCents int64 `json:"ledgerBalanceCents"`
}

// WithdrawalEvent is the outbox payload for withdrawal lifecycle events.
type WithdrawalEvent struct {
	RequestID   uuid.UUID              `json:"request_id"`
	SellerID    uuid.UUID              `json:"seller_id"`
	AmountCents int                    `json:"amount_cents"`
	Status      enums.WithdrawalStatus `json:"status"`
}

// Service owns seller/admin wallet reads and the withdrawal state machine.
type Service interface {
	GetSellerWallet(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*SellerWalletView, error)
	GetAdminWallet(ctx context.Context) (*models.AdminWallet, error)
	ListTransactions(ctx context.Context, filters TransactionFilters, params pagination.Params) ([]models.WalletTransaction, *pagination.Cursor, error)
	SellerStats(ctx context.Context, sellerID uuid.UUID) (*Stats, error)
	AdminStats(ctx context.Context) (*Stats, error)

	RequestWithdrawal(ctx context.Context, input WithdrawalRequestInput) (*models.WithdrawalRequest, error)
	ApproveWithdrawal(ctx context.Context, requestID, adminID uuid.UUID) (*models.WithdrawalRequest, error)
	RejectWithdrawal(ctx context.Context, requestID, adminID uuid.UUID, reason string) (*models.WithdrawalRequest, error)
	ListWithdrawals(ctx context.Context, filters WithdrawalFilters) ([]models.WithdrawalRequest, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	logg    *logger.Logger
	metrics *metrics.SettlementMetrics
}

// NewService builds a wallet service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, logg *logger.Logger, m *metrics.SettlementMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, outbox: ob, logg: logg, metrics: m}, nil
}

func (s *service) GetSellerWallet(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*SellerWalletView, error) {
	wallet, err := s.repo.FindSellerWallet(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller wallet not found")
		}
		return nil, err
	}

	rows, next, err := s.repo.ListTransactions(ctx, TransactionFilters{
		WalletType: enums.WalletTypeSeller,
		SellerID:   &sellerID,
	}, params)
	if err != nil {
		return nil, err
	}
	return &SellerWalletView{Wallet: wallet, Transactions: rows, NextCursor: next}, nil
}

func (s *service) GetAdminWallet(ctx context.Context) (*models.AdminWallet, error) {
	return s.repo.FirstOrCreateAdminWallet(ctx)
}

func (s *service) ListTransactions(ctx context.Context, filters TransactionFilters, params pagination.Params) ([]models.WalletTransaction, *pagination.Cursor, error) {
	return s.repo.ListTransactions(ctx, filters, params)
}

func (s *service) SellerStats(ctx context.Context, sellerID uuid.UUID) (*Stats, error) {
	wallet, err := s.repo.FindSellerWallet(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller wallet not found")
		}
		return nil, err
	}
	credits, err := s.repo.SumTransactions(ctx, enums.WalletTypeSeller, &sellerID, enums.TransactionDirectionCredit)
	if err != nil {
		return nil, err
	}
	debits, err := s.repo.SumTransactions(ctx, enums.WalletTypeSeller, &sellerID, enums.TransactionDirectionDebit)
	if err != nil {
		return nil, err
	}
	return &Stats{
		BalanceCents:       wallet.BalanceCents,
		AvailableCents:     wallet.AvailableCents(),
		TotalCreditsCents:  credits,
		TotalDebitsCents:   debits,
		LedgerBalanceCents: credits - debits,
	}, nil
}

func (s *service) AdminStats(ctx context.Context) (*Stats, error) {
	wallet, err := s.repo.FirstOrCreateAdminWallet(ctx)
	if err != nil {
		return nil, err
	}
	credits, err := s.repo.SumTransactions(ctx, enums.WalletTypeAdmin, nil, enums.TransactionDirectionCredit)
	if err != nil {
		return nil, err
	}
	debits, err := s.repo.SumTransactions(ctx, enums.WalletTypeAdmin, nil, enums.TransactionDirectionDebit)
	if err != nil {
		return nil, err
	}
	return &Stats{
		BalanceCents:       wallet.BalanceCents,
		AvailableCents:     wallet.BalanceCents,
		TotalCreditsCents:  credits,
		TotalDebitsCents:   debits,
		LedgerBalanceCents: credits - debits,
	}, nil
}

// RequestWithdrawal reserves funds before admin action. The reservation is
// expressed on pending_withdrawals_cents: the stored balance is untouched
// until approval, but the available balance shrinks immediately.
func (s *service) RequestWithdrawal(ctx context.Context, input WithdrawalRequestInput) (*models.WithdrawalRequest, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal amount must be positive")
	}

	var request *models.WithdrawalRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		wallet, err := repo.FindSellerWallet(ctx, input.SellerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "seller wallet not found")
			}
			return err
		}
		if wallet.AvailableCents() < input.AmountCents {
			return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "insufficient wallet balance").
				WithDetails(map[string]any{
					"availableCents": wallet.AvailableCents(),
					"requestedCents": input.AmountCents,
				})
		}

		if err := repo.UpdateSellerWallet(ctx, wallet.ID, map[string]any{
			"pending_withdrawals_cents": wallet.PendingWithdrawalsCents + input.AmountCents,
		}); err != nil {
			return fmt.Errorf("reserving withdrawal funds: %w", err)
		}

		request = &models.WithdrawalRequest{
			SellerID:    input.SellerID,
			AmountCents: input.AmountCents,
			Status:      enums.WithdrawalStatusPending,
			BankDetails: input.BankDetails,
			Note:        input.Note,
		}
		if err := repo.CreateWithdrawal(ctx, request); err != nil {
			return fmt.Errorf("creating withdrawal request: %w", err)
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWithdrawalRequested,
			AggregateType: enums.AggregateWithdrawal,
			AggregateID:   request.ID,
			Data: WithdrawalEvent{
				RequestID:   request.ID,
				SellerID:    input.SellerID,
				AmountCents: input.AmountCents,
				Status:      enums.WithdrawalStatusPending,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// ApproveWithdrawal debits the seller wallet, posts exactly one debit ledger
// row and releases the reservation, all in one transaction.
func (s *service) ApproveWithdrawal(ctx context.Context, requestID, adminID uuid.UUID) (*models.WithdrawalRequest, error) {
	var request *models.WithdrawalRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		req, err := repo.FindWithdrawal(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "withdrawal request not found")
			}
			return err
		}
		if req.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("withdrawal already %s", req.Status))
		}

		wallet, err := repo.FindSellerWallet(ctx, req.SellerID)
		if err != nil {
			return err
		}
		// Defensive re-check: the balance may have moved since the
		// reservation was taken.
		if wallet.BalanceCents < req.AmountCents {
			return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "wallet balance below requested amount").
				WithDetails(map[string]any{
					"balanceCents":   wallet.BalanceCents,
					"requestedCents": req.AmountCents,
				})
		}

		pending := wallet.PendingWithdrawalsCents - req.AmountCents
		if pending < 0 {
			pending = 0
		}
		if err := repo.UpdateSellerWallet(ctx, wallet.ID, map[string]any{
			"balance_cents":             wallet.BalanceCents - req.AmountCents,
			"pending_withdrawals_cents": pending,
		}); err != nil {
			return fmt.Errorf("debiting seller wallet: %w", err)
		}

		metadata, err := json.Marshal(map[string]any{
			"withdrawalRequestId": req.ID.String(),
			"approvedBy":          adminID.String(),
		})
		if err != nil {
			return fmt.Errorf("encoding withdrawal metadata: %w", err)
		}
		entry := models.WalletTransaction{
			WalletType:  enums.WalletTypeSeller,
			SellerID:    &req.SellerID,
			Direction:   enums.TransactionDirectionDebit,
			AmountCents: req.AmountCents,
			Description: "Withdrawal payout",
			Status:      enums.TransactionStatusCompleted,
			Metadata:    metadata,
		}
		if err := repo.CreateTransaction(ctx, &entry); err != nil {
			return fmt.Errorf("recording withdrawal ledger entry: %w", err)
		}

		now := time.Now()
		if err := repo.UpdateWithdrawal(ctx, req.ID, map[string]any{
			"status":     enums.WithdrawalStatusApproved,
			"decided_by": adminID,
			"decided_at": now,
		}); err != nil {
			return fmt.Errorf("updating withdrawal status: %w", err)
		}

		req.Status = enums.WithdrawalStatusApproved
		req.DecidedBy = &adminID
		req.DecidedAt = &now
		request = req

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWithdrawalApproved,
			AggregateType: enums.AggregateWithdrawal,
			AggregateID:   req.ID,
			Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.UserRoleAdmin)},
			Data: WithdrawalEvent{
				RequestID:   req.ID,
				SellerID:    req.SellerID,
				AmountCents: req.AmountCents,
				Status:      enums.WithdrawalStatusApproved,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncWithdrawalDecision("approved")
	return request, nil
}

// RejectWithdrawal releases the reservation without touching the balance.
func (s *service) RejectWithdrawal(ctx context.Context, requestID, adminID uuid.UUID, reason string) (*models.WithdrawalRequest, error) {
	var request *models.WithdrawalRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		req, err := repo.FindWithdrawal(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "withdrawal request not found")
			}
			return err
		}
		if req.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("withdrawal already %s", req.Status))
		}

		wallet, err := repo.FindSellerWallet(ctx, req.SellerID)
		if err != nil {
			return err
		}
		pending := wallet.PendingWithdrawalsCents - req.AmountCents
		if pending < 0 {
			pending = 0
		}
		if err := repo.UpdateSellerWallet(ctx, wallet.ID, map[string]any{
			"pending_withdrawals_cents": pending,
		}); err != nil {
			return fmt.Errorf("releasing withdrawal reservation: %w", err)
		}

		now := time.Now()
		if err := repo.UpdateWithdrawal(ctx, req.ID, map[string]any{
			"status":           enums.WithdrawalStatusRejected,
			"rejection_reason": reason,
			"decided_by":       adminID,
			"decided_at":       now,
		}); err != nil {
			return fmt.Errorf("updating withdrawal status: %w", err)
		}

		req.Status = enums.WithdrawalStatusRejected
		req.RejectionReason = &reason
		req.DecidedBy = &adminID
		req.DecidedAt = &now
		request = req

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWithdrawalRejected,
			AggregateType: enums.AggregateWithdrawal,
			AggregateID:   req.ID,
			Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.UserRoleAdmin)},
			Data: WithdrawalEvent{
				RequestID:   req.ID,
				SellerID:    req.SellerID,
				AmountCents: req.AmountCents,
				Status:      enums.WithdrawalStatusRejected,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncWithdrawalDecision("rejected")
	return request, nil
}

func (s *service) ListWithdrawals(ctx context.Context, filters WithdrawalFilters) ([]models.WithdrawalRequest, error) {
	return s.repo.ListWithdrawals(ctx, filters)
}
