package wallet

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
	"github.com/hngo-dev/meshmart-backend/pkg/outbox"
	"github.com/hngo-dev/meshmart-backend/pkg/pagination"
	"github.com/hngo-dev/meshmart-backend/pkg/types"
)

type stubWalletRepo struct {
	sellerWallet      *models.SellerWallet
	withdrawal        *models.WithdrawalRequest
	walletUpdates     map[string]any
	withdrawalUpdates map[string]any
	transactions      []models.WalletTransaction
	createdWithdrawal *models.WithdrawalRequest

	findSellerWallet func(ctx context.Context, sellerID uuid.UUID) (*models.SellerWallet, error)
	findWithdrawal   func(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error)
}

func (s *stubWalletRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubWalletRepo) FirstOrCreateSellerWallet(ctx context.Context, sellerID uuid.UUID) (*models.SellerWallet, error) {
	return s.sellerWallet, nil
}

func (s *stubWalletRepo) FindSellerWallet(ctx context.Context, sellerID uuid.UUID) (*models.SellerWallet, error) {
	if s.findSellerWallet != nil {
		return s.findSellerWallet(ctx, sellerID)
	}
	if s.sellerWallet == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.sellerWallet, nil
}

func (s *stubWalletRepo) UpdateSellerWallet(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.walletUpdates == nil {
		s.walletUpdates = map[string]any{}
	}
	for key, value := range updates {
		s.walletUpdates[key] = value
	}
	return nil
}

func (s *stubWalletRepo) FirstOrCreateAdminWallet(ctx context.Context) (*models.AdminWallet, error) {
	return &models.AdminWallet{ID: models.AdminWalletID}, nil
}

func (s *stubWalletRepo) UpdateAdminWallet(ctx context.Context, updates map[string]any) error {
	return nil
}

func (s *stubWalletRepo) CreateTransaction(ctx context.Context, tx *models.WalletTransaction) error {
	s.transactions = append(s.transactions, *tx)
	return nil
}

func (s *stubWalletRepo) ListTransactions(ctx context.Context, filters TransactionFilters, params pagination.Params) ([]models.WalletTransaction, *pagination.Cursor, error) {
	return s.transactions, nil, nil
}

func (s *stubWalletRepo) SumTransactions(ctx context.Context, walletType enums.WalletType, sellerID *uuid.UUID, direction enums.TransactionDirection) (int64, error) {
	return 0, nil
}

func (s *stubWalletRepo) RecomputeSellerMonthlyEarnings(ctx context.Context, since time.Time) (int64, error) {
	panic("not implemented")
}

func (s *stubWalletRepo) RecomputeAdminMonthlyEarnings(ctx context.Context, since time.Time) error {
	panic("not implemented")
}

func (s *stubWalletRepo) CreateWithdrawal(ctx context.Context, req *models.WithdrawalRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	s.createdWithdrawal = req
	return nil
}

func (s *stubWalletRepo) FindWithdrawal(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	if s.findWithdrawal != nil {
		return s.findWithdrawal(ctx, id)
	}
	if s.withdrawal == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.withdrawal, nil
}

func (s *stubWalletRepo) UpdateWithdrawal(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.withdrawalUpdates == nil {
		s.withdrawalUpdates = map[string]any{}
	}
	for key, value := range updates {
		s.withdrawalUpdates[key] = value
	}
	return nil
}

func (s *stubWalletRepo) ListWithdrawals(ctx context.Context, filters WithdrawalFilters) ([]models.WithdrawalRequest, error) {
	return nil, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func newTestWalletService(t *testing.T, repo *stubWalletRepo, ob *stubOutbox) Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "wallet-test", Output: io.Discard})
	svc, err := NewService(repo, stubTxRunner{}, ob, logg, nil)
	require.NoError(t, err)
	return svc
}

func testBankDetails() types.BankDetails {
	return types.BankDetails{AccountNumber: "000123456", BankName: "First Test", RoutingCode: "021000021"}
}

func TestRequestWithdrawalReservesFunds(t *testing.T) {
	sellerID := uuid.New()
	repo := &stubWalletRepo{
		sellerWallet: &models.SellerWallet{
			ID:                      uuid.New(),
			SellerID:                sellerID,
			BalanceCents:            10000,
			PendingWithdrawalsCents: 2000,
		},
	}
	ob := &stubOutbox{}
	svc := newTestWalletService(t, repo, ob)

	request, err := svc.RequestWithdrawal(context.Background(), WithdrawalRequestInput{
		SellerID:    sellerID,
		AmountCents: 5000,
		BankDetails: testBankDetails(),
	})
	require.NoError(t, err)

	assert.Equal(t, enums.WithdrawalStatusPending, request.Status)
	assert.Equal(t, 5000, request.AmountCents)
	assert.Equal(t, 7000, repo.walletUpdates["pending_withdrawals_cents"])
	require.NotNil(t, repo.createdWithdrawal)
	assert.Empty(t, repo.transactions, "no ledger entry until approval")

	require.Len(t, ob.events, 1)
	assert.Equal(t, enums.EventWithdrawalRequested, ob.events[0].EventType)
	assert.Equal(t, request.ID, ob.events[0].AggregateID)
}

func TestRequestWithdrawalInsufficientAvailable(t *testing.T) {
	sellerID := uuid.New()
	repo := &stubWalletRepo{
		sellerWallet: &models.SellerWallet{
			ID:                      uuid.New(),
			SellerID:                sellerID,
			BalanceCents:            10000,
			PendingWithdrawalsCents: 8000,
		},
	}
	svc := newTestWalletService(t, repo, &stubOutbox{})

	_, err := svc.RequestWithdrawal(context.Background(), WithdrawalRequestInput{
		SellerID:    sellerID,
		AmountCents: 5000,
		BankDetails: testBankDetails(),
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientFunds, typed.Code())
	assert.Nil(t, repo.createdWithdrawal)
	assert.Nil(t, repo.walletUpdates)
}

func TestRequestWithdrawalValidation(t *testing.T) {
	svc := newTestWalletService(t, &stubWalletRepo{}, &stubOutbox{})

	_, err := svc.RequestWithdrawal(context.Background(), WithdrawalRequestInput{
		SellerID: uuid.New(), AmountCents: 0, BankDetails: testBankDetails(),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.RequestWithdrawal(context.Background(), WithdrawalRequestInput{
		AmountCents: 100, BankDetails: testBankDetails(),
	})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRequestWithdrawalWalletMissing(t *testing.T) {
	svc := newTestWalletService(t, &stubWalletRepo{}, &stubOutbox{})

	_, err := svc.RequestWithdrawal(context.Background(), WithdrawalRequestInput{
		SellerID: uuid.New(), AmountCents: 100, BankDetails: testBankDetails(),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestApproveWithdrawalDebitsAndRecords(t *testing.T) {
	sellerID := uuid.New()
	adminID := uuid.New()
	repo := &stubWalletRepo{
		sellerWallet: &models.SellerWallet{
			ID:                      uuid.New(),
			SellerID:                sellerID,
			BalanceCents:            10000,
			PendingWithdrawalsCents: 5000,
		},
		withdrawal: &models.WithdrawalRequest{
			ID:          uuid.New(),
			SellerID:    sellerID,
			AmountCents: 5000,
			Status:      enums.WithdrawalStatusPending,
			BankDetails: testBankDetails(),
		},
	}
	ob := &stubOutbox{}
	svc := newTestWalletService(t, repo, ob)

	request, err := svc.ApproveWithdrawal(context.Background(), repo.withdrawal.ID, adminID)
	require.NoError(t, err)

	assert.Equal(t, 5000, repo.walletUpdates["balance_cents"])
	assert.Equal(t, 0, repo.walletUpdates["pending_withdrawals_cents"])

	require.Len(t, repo.transactions, 1)
	entry := repo.transactions[0]
	assert.Equal(t, enums.TransactionDirectionDebit, entry.Direction)
	assert.Equal(t, 5000, entry.AmountCents)
	assert.Equal(t, "Withdrawal payout", entry.Description)
	assert.Equal(t, enums.TransactionStatusCompleted, entry.Status)

	assert.Equal(t, enums.WithdrawalStatusApproved, repo.withdrawalUpdates["status"])
	assert.Equal(t, enums.WithdrawalStatusApproved, request.Status)
	require.NotNil(t, request.DecidedBy)
	assert.Equal(t, adminID, *request.DecidedBy)
	require.NotNil(t, request.DecidedAt)

	require.Len(t, ob.events, 1)
	assert.Equal(t, enums.EventWithdrawalApproved, ob.events[0].EventType)
}

func TestApproveWithdrawalAlreadyDecided(t *testing.T) {
	repo := &stubWalletRepo{
		withdrawal: &models.WithdrawalRequest{
			ID:          uuid.New(),
			SellerID:    uuid.New(),
			AmountCents: 5000,
			Status:      enums.WithdrawalStatusApproved,
		},
	}
	svc := newTestWalletService(t, repo, &stubOutbox{})

	_, err := svc.ApproveWithdrawal(context.Background(), repo.withdrawal.ID, uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	assert.Empty(t, repo.transactions)
}

func TestApproveWithdrawalBalanceBelowAmount(t *testing.T) {
	sellerID := uuid.New()
	repo := &stubWalletRepo{
		sellerWallet: &models.SellerWallet{
			ID:                      uuid.New(),
			SellerID:                sellerID,
			BalanceCents:            3000,
			PendingWithdrawalsCents: 5000,
		},
		withdrawal: &models.WithdrawalRequest{
			ID:          uuid.New(),
			SellerID:    sellerID,
			AmountCents: 5000,
			Status:      enums.WithdrawalStatusPending,
		},
	}
	svc := newTestWalletService(t, repo, &stubOutbox{})

	_, err := svc.ApproveWithdrawal(context.Background(), repo.withdrawal.ID, uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientFunds, typed.Code())
	assert.Empty(t, repo.transactions)
	assert.Nil(t, repo.walletUpdates)
}

func TestRejectWithdrawalReleasesReservation(t *testing.T) {
	sellerID := uuid.New()
	adminID := uuid.New()
	repo := &stubWalletRepo{
		sellerWallet: &models.SellerWallet{
			ID:                      uuid.New(),
			SellerID:                sellerID,
			BalanceCents:            10000,
			PendingWithdrawalsCents: 5000,
		},
		withdrawal: &models.WithdrawalRequest{
			ID:          uuid.New(),
			SellerID:    sellerID,
			AmountCents: 5000,
			Status:      enums.WithdrawalStatusPending,
		},
	}
	ob := &stubOutbox{}
	svc := newTestWalletService(t, repo, ob)

	request, err := svc.RejectWithdrawal(context.Background(), repo.withdrawal.ID, adminID, "bank details invalid")
	require.NoError(t, err)

	assert.Equal(t, 0, repo.walletUpdates["pending_withdrawals_cents"])
	assert.NotContains(t, repo.walletUpdates, "balance_cents", "rejection must not touch the balance")
	assert.Empty(t, repo.transactions)

	assert.Equal(t, enums.WithdrawalStatusRejected, request.Status)
	require.NotNil(t, request.RejectionReason)
	assert.Equal(t, "bank details invalid", *request.RejectionReason)

	require.Len(t, ob.events, 1)
	assert.Equal(t, enums.EventWithdrawalRejected, ob.events[0].EventType)
}

func TestReleaseClampsPendingAtZero(t *testing.T) {
	sellerID := uuid.New()
	repo := &stubWalletRepo{
		sellerWallet: &models.SellerWallet{
			ID:                      uuid.New(),
			SellerID:                sellerID,
			BalanceCents:            10000,
			PendingWithdrawalsCents: 3000,
		},
		withdrawal: &models.WithdrawalRequest{
			ID:          uuid.New(),
			SellerID:    sellerID,
			AmountCents: 5000,
			Status:      enums.WithdrawalStatusPending,
		},
	}
	svc := newTestWalletService(t, repo, &stubOutbox{})

	_, err := svc.RejectWithdrawal(context.Background(), repo.withdrawal.ID, uuid.New(), "drift")
	require.NoError(t, err)
	assert.Equal(t, 0, repo.walletUpdates["pending_withdrawals_cents"])
}

func TestGetSellerWalletNotFound(t *testing.T) {
	svc := newTestWalletService(t, &stubWalletRepo{}, &stubOutbox{})

	_, err := svc.GetSellerWallet(context.Background(), uuid.New(), pagination.Params{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
