package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	"github.com/hngo-dev/meshmart-backend/pkg/pagination"
)

// TransactionFilters narrows ledger listings.
type TransactionFilters struct {
	WalletType enums.WalletType
	SellerID   *uuid.UUID
	OrderID    *uuid.UUID
	Direction  enums.TransactionDirection
}

// WithdrawalFilters narrows withdrawal request listings.
type WithdrawalFilters struct {
	SellerID *uuid.UUID
	Status   enums.WithdrawalStatus
}

// Repository defines persistence operations for wallets, the wallet ledger
// and withdrawal requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FirstOrCreateSellerWallet(ctx context.Context, sellerID uuid.UUID) (*models.SellerWallet, error)
	FindSellerWallet(ctx context.Context, sellerID uuid.UUID) (*models.SellerWallet, error)
	UpdateSellerWallet(ctx context.Context, id uuid.UUID, updates map[string]any) error

	FirstOrCreateAdminWallet(ctx context.Context) (*models.AdminWallet, error)
	UpdateAdminWallet(ctx context.Context, updates map[string]any) error

	CreateTransaction(ctx context.Context, tx *models.WalletTransaction) error
	ListTransactions(ctx context.Context, filters TransactionFilters, params pagination.Params) ([]models.WalletTransaction, *pagination.Cursor, error)
	SumTransactions(ctx context.Context, walletType enums.WalletType, sellerID *uuid.UUID, direction enums.TransactionDirection) (int64, error)

	RecomputeSellerMonthlyEarnings(ctx context.Context, since time.Time) (int64, error)
	RecomputeAdminMonthlyEarnings(ctx context.Context, since time.Time) error

	CreateWithdrawal(ctx context.Context, req *models.WithdrawalRequest) error
	FindWithdrawal(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error)
	UpdateWithdrawal(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListWithdrawals(ctx context.Context, filters WithdrawalFilters) ([]models.WithdrawalRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wallet repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FirstOrCreateSellerWallet(ctx context.Context, sellerID uuid.UUID) (*models.SellerWallet, error) {
	var wallet models.SellerWallet
	err := r.db.WithContext(ctx).
		Where(models.SellerWallet{SellerID: sellerID}).
		FirstOrCreate(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) FindSellerWallet(ctx context.Context, sellerID uuid.UUID) (*models.SellerWallet, error) {
	var wallet models.SellerWallet
	err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) UpdateSellerWallet(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.SellerWallet{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FirstOrCreateAdminWallet(ctx context.Context) (*models.AdminWallet, error) {
	var wallet models.AdminWallet
	err := r.db.WithContext(ctx).
		Where(models.AdminWallet{ID: models.AdminWalletID}).
		FirstOrCreate(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) UpdateAdminWallet(ctx context.Context, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.AdminWallet{}).
		Where("id = ?", models.AdminWalletID).
		Updates(updates).Error
}

func (r *repository) CreateTransaction(ctx context.Context, tx *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *repository) ListTransactions(ctx context.Context, filters TransactionFilters, params pagination.Params) ([]models.WalletTransaction, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.WalletTransaction{})
	if filters.WalletType != "" {
		query = query.Where("wallet_type = ?", filters.WalletType)
	}
	if filters.SellerID != nil {
		query = query.Where("seller_id = ?", *filters.SellerID)
	}
	if filters.OrderID != nil {
		query = query.Where("order_id = ?", *filters.OrderID)
	}
	if filters.Direction != "" {
		query = query.Where("direction = ?", filters.Direction)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.WalletTransaction
	err = query.Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return rows, next, nil
}

func (r *repository) SumTransactions(ctx context.Context, walletType enums.WalletType, sellerID *uuid.UUID, direction enums.TransactionDirection) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.WalletTransaction{}).
		Where("wallet_type = ? AND direction = ? AND status = ?", walletType, direction, enums.TransactionStatusCompleted)
	if sellerID != nil {
		query = query.Where("seller_id = ?", *sellerID)
	}
	var total *int64
	if err := query.Select("SUM(amount_cents)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// RecomputeSellerMonthlyEarnings overwrites every seller wallet's
// this-month counter from the ledger. Recomputing instead of zeroing makes
// the rollover idempotent and self-healing after missed runs.
func (r *repository) RecomputeSellerMonthlyEarnings(ctx context.Context, since time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE seller_wallets SET this_month_earnings_cents = COALESCE((
			SELECT SUM(wt.amount_cents) FROM wallet_transactions wt
			WHERE wt.wallet_type = ?
			  AND wt.seller_id = seller_wallets.seller_id
			  AND wt.direction = ?
			  AND wt.status = ?
			  AND wt.created_at >= ?
		), 0)`,
		enums.WalletTypeSeller, enums.TransactionDirectionCredit, enums.TransactionStatusCompleted, since)
	return res.RowsAffected, res.Error
}

// RecomputeAdminMonthlyEarnings does the same for the platform wallet.
func (r *repository) RecomputeAdminMonthlyEarnings(ctx context.Context, since time.Time) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE admin_wallets SET this_month_earnings_cents = COALESCE((
			SELECT SUM(wt.amount_cents) FROM wallet_transactions wt
			WHERE wt.wallet_type = ?
			  AND wt.direction = ?
			  AND wt.status = ?
			  AND wt.created_at >= ?
		), 0)
		WHERE id = ?`,
		enums.WalletTypeAdmin, enums.TransactionDirectionCredit, enums.TransactionStatusCompleted, since,
		models.AdminWalletID).Error
}

func (r *repository) CreateWithdrawal(ctx context.Context, req *models.WithdrawalRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindWithdrawal(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	var req models.WithdrawalRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) UpdateWithdrawal(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.WithdrawalRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListWithdrawals(ctx context.Context, filters WithdrawalFilters) ([]models.WithdrawalRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.WithdrawalRequest{})
	if filters.SellerID != nil {
		query = query.Where("seller_id = ?", *filters.SellerID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	var rows []models.WithdrawalRequest
	err := query.Order("created_at DESC").Find(&rows).Error
	return rows, err
}
