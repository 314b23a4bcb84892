package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminWalletID is the well-known primary key of the single platform wallet.
// A fixed UUID plus the primary-key constraint guarantees at most one row
// even when two settlements race to create it lazily.
var AdminWalletID = uuid.MustParse("00000000-0000-0000-0000-00000000adb1")

// SellerWallet is the running balance for one seller. Balance mutations are
// always paired with exactly one WalletTransaction in the same transaction.
type SellerWallet struct {
	ID                      uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SellerID                uuid.UUID `gorm:"column:seller_id;type:uuid;not null;uniqueIndex"`
	BalanceCents            int       `gorm:"column:balance_cents;not null;default:0"`
	TotalEarningsCents      int       `gorm:"column:total_earnings_cents;not null;default:0"`
	ThisMonthEarningsCents  int       `gorm:"column:this_month_earnings_cents;not null;default:0"`
	PendingWithdrawalsCents int       `gorm:"column:pending_withdrawals_cents;not null;default:0"`
	CreatedAt               time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (w *SellerWallet) BeforeCreate(_ *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// AvailableCents is the spendable balance: funds reserved by pending
// withdrawal requests are excluded until the request is decided.
func (w *SellerWallet) AvailableCents() int {
	return w.BalanceCents - w.PendingWithdrawalsCents
}

// AdminWallet is the single platform-wide commission wallet.
type AdminWallet struct {
	ID                     uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BalanceCents           int       `gorm:"column:balance_cents;not null;default:0"`
	TotalEarningsCents     int       `gorm:"column:total_earnings_cents;not null;default:0"`
	ThisMonthEarningsCents int       `gorm:"column:this_month_earnings_cents;not null;default:0"`
	CreatedAt              time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate pins the singleton key.
func (w *AdminWallet) BeforeCreate(_ *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = AdminWalletID
	}
	return nil
}
