package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/enums"
)

// WalletTransaction is one immutable ledger row. Rows are only ever inserted;
// corrections are expressed as new rows in the opposite direction.
type WalletTransaction struct {
	ID          uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey"`
	WalletType  enums.WalletType           `gorm:"column:wallet_type;type:text;not null;index"`
	SellerID    *uuid.UUID                 `gorm:"column:seller_id;type:uuid;index"`
	OrderID     *uuid.UUID                 `gorm:"column:order_id;type:uuid;index"`
	Direction   enums.TransactionDirection `gorm:"column:direction;type:text;not null"`
	AmountCents int                        `gorm:"column:amount_cents;not null"`
	Description string                     `gorm:"column:description;not null"`
	Reference   string                     `gorm:"column:reference;not null;uniqueIndex"`
	Status      enums.TransactionStatus    `gorm:"column:status;type:text;not null;default:'completed'"`
	Metadata    json.RawMessage            `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time                  `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the primary key and a unique reference when the
// caller did not.
func (t *WalletTransaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Reference == "" {
		t.Reference = NewTransactionReference()
	}
	return nil
}

// NewTransactionReference mints a ledger reference of the form TXN-<uuid>.
func NewTransactionReference() string {
	return "TXN-" + uuid.NewString()
}
