package enums

import "fmt"

// WalletType identifies which ledger a wallet transaction belongs to.
type WalletType string

const (
	WalletTypeSeller WalletType = "seller"
	WalletTypeAdmin  WalletType = "admin"
)

// String implements fmt.Stringer.
func (w WalletType) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WalletType.
func (w WalletType) IsValid() bool {
	return w == WalletTypeSeller || w == WalletTypeAdmin
}

// TransactionDirection marks a ledger entry as a credit or a debit.
type TransactionDirection string

const (
	TransactionDirectionCredit TransactionDirection = "credit"
	TransactionDirectionDebit  TransactionDirection = "debit"
)

// String implements fmt.Stringer.
func (t TransactionDirection) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionDirection.
func (t TransactionDirection) IsValid() bool {
	return t == TransactionDirectionCredit || t == TransactionDirectionDebit
}

// TransactionStatus reflects the settlement state of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// String implements fmt.Stringer.
func (t TransactionStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionStatus.
func (t TransactionStatus) IsValid() bool {
	switch t {
	case TransactionStatusCompleted, TransactionStatusPending, TransactionStatusFailed:
		return true
	}
	return false
}

// WithdrawalStatus tracks the payout request state machine.
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

var validWithdrawalStatuses = []WithdrawalStatus{
	WithdrawalStatusPending,
	WithdrawalStatusApproved,
	WithdrawalStatusRejected,
}

// String implements fmt.Stringer.
func (w WithdrawalStatus) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WithdrawalStatus.
func (w WithdrawalStatus) IsValid() bool {
	for _, candidate := range validWithdrawalStatuses {
		if candidate == w {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (w WithdrawalStatus) IsTerminal() bool {
	return w == WithdrawalStatusApproved || w == WithdrawalStatusRejected
}

// ParseWithdrawalStatus converts raw input into a WithdrawalStatus.
func ParseWithdrawalStatus(value string) (WithdrawalStatus, error) {
	for _, candidate := range validWithdrawalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid withdrawal status %q", value)
}
