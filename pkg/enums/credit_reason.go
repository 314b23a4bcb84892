package enums

import "fmt"

// CreditReason explains why a store-credit ledger entry was written.
type CreditReason string

const (
	CreditReasonOrderCancelled  CreditReason = "order_cancelled"
	CreditReasonOrderReturned   CreditReason = "order_returned"
	CreditReasonOrderPayment    CreditReason = "order_payment"
	CreditReasonAdminAdjustment CreditReason = "admin_adjustment"
)

var validCreditReasons = []CreditReason{
	CreditReasonOrderCancelled,
	CreditReasonOrderReturned,
	CreditReasonOrderPayment,
	CreditReasonAdminAdjustment,
}

// String implements fmt.Stringer.
func (c CreditReason) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CreditReason.
func (c CreditReason) IsValid() bool {
	for _, candidate := range validCreditReasons {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCreditReason converts raw input into a CreditReason.
func ParseCreditReason(value string) (CreditReason, error) {
	for _, candidate := range validCreditReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid credit reason %q", value)
}
