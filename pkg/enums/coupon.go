package enums

import "fmt"

// CouponDiscountType selects between percentage and fixed-amount discounts.
type CouponDiscountType string

const (
	CouponDiscountPercentage CouponDiscountType = "percentage"
	CouponDiscountFixed      CouponDiscountType = "fixed"
)

// String implements fmt.Stringer.
func (c CouponDiscountType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponDiscountType.
func (c CouponDiscountType) IsValid() bool {
	return c == CouponDiscountPercentage || c == CouponDiscountFixed
}

// ParseCouponDiscountType converts raw input into a CouponDiscountType.
func ParseCouponDiscountType(value string) (CouponDiscountType, error) {
	switch CouponDiscountType(value) {
	case CouponDiscountPercentage:
		return CouponDiscountPercentage, nil
	case CouponDiscountFixed:
		return CouponDiscountFixed, nil
	}
	return "", fmt.Errorf("invalid coupon discount type %q", value)
}
