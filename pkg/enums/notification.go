package enums

// NotificationType classifies buyer-facing notifications.
type NotificationType string

const (
	NotificationOrderPlaced        NotificationType = "order_placed"
	NotificationOrderStatusChanged NotificationType = "order_status_changed"
	NotificationOrderRefunded      NotificationType = "order_refunded"
)

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	switch n {
	case NotificationOrderPlaced, NotificationOrderStatusChanged, NotificationOrderRefunded:
		return true
	}
	return false
}
