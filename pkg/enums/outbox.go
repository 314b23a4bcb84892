package enums

// OutboxEventType names the domain events the settlement core emits.
type OutboxEventType string

const (
	EventOrderCreated        OutboxEventType = "order.created"
	EventOrderPaid           OutboxEventType = "order.paid"
	EventOrderCanceled       OutboxEventType = "order.canceled"
	EventOrderReturned       OutboxEventType = "order.returned"
	EventWithdrawalApproved  OutboxEventType = "withdrawal.approved"
	EventWithdrawalRejected  OutboxEventType = "withdrawal.rejected"
	EventWithdrawalRequested OutboxEventType = "withdrawal.requested"
)

// String implements fmt.Stringer.
func (o OutboxEventType) String() string {
	return string(o)
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder      OutboxAggregateType = "order"
	AggregateWithdrawal OutboxAggregateType = "withdrawal"
)

// String implements fmt.Stringer.
func (o OutboxAggregateType) String() string {
	return string(o)
}
