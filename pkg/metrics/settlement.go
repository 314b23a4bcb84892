package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records counters for the order settlement pipeline.
type SettlementMetrics struct {
	ordersSettled   prometheus.Counter
	itemsSettled    *prometheus.CounterVec
	commissionCents prometheus.Counter
	sellerCents     prometheus.Counter
	refundsCents    prometheus.Counter
	withdrawals     *prometheus.CounterVec
}

// NewSettlementMetrics registers the settlement metrics on the provided
// registerer. A nil registerer yields a no-op instance for tests.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	ordersSettled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_orders_total",
		Help: "Orders settled into wallets.",
	})
	itemsSettled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_items_total",
		Help: "Line items settled, by seller resolution outcome.",
	}, []string{"resolution"})
	commissionCents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_commission_cents_total",
		Help: "Platform commission credited, in cents.",
	})
	sellerCents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_seller_cents_total",
		Help: "Seller earnings credited, in cents.",
	})
	refundsCents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_refund_cents_total",
		Help: "Refunds issued to store credit, in cents.",
	})
	withdrawals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "withdrawal_decisions_total",
		Help: "Withdrawal request decisions, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(ordersSettled, itemsSettled, commissionCents, sellerCents, refundsCents, withdrawals)
	return &SettlementMetrics{
		ordersSettled:   ordersSettled,
		itemsSettled:    itemsSettled,
		commissionCents: commissionCents,
		sellerCents:     sellerCents,
		refundsCents:    refundsCents,
		withdrawals:     withdrawals,
	}
}

// IncOrdersSettled counts one settled order.
func (m *SettlementMetrics) IncOrdersSettled() {
	if m == nil || m.ordersSettled == nil {
		return
	}
	m.ordersSettled.Inc()
}

// IncItemSettled counts one settled line item with its resolution outcome
// (resolved, resolved_degraded, unresolved).
func (m *SettlementMetrics) IncItemSettled(resolution string) {
	if m == nil || m.itemsSettled == nil {
		return
	}
	if resolution == "" {
		resolution = "unknown"
	}
	m.itemsSettled.WithLabelValues(resolution).Inc()
}

// AddCommissionCents accumulates platform commission.
func (m *SettlementMetrics) AddCommissionCents(cents int) {
	if m == nil || m.commissionCents == nil || cents <= 0 {
		return
	}
	m.commissionCents.Add(float64(cents))
}

// AddSellerCents accumulates seller earnings.
func (m *SettlementMetrics) AddSellerCents(cents int) {
	if m == nil || m.sellerCents == nil || cents <= 0 {
		return
	}
	m.sellerCents.Add(float64(cents))
}

// AddRefundCents accumulates store-credit refunds.
func (m *SettlementMetrics) AddRefundCents(cents int) {
	if m == nil || m.refundsCents == nil || cents <= 0 {
		return
	}
	m.refundsCents.Add(float64(cents))
}

// IncWithdrawalDecision counts one withdrawal decision (approved, rejected).
func (m *SettlementMetrics) IncWithdrawalDecision(outcome string) {
	if m == nil || m.withdrawals == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.withdrawals.WithLabelValues(outcome).Inc()
}
