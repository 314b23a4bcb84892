package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hngo-dev/meshmart-backend/pkg/config"
	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
)

// Service creates buyer-facing order notifications. Delivery is strictly
// best effort: callers must never fail an order because of an error here.
type Service interface {
	NotifyOrderPlaced(ctx context.Context, userID, orderID uuid.UUID)
	NotifyStatusChanged(ctx context.Context, userID, orderID uuid.UUID, status enums.OrderStatus)
	NotifyOrderRefunded(ctx context.Context, userID, orderID uuid.UUID, refundCents int)
}

type service struct {
	repo  Repository
	cfg   config.SettlementConfig
	logg  *logger.Logger
	sleep func(time.Duration)
}

// NewService wires a notification service.
func NewService(repo Repository, cfg config.SettlementConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cfg: cfg, logg: logg, sleep: time.Sleep}, nil
}

func (s *service) NotifyOrderPlaced(ctx context.Context, userID, orderID uuid.UUID) {
	s.create(ctx, models.Notification{
		UserID:  userID,
		OrderID: &orderID,
		Type:    enums.NotificationOrderPlaced,
		Title:   "Order placed",
		Body:    "Your order has been placed and payment confirmed.",
	})
}

func (s *service) NotifyStatusChanged(ctx context.Context, userID, orderID uuid.UUID, status enums.OrderStatus) {
	s.create(ctx, models.Notification{
		UserID:  userID,
		OrderID: &orderID,
		Type:    enums.NotificationOrderStatusChanged,
		Title:   "Order updated",
		Body:    fmt.Sprintf("Your order is now %s.", status),
	})
}

func (s *service) NotifyOrderRefunded(ctx context.Context, userID, orderID uuid.UUID, refundCents int) {
	s.create(ctx, models.Notification{
		UserID:  userID,
		OrderID: &orderID,
		Type:    enums.NotificationOrderRefunded,
		Title:   "Order refunded",
		Body:    fmt.Sprintf("%.2f has been added to your store credit.", float64(refundCents)/100),
	})
}

// create retries a bounded number of times with a fixed delay. The retry
// exists for the read-after-write race right after order commit, not for
// genuine failures; the final error is logged and swallowed.
func (s *service) create(ctx context.Context, notification models.Notification) {
	attempts := s.cfg.NotificationAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = s.repo.Create(ctx, &notification); err == nil {
			return
		}
		if i < attempts-1 {
			s.sleep(s.cfg.NotificationRetryDelay)
		}
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id":  notification.UserID.String(),
		"type":     notification.Type,
		"attempts": attempts,
	})
	s.logg.Error(logCtx, "notification creation failed, giving up", err)
}
