package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/pkg/enums"
)

// OutboxEvent is one row of the transactional outbox. Rows are inserted in
// the same transaction as the state change they describe and published to
// Pub/Sub by a separate relay process.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;type:text;not null;index:idx_outbox_pending"`
	AggregateID   uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;type:text;not null"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	PublishedAt   *time.Time                `gorm:"column:published_at;index:idx_outbox_pending"`
	Attempts      int                       `gorm:"column:attempts;not null;default:0"`
	LastError     *string                   `gorm:"column:last_error"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (e *OutboxEvent) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
