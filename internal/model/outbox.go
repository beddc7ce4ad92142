package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	OutboxPending    = "pending"
	OutboxProcessing = "processing"
	OutboxDone       = "done"
	OutboxFailed     = "failed"
)

// Outbox 领域事件外发盒，与业务写入同事务落库
type Outbox struct {
	ID          string         `gorm:"primaryKey;type:varchar(36)"`
	EventType   string         `gorm:"type:varchar(64);not null"`
	AggregateID string         `gorm:"type:varchar(36);index:idx_outbox_aggregate"`
	Payload     datatypes.JSON `gorm:"not null"`
	Status      string         `gorm:"type:varchar(16);index:idx_outbox_status_created"`
	Attempts    int
	LastError   string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"index:idx_outbox_status_created"`
	ClaimedAt   *time.Time
	ProcessedAt *time.Time
}

func (Outbox) TableName() string { return "outbox" }
