package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions.
const (
	AuditItemCreated        = "item.created"
	AuditItemUpdated        = "item.updated"
	AuditItemDeleted        = "item.deleted"
	AuditTransactionCreated = "transaction.created"
	AuditTransactionApprove = "transaction.approved"
)

// AuditLog records who changed what in the spreadsheet. The sheet itself keeps
// no history of item edits or deletions, so this table is the only trace.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Actor      string    `gorm:"not null;index"`
	Action     string    `gorm:"type:varchar(40);not null"`
	EntityCode string    `gorm:"index"`
	Detail     string    `gorm:"type:text"`
	CreatedAt  time.Time
}

func (AuditLog) TableName() string { return "audit_logs" }
