// file: models/audit_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog 所有核心变更操作的只追加审计表
type AuditLog struct {
	ID        string         `gorm:"size:36;primarykey" json:"id"`
	UserID    *string        `gorm:"size:36;index" json:"user_id,omitempty"`
	Action    string         `gorm:"size:50;not null;index" json:"action"`
	Details   datatypes.JSON `json:"details,omitempty"`
	IPAddress string         `gorm:"size:45" json:"ip_address,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "ectf_audit_log"
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return
}
