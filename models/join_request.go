// file: models/join_request.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestAccepted JoinRequestStatus = "accepted"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

// TeamJoinRequest 入队申请，由队长审批
type TeamJoinRequest struct {
	ID        string            `gorm:"size:36;primarykey" json:"id"`
	TeamID    string            `gorm:"size:36;not null;index" json:"team_id"`
	UserID    string            `gorm:"size:36;not null;index" json:"user_id"`
	User      User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status    JoinRequestStatus `gorm:"size:10;default:'pending'" json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"-"`
}

func (TeamJoinRequest) TableName() string {
	return "ectf_team_join_request"
}

func (r *TeamJoinRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return
}
