// file: models/team.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Team struct {
	ID            string     `gorm:"size:36;primarykey" json:"id"`
	TeamName      string     `gorm:"size:100;unique;not null" json:"team_name"`
	Description   string     `gorm:"type:text" json:"description"`
	CaptainUserID string     `gorm:"size:36;not null" json:"captain_user_id"`
	Capacity      int        `gorm:"default:4" json:"capacity"`
	PointsBalance float64    `gorm:"not null;default:1000" json:"points_balance"`
	CurrentRoomID *string    `gorm:"size:36" json:"current_room_id"`
	Shield        TimedFlag  `gorm:"embedded;embeddedPrefix:shield_" json:"shield"`
	ImmunityUntil *time.Time `json:"immunity_until,omitempty"`
	InviteCode    string     `gorm:"size:20;unique;not null" json:"invite_code"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"-"`

	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

func (Team) TableName() string {
	return "ectf_team"
}

func (t *Team) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return
}

// ImmuneAt 判断队伍在 now 时刻是否处于免疫窗口内（惰性过期）
func (t *Team) ImmuneAt(now time.Time) bool {
	return t.ImmunityUntil != nil && t.ImmunityUntil.After(now)
}

// ShieldedAt 判断护盾在 now 时刻是否仍然生效。
// shield_active 列可能已经过期但未回写，必须走这里判断。
func (t *Team) ShieldedAt(now time.Time) bool {
	return t.Shield.ActiveAt(now)
}
