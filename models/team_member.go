// file: models/team_member.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 自定义队伍角色类型
type TeamMemberRole string

const (
	TeamRoleCaptain TeamMemberRole = "captain"
	TeamRoleMember  TeamMemberRole = "member"
)

type TeamMember struct {
	ID       string         `gorm:"size:36;primarykey" json:"id"`
	TeamID   string         `gorm:"size:36;uniqueIndex:unique_team_user;not null" json:"team_id"`
	UserID   string         `gorm:"size:36;uniqueIndex:unique_team_user;not null" json:"user_id"`
	User     User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role     TeamMemberRole `gorm:"size:10;default:'member'" json:"role"`
	JoinedAt time.Time      `gorm:"autoCreateTime" json:"joined_at"`
}

func (TeamMember) TableName() string {
	return "ectf_team_members"
}

func (m *TeamMember) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return
}
