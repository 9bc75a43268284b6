// file: models/action.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActionType string
type ActionStatus string

const (
	ActionTypeAttack ActionType = "attack"
	ActionTypeDefend ActionType = "defend"
	ActionTypeInvest ActionType = "invest"

	ActionStatusPending ActionStatus = "pending"
	ActionStatusActive  ActionStatus = "active"
	ActionStatusExpired ActionStatus = "expired"
	ActionStatusBlocked ActionStatus = "blocked"
)

// Action 队伍发起的限时动作（攻击/防御/投资）。
// 没有后台定时器：过期与否由读取方比较 ends_at 与当前时间得出。
type Action struct {
	ID           string         `gorm:"size:36;primarykey" json:"id"`
	TeamID       string         `gorm:"size:36;not null;index" json:"team_id"`
	ActionType   ActionType     `gorm:"size:10;not null" json:"action_type"`
	TargetTeamID *string        `gorm:"size:36;index" json:"target_team_id,omitempty"`
	Cost         float64        `gorm:"not null" json:"cost"`
	Result       datatypes.JSON `json:"result,omitempty"`
	Status       ActionStatus   `gorm:"size:10;default:'active'" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	EndsAt       *time.Time     `json:"ends_at,omitempty"`
}

func (Action) TableName() string {
	return "ectf_action"
}

func (a *Action) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return
}

// ActiveAt 判断动作在 now 时刻是否仍然生效（惰性过期）
func (a *Action) ActiveAt(now time.Time) bool {
	return a.Status == ActionStatusActive && a.EndsAt != nil && a.EndsAt.After(now)
}
