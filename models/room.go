// file: models/room.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room 线性闯关中的一个关卡房间。
// order_index 从 1 开始且全局唯一，解锁必须严格按序进行。
type Room struct {
	ID                        string   `gorm:"size:36;primarykey" json:"id"`
	Name                      string   `gorm:"size:100;not null" json:"name"`
	OrderIndex                int      `gorm:"unique;not null" json:"order_index"`
	Description               string   `gorm:"type:text" json:"description"`
	IsActive                  bool     `gorm:"default:1" json:"is_active"`
	IsChallenge               bool     `gorm:"default:0" json:"is_challenge"`
	UnlockCost                float64  `gorm:"default:0" json:"unlock_cost"`
	ChallengeInvestment       *float64 `json:"challenge_investment,omitempty"`
	ChallengeRewardMultiplier float64  `gorm:"default:2.0" json:"challenge_reward_multiplier"`
	CreatedAt                 time.Time `json:"-"`
	UpdatedAt                 time.Time `json:"-"`

	Puzzles []Puzzle `gorm:"foreignKey:RoomID" json:"puzzles,omitempty"`
}

func (Room) TableName() string {
	return "ectf_room"
}

func (r *Room) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return
}
