// file: models/purchase.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Purchase 队伍对线索或道具的一次购买记录。
// 唯一性约束：同一队伍对同一线索至多一条；一次性道具同理。
type Purchase struct {
	ID          string         `gorm:"size:36;primarykey" json:"id"`
	TeamID      string         `gorm:"size:36;not null;index" json:"team_id"`
	PerkID      *string        `gorm:"size:36;index" json:"perk_id,omitempty"`
	ClueID      *string        `gorm:"size:36;index" json:"clue_id,omitempty"`
	PurchasedAt time.Time      `gorm:"autoCreateTime" json:"purchased_at"`
	UsedAt      *time.Time     `json:"used_at,omitempty"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
}

func (Purchase) TableName() string {
	return "ectf_purchase"
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return
}
