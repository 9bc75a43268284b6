// file: models/perk.go
package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PerkType string

const (
	PerkTypeTool    PerkType = "tool"
	PerkTypeDefense PerkType = "defense"
	PerkTypeAttack  PerkType = "attack"
)

// Perk 商店里的道具。Effect 对核心规则是不透明的 JSON，
// 只有动作层会解释与攻防效果别名的条目。
type Perk struct {
	ID          string         `gorm:"size:36;primarykey" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Cost        float64        `gorm:"not null" json:"cost"`
	Effect      datatypes.JSON `json:"effect,omitempty"`
	IsOneTime   bool           `gorm:"default:1" json:"is_one_time"`
	PerkType    PerkType       `gorm:"size:10;default:'tool'" json:"perk_type"`
}

func (Perk) TableName() string {
	return "ectf_perk"
}

func (p *Perk) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return
}
