// file: models/clue.go
package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Clue 绑定在题目上的付费提示，购买后文本对队伍可见
type Clue struct {
	ID         string  `gorm:"size:36;primarykey" json:"id"`
	PuzzleID   string  `gorm:"size:36;not null;index" json:"puzzle_id"`
	Text       string  `gorm:"type:text;not null" json:"-"`
	Cost       float64 `gorm:"not null" json:"cost"`
	IsOneTime  bool    `gorm:"default:1" json:"is_one_time"`
	OrderIndex int     `gorm:"default:0" json:"order_index"`
}

func (Clue) TableName() string {
	return "ectf_clue"
}

func (c *Clue) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return
}
