// file: models/expiry.go
package models

import (
	"time"
)

// TimedFlag 表示“带截止时间的开关”状态（如护盾）。
// 写入方只负责设置 Active 和 Expiry，过期判断一律走 ActiveAt，
// 绝不在业务代码里手写时间比较 —— 过期后列里的 Active 可能仍为 true。
type TimedFlag struct {
	Active bool       `gorm:"default:0" json:"active"`
	Expiry *time.Time `json:"expiry,omitempty"`
}

// ActiveAt 判断该状态在 now 时刻是否仍然生效
func (f TimedFlag) ActiveAt(now time.Time) bool {
	return f.Active && f.Expiry != nil && f.Expiry.After(now)
}

// Set 开启状态并记录截止时间
func (f *TimedFlag) Set(until time.Time) {
	f.Active = true
	f.Expiry = &until
}
