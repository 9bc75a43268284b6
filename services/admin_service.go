// file: services/admin_service.go
package services

import (
	"errors"

	"EscapeCTF/models"

	"gorm.io/gorm"
)

// 管理员对游戏状态的覆盖操作。角色校验在中间件完成，
// 这里只负责状态变更本身与审计。

// OverrideProgress 把队伍直接挪到指定房间（绕过顺序与扣费）
func (g *Game) OverrideProgress(adminID, teamID, roomID, reason, ip string) error {
	err := g.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := lockTeam(tx, teamID)
		if err != nil {
			return err
		}
		var room models.Room
		if err := tx.Where("id = ?", roomID).First(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return wrapStorage(err)
		}
		if err := wrapStorage(tx.Model(locked).
			Update("current_room_id", room.ID).Error); err != nil {
			return err
		}
		return audit(tx, &adminID, "override_team_progress", map[string]any{
			"team_id": teamID, "new_room_id": roomID, "reason": reason,
		}, ip)
	})
	if err != nil {
		return err
	}

	g.invalidateLeaderboard()
	return nil
}

// DisableTeam 清空队伍余额和进度（违规处置）
func (g *Game) DisableTeam(adminID, teamID, ip string) error {
	err := g.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := lockTeam(tx, teamID)
		if err != nil {
			return err
		}
		if err := wrapStorage(tx.Model(locked).Updates(map[string]any{
			"points_balance":  0,
			"current_room_id": nil,
		}).Error); err != nil {
			return err
		}
		return audit(tx, &adminID, "disable_team", map[string]any{"team_id": teamID}, ip)
	})
	if err != nil {
		return err
	}

	g.invalidateLeaderboard()
	return nil
}

// RecentLogs 审计日志倒序查询
func (g *Game) RecentLogs(limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var logs []models.AuditLog
	if err := g.DB.Order("created_at desc").Limit(limit).Find(&logs).Error; err != nil {
		return nil, wrapStorage(err)
	}
	return logs, nil
}
