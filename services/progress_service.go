// file: services/progress_service.go
package services

import (
	"errors"

	"EscapeCTF/models"

	"gorm.io/gorm"
)

// 进度：房间只能严格按 order_index 顺序解锁，花费走账本扣分。

// currentRoomIndex 返回队伍当前房间的序号，未解锁任何房间时为 0
func currentRoomIndex(tx *gorm.DB, team *models.Team) (int, error) {
	if team.CurrentRoomID == nil {
		return 0, nil
	}
	var room models.Room
	err := tx.Where("id = ?", *team.CurrentRoomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapStorage(err)
	}
	return room.OrderIndex, nil
}

// UnlockRoom 解锁目标房间：必须是队长、必须是下一间、余额必须够。
// 顺序违规返回 ErrConflict，扣分失败返回 ErrInsufficientFunds。
func (g *Game) UnlockRoom(userID, roomID, ip string) (*models.Room, error) {
	team, membership, err := g.TeamOf(userID)
	if err != nil {
		return nil, err
	}
	if err := RequireCaptain(team, membership, userID); err != nil {
		return nil, err
	}

	var room models.Room
	err = g.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := lockTeam(tx, team.ID)
		if err != nil {
			return err
		}
		if err := tx.Where("id = ?", roomID).First(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return wrapStorage(err)
		}
		current, err := currentRoomIndex(tx, locked)
		if err != nil {
			return err
		}
		if room.OrderIndex != current+1 {
			return ErrConflict
		}
		if err := debitLocked(tx, locked, room.UnlockCost); err != nil {
			return err
		}
		if err := wrapStorage(tx.Model(locked).Update("current_room_id", room.ID).Error); err != nil {
			return err
		}
		return audit(tx, &userID, "unlock_room", map[string]any{
			"team_id": team.ID, "room_id": room.ID, "order_index": room.OrderIndex,
			"cost": room.UnlockCost,
		}, ip)
	})
	if err != nil {
		return nil, err
	}

	g.invalidateLeaderboard()
	g.Notify.Broadcast(map[string]any{"type": "room_unlocked", "team_id": team.ID, "room_id": room.ID})
	return &room, nil
}

// CanViewRoom 房间可见性：已解锁到的序号及之前的房间可见；
// 尚未解锁任何房间时只有第一间可见。
func (g *Game) CanViewRoom(team *models.Team, room *models.Room) (bool, error) {
	current, err := currentRoomIndex(g.DB, team)
	if err != nil {
		return false, err
	}
	if current == 0 {
		return room.OrderIndex == 1, nil
	}
	return room.OrderIndex <= current, nil
}
