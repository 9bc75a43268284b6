// file: services/leaderboard_service.go
package services

import (
	"sort"

	"EscapeCTF/models"
)

// 排行榜按需全量重算，不做增量缓存；控制器层可以用 Redis
// 缓存序列化结果（15 秒），任何状态变更都会使缓存失效。

const (
	scorePerSolve = 100.0
	scorePerRoom  = 500.0
)

type LeaderboardEntry struct {
	TeamID        string  `json:"team_id"`
	TeamName      string  `json:"team_name"`
	Score         float64 `json:"score"`
	RoomIndex     int     `json:"room_index"`
	PointsBalance float64 `json:"points_balance"`
	ShieldActive  bool    `json:"shield_active"`
	UnderAttack   bool    `json:"under_attack"`
}

// Score 纯函数：余额 + 解题数*100 + 当前房间序号*500
func Score(balance float64, solvedCount int64, roomIndex int) float64 {
	return balance + float64(solvedCount)*scorePerSolve + float64(roomIndex)*scorePerRoom
}

// ComputeLeaderboard 重算全部队伍的榜单。
// 排序键取计算分（两个历史版本里选定的那一个），降序；
// 同分按 team_id 升序，保证输出稳定。
func (g *Game) ComputeLeaderboard() ([]LeaderboardEntry, error) {
	now := g.Now()

	var teams []models.Team
	if err := g.DB.Find(&teams).Error; err != nil {
		return nil, wrapStorage(err)
	}

	entries := make([]LeaderboardEntry, 0, len(teams))
	for _, team := range teams {
		var solved int64
		if err := g.DB.Model(&models.Submission{}).
			Where("team_id = ? AND is_correct = ?", team.ID, true).
			Count(&solved).Error; err != nil {
			return nil, wrapStorage(err)
		}

		roomIndex := 0
		if team.CurrentRoomID != nil {
			var room models.Room
			if err := g.DB.Where("id = ?", *team.CurrentRoomID).First(&room).Error; err == nil {
				roomIndex = room.OrderIndex
			}
		}

		underAttack, err := g.UnderAttackAt(team.ID, now)
		if err != nil {
			return nil, err
		}

		entries = append(entries, LeaderboardEntry{
			TeamID:        team.ID,
			TeamName:      team.TeamName,
			Score:         Score(team.PointsBalance, solved, roomIndex),
			RoomIndex:     roomIndex,
			PointsBalance: team.PointsBalance,
			ShieldActive:  team.ShieldedAt(now),
			UnderAttack:   underAttack,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].TeamID < entries[j].TeamID
	})
	return entries, nil
}
