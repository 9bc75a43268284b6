// file: controllers/game_controller.go
package controllers

import (
	"encoding/json"
	"strconv"
	"time"

	"EscapeCTF/dto"
	"EscapeCTF/middlewares"
	"EscapeCTF/models"
	"EscapeCTF/services"
	"EscapeCTF/utils"

	"github.com/gin-gonic/gin"
)

// ListRooms 房间列表（按 order_index 排序，全员可见元信息）
func (h *Handler) ListRooms(c *gin.Context) {
	var rooms []models.Room
	if err := h.Game.DB.Where("is_active = ?", true).
		Order("order_index asc").Find(&rooms).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}
	utils.Success(c, "success", gin.H{"total": len(rooms), "rooms": rooms})
}

// GetRoomDetail 房间详情；谜题列表只对已解锁到该房间的队伍展示
func (h *Handler) GetRoomDetail(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)

	var room models.Room
	if err := h.Game.DB.Where("id = ?", c.Param("id")).First(&room).Error; err != nil {
		utils.Error(c, 4004, "资源不存在")
		return
	}

	team, _, err := h.Game.TeamOf(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	visible, err := h.Game.CanViewRoom(team, &room)
	if err != nil {
		respondError(c, err)
		return
	}
	if !visible {
		utils.Error(c, 4003, "房间尚未解锁")
		return
	}

	var puzzles []models.Puzzle
	if err := h.Game.DB.Preload("Clues").
		Where("room_id = ? AND is_active = ?", room.ID, true).
		Find(&puzzles).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}
	utils.Success(c, "success", gin.H{"room": room, "puzzles": puzzles})
}

func (h *Handler) UnlockRoom(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)

	room, err := h.Game.UnlockRoom(userID, c.Param("id"), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Unlocked "+room.Name, gin.H{"room": room})
}

func (h *Handler) SubmitFlag(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)

	var req dto.SubmitFlagReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	req.Normalize()

	result, err := h.Game.SubmitFlag(userID, c.Param("id"), req.Flag, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	if result.Correct {
		utils.Success(c, "Flag 正确！", result)
		return
	}
	utils.Success(c, "Flag 错误", result)
}

func (h *Handler) ListPerks(c *gin.Context) {
	var perks []models.Perk
	if err := h.Game.DB.Find(&perks).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}
	utils.Success(c, "success", perks)
}

func (h *Handler) BuyClue(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)

	text, err := h.Game.BuyClue(userID, c.Param("id"), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Clue purchased", gin.H{"clue_text": text})
}

func (h *Handler) BuyPerk(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)

	if err := h.Game.BuyPerk(userID, c.Param("id"), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Perk purchased", nil)
}

func (h *Handler) PerformAction(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)

	var req dto.ActionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	req.Normalize()

	action, err := h.Game.PerformAction(userID, services.ActionRequest{
		Type:             models.ActionType(req.ActionType),
		TargetTeamID:     req.TargetTeamID,
		InvestmentAmount: req.InvestmentAmount,
	}, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "success", action)
}

// GetMyPurchases 队伍已购记录
func (h *Handler) GetMyPurchases(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)

	team, _, err := h.Game.TeamOf(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	purchases, err := h.Game.TeamPurchases(team.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "success", purchases)
}

// GetMyActions 队伍发起过的动作
func (h *Handler) GetMyActions(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)

	team, _, err := h.Game.TeamOf(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	actions, err := h.Game.TeamActions(team.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "success", actions)
}

// GetLeaderboard 排行榜：先查 Redis 缓存，未命中则重算并写回（15 秒）
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "50")
	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	cacheKey := "leaderboard:" + strconv.Itoa(limit)
	if h.Game.Cache != nil {
		if val, err := h.Game.Cache.Get(c.Request.Context(), cacheKey).Result(); err == nil {
			var entries []services.LeaderboardEntry
			if json.Unmarshal([]byte(val), &entries) == nil {
				utils.Success(c, "success (from cache)", entries)
				return
			}
		}
	}

	entries, err := h.Game.ComputeLeaderboard()
	if err != nil {
		respondError(c, err)
		return
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	if h.Game.Cache != nil {
		if data, err := json.Marshal(entries); err == nil {
			// 15 秒短缓存，保证准实时性
			h.Game.Cache.Set(c.Request.Context(), cacheKey, data, 15*time.Second)
		}
	}
	utils.Success(c, "success", entries)
}
