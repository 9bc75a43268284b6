// file: controllers/admin_controller.go
package controllers

import (
	"encoding/json"
	"strconv"

	"EscapeCTF/dto"
	"EscapeCTF/middlewares"
	"EscapeCTF/models"
	"EscapeCTF/services"
	"EscapeCTF/utils"

	"github.com/gin-gonic/gin"
)

// --- 房间管理 ---

func (h *Handler) AdminCreateRoom(c *gin.Context) {
	var req dto.RoomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	room := models.Room{
		Name:                req.Name,
		OrderIndex:          req.OrderIndex,
		Description:         req.Description,
		IsChallenge:         req.IsChallenge,
		UnlockCost:          req.UnlockCost,
		ChallengeInvestment: req.ChallengeInvestment,
	}
	if req.ChallengeRewardMultiplier > 0 {
		room.ChallengeRewardMultiplier = req.ChallengeRewardMultiplier
	}
	if err := h.Game.DB.Create(&room).Error; err != nil {
		utils.Error(c, 5000, "创建房间失败: "+err.Error())
		return
	}
	utils.Success(c, "Room created", room)
}

func (h *Handler) AdminUpdateRoom(c *gin.Context) {
	var req dto.RoomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	var room models.Room
	if err := h.Game.DB.Where("id = ?", c.Param("id")).First(&room).Error; err != nil {
		utils.Error(c, 4004, "资源不存在")
		return
	}
	room.Name = req.Name
	room.OrderIndex = req.OrderIndex
	room.Description = req.Description
	room.IsChallenge = req.IsChallenge
	room.UnlockCost = req.UnlockCost
	room.ChallengeInvestment = req.ChallengeInvestment
	if err := h.Game.DB.Save(&room).Error; err != nil {
		utils.Error(c, 5000, "更新失败: "+err.Error())
		return
	}
	utils.Success(c, "Room updated", room)
}

func (h *Handler) AdminDeleteRoom(c *gin.Context) {
	res := h.Game.DB.Delete(&models.Room{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		utils.Error(c, 5000, "删除失败")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(c, 4004, "资源不存在")
		return
	}
	utils.Success(c, "Room deleted", nil)
}

// --- 谜题管理 ---

func (h *Handler) AdminCreatePuzzle(c *gin.Context) {
	var req dto.PuzzleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	if !services.ValidateFlagFormat(req.Flag) {
		utils.Error(c, 1001, "Flag 格式非法")
		return
	}

	hash, err := services.HashFlag(req.Flag)
	if err != nil {
		utils.Error(c, 5000, "Flag 摘要失败")
		return
	}
	puzzle := models.Puzzle{
		RoomID:      req.RoomID,
		Title:       req.Title,
		Type:        models.PuzzleType(req.Type),
		Description: req.Description,
		FlagHash:    hash,
	}
	if puzzle.Type == "" {
		puzzle.Type = models.PuzzleTypeStaticFlag
	}
	if req.PointsReward > 0 {
		puzzle.PointsReward = req.PointsReward
	}
	if err := h.Game.DB.Create(&puzzle).Error; err != nil {
		utils.Error(c, 5000, "创建谜题失败: "+err.Error())
		return
	}
	utils.Success(c, "Puzzle created", gin.H{"id": puzzle.ID})
}

func (h *Handler) AdminUpdatePuzzle(c *gin.Context) {
	var req dto.PuzzleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	var puzzle models.Puzzle
	if err := h.Game.DB.Where("id = ?", c.Param("id")).First(&puzzle).Error; err != nil {
		utils.Error(c, 4004, "资源不存在")
		return
	}
	hash, err := services.HashFlag(req.Flag)
	if err != nil {
		utils.Error(c, 5000, "Flag 摘要失败")
		return
	}
	puzzle.RoomID = req.RoomID
	puzzle.Title = req.Title
	puzzle.Description = req.Description
	puzzle.FlagHash = hash
	if req.PointsReward > 0 {
		puzzle.PointsReward = req.PointsReward
	}
	if err := h.Game.DB.Save(&puzzle).Error; err != nil {
		utils.Error(c, 5000, "更新失败")
		return
	}
	utils.Success(c, "Puzzle updated", nil)
}

func (h *Handler) AdminDeletePuzzle(c *gin.Context) {
	res := h.Game.DB.Delete(&models.Puzzle{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		utils.Error(c, 5000, "删除失败")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(c, 4004, "资源不存在")
		return
	}
	utils.Success(c, "Puzzle deleted", nil)
}

// --- 线索 / 道具管理 ---

func (h *Handler) AdminCreateClue(c *gin.Context) {
	var req dto.ClueReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	clue := models.Clue{
		PuzzleID:   req.PuzzleID,
		Text:       req.Text,
		Cost:       req.Cost,
		IsOneTime:  true,
		OrderIndex: req.OrderIndex,
	}
	if req.IsOneTime != nil {
		clue.IsOneTime = *req.IsOneTime
	}
	if err := h.Game.DB.Create(&clue).Error; err != nil {
		utils.Error(c, 5000, "创建线索失败")
		return
	}
	utils.Success(c, "Clue created", gin.H{"id": clue.ID})
}

func (h *Handler) AdminCreatePerk(c *gin.Context) {
	var req dto.PerkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	perk := models.Perk{
		Name:        req.Name,
		Description: req.Description,
		Cost:        req.Cost,
		IsOneTime:   true,
		PerkType:    models.PerkTypeTool,
	}
	if req.IsOneTime != nil {
		perk.IsOneTime = *req.IsOneTime
	}
	if req.PerkType != "" {
		perk.PerkType = models.PerkType(req.PerkType)
	}
	if req.Effect != nil {
		if raw, err := json.Marshal(req.Effect); err == nil {
			perk.Effect = raw
		}
	}
	if err := h.Game.DB.Create(&perk).Error; err != nil {
		utils.Error(c, 5000, "创建道具失败")
		return
	}
	utils.Success(c, "Perk created", gin.H{"id": perk.ID})
}

// --- 队伍处置 ---

func (h *Handler) AdminOverrideProgress(c *gin.Context) {
	adminID, _ := middlewares.UserIDFromContext(c)

	var req dto.TeamOverrideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	if err := h.Game.OverrideProgress(adminID, req.TeamID, req.NewRoomID, req.Reason, c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Team progress overridden", nil)
}

// AdminAdjustPoints 管理员调账（允许负值），等价于退款/没收
func (h *Handler) AdminAdjustPoints(c *gin.Context) {
	adminID, _ := middlewares.UserIDFromContext(c)

	var req dto.AdjustPointsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = "adjust_points"
	}
	if err := h.Game.Adjust(c.Param("id"), req.Delta, adminID, reason, c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Points adjusted", nil)
}

func (h *Handler) AdminDisableTeam(c *gin.Context) {
	adminID, _ := middlewares.UserIDFromContext(c)
	if err := h.Game.DisableTeam(adminID, c.Param("id"), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Team disabled", nil)
}

func (h *Handler) AdminGetTeams(c *gin.Context) {
	var teams []models.Team
	if err := h.Game.DB.Preload("Members.User").Find(&teams).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}
	utils.Success(c, "success", teams)
}

func (h *Handler) AdminGetLogs(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, _ := strconv.Atoi(limitStr)

	logs, err := h.Game.RecentLogs(limit)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "success", logs)
}
