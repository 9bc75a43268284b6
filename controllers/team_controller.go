// file: controllers/team_controller.go
package controllers

import (
	"EscapeCTF/dto"
	"EscapeCTF/middlewares"
	"EscapeCTF/models"
	"EscapeCTF/services"
	"EscapeCTF/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateTeam(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)

	var req dto.CreateTeamReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	team, err := h.Game.CreateTeam(userID, req.Name, req.Description, req.Capacity, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Team created successfully", team)
}

// GetMyTeam 当前用户所在队伍（含成员）
func (h *Handler) GetMyTeam(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)

	team, membership, err := h.Game.TeamOf(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Game.DB.Preload("Members.User").First(team, "id = ?", team.ID).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}
	utils.Success(c, "success", gin.H{"team": team, "role": membership.Role})
}

func (h *Handler) RequestJoinTeam(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)
	teamID := c.Param("id")

	var req dto.JoinTeamReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	req.Normalize()

	request, err := h.Game.RequestJoin(userID, teamID, req.InviteCode, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Join request submitted", gin.H{"request_id": request.ID})
}

func (h *Handler) AcceptJoinRequest(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)
	if err := h.Game.AcceptJoinRequest(userID, c.Param("request_id"), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Join request accepted", nil)
}

func (h *Handler) RejectJoinRequest(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)
	if err := h.Game.RejectJoinRequest(userID, c.Param("request_id"), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Join request rejected", nil)
}

// GetJoinRequests 队长查看待审批的入队申请
func (h *Handler) GetJoinRequests(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)

	team, membership, err := h.Game.TeamOf(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := services.RequireCaptain(team, membership, userID); err != nil {
		respondError(c, err)
		return
	}

	var requests []models.TeamJoinRequest
	if err := h.Game.DB.Preload("User").
		Where("team_id = ? AND status = ?", team.ID, models.JoinRequestPending).
		Find(&requests).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}
	utils.Success(c, "success", requests)
}

func (h *Handler) LeaveTeam(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)
	if err := h.Game.LeaveTeam(userID, c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Left team", nil)
}

func (h *Handler) KickMember(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)
	if err := h.Game.KickMember(userID, c.Param("user_id"), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Member removed", nil)
}

func (h *Handler) DisbandTeam(c *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(c)
	if err := h.Game.DisbandTeam(userID, c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Team disbanded", nil)
}
