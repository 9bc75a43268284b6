// file: controllers/ws_controller.go
package controllers

import (
	"net/http"

	"EscapeCTF/models"
	"EscapeCTF/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 跨域由反代层控制
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsClaims 从查询参数里取 token 并校验，握手失败直接 401（尚未升级）
func (h *Handler) wsClaims(c *gin.Context) (*utils.Claims, bool) {
	token := c.Query("token")
	if token == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return nil, false
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return nil, false
	}
	return claims, true
}

// WSConnect WebSocket 接入。登录用户同时挂到个人频道和所在队伍频道。
func (h *Handler) WSConnect(c *gin.Context) {
	claims, ok := h.wsClaims(c)
	if !ok {
		return
	}

	teamID := ""
	if team, _, err := h.Game.TeamOf(claims.UserID); err == nil {
		teamID = team.ID
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	h.Hub.Register(conn, claims.UserID, teamID)
}

// WSTeamChannel 订阅指定队伍频道：必须是该队成员（管理员除外）
func (h *Handler) WSTeamChannel(c *gin.Context) {
	claims, ok := h.wsClaims(c)
	if !ok {
		return
	}
	teamID := c.Param("id")

	if claims.Role != models.RoleAdmin && claims.Role != models.RoleOrganiser {
		team, _, err := h.Game.TeamOf(claims.UserID)
		if err != nil || team.ID != teamID {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	h.Hub.Register(conn, claims.UserID, teamID)
}
