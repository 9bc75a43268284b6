// file: controllers/handler.go
package controllers

import (
	"errors"

	"EscapeCTF/realtime"
	"EscapeCTF/services"
	"EscapeCTF/utils"

	"github.com/gin-gonic/gin"
)

// Handler 持有规则引擎与实时推送层，所有路由处理函数挂在它上面
type Handler struct {
	Game *services.Game
	Hub  *realtime.Hub
}

func NewHandler(game *services.Game, hub *realtime.Hub) *Handler {
	return &Handler{Game: game, Hub: hub}
}

// respondError 服务层错误到响应码的唯一映射点
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		utils.Error(c, 1001, "输入格式非法")
	case errors.Is(err, services.ErrForbidden):
		utils.Error(c, 4003, "无权执行该操作")
	case errors.Is(err, services.ErrNotFound):
		utils.Error(c, 4004, "资源不存在")
	case errors.Is(err, services.ErrConflict):
		utils.Error(c, 4009, "状态冲突")
	case errors.Is(err, services.ErrInsufficientFunds):
		utils.Error(c, 4011, "积分不足")
	case errors.Is(err, services.ErrRateLimited):
		utils.Error(c, 4290, "操作过于频繁，请稍后再试")
	case errors.Is(err, services.ErrUnavailable):
		utils.Error(c, 5003, "依赖服务暂不可用，请重试")
	default:
		utils.Error(c, 5000, "内部错误")
	}
}
