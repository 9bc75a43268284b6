// file: routes/router.go
package routes

import (
	"time"

	"EscapeCTF/controllers"
	"EscapeCTF/middlewares"
	"EscapeCTF/models"
	"EscapeCTF/services"

	"github.com/gin-gonic/gin"
)

func SetupRouter(h *controllers.Handler, limiter services.RateLimiter) *gin.Engine {
	r := gin.Default()
	r.Use(middlewares.RateLimitMiddleware(limiter, 10, time.Minute))

	apiV1 := r.Group("/api/v1")
	{
		// --- 用户 ---
		usersPublic := apiV1.Group("/users")
		{
			usersPublic.POST("/register", h.Register)
			usersPublic.POST("/login", h.Login)
			usersPublic.POST("/verify-email", h.VerifyEmail)
		}

		// --- 队伍 ---
		teamRoutes := apiV1.Group("/teams")
		teamRoutes.Use(middlewares.JWTAuthMiddleware(), middlewares.RequireVerifiedMiddleware())
		{
			teamRoutes.POST("", h.CreateTeam)
			teamRoutes.GET("/mine", h.GetMyTeam)
			teamRoutes.POST("/:id/join", h.RequestJoinTeam)
			teamRoutes.GET("/join-requests", h.GetJoinRequests)
			teamRoutes.POST("/join-requests/:request_id/accept", h.AcceptJoinRequest)
			teamRoutes.POST("/join-requests/:request_id/reject", h.RejectJoinRequest)
			teamRoutes.POST("/leave", h.LeaveTeam)
			teamRoutes.DELETE("/members/:user_id", h.KickMember)
			teamRoutes.DELETE("/mine", h.DisbandTeam)
		}

		// --- 游戏 ---
		gameRoutes := apiV1.Group("/game")
		gameRoutes.Use(middlewares.JWTAuthMiddleware(), middlewares.RequireVerifiedMiddleware())
		{
			gameRoutes.GET("/rooms", h.ListRooms)
			gameRoutes.GET("/rooms/:id", h.GetRoomDetail)
			gameRoutes.POST("/rooms/:id/unlock", h.UnlockRoom)
			gameRoutes.POST("/puzzles/:id/submit", h.SubmitFlag)
			gameRoutes.GET("/perks", h.ListPerks)
			gameRoutes.POST("/clues/:id/buy", h.BuyClue)
			gameRoutes.POST("/perks/:id/buy", h.BuyPerk)
			gameRoutes.POST("/actions", h.PerformAction)
			gameRoutes.GET("/purchases", h.GetMyPurchases)
			gameRoutes.GET("/actions", h.GetMyActions)
			gameRoutes.GET("/leaderboard", h.GetLeaderboard)
		}

		// --- 管理员 ---
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(middlewares.JWTAuthMiddleware(),
			middlewares.RoleAuthMiddleware(models.RoleAdmin, models.RoleOrganiser))
		{
			adminRoutes.POST("/rooms", h.AdminCreateRoom)
			adminRoutes.PUT("/rooms/:id", h.AdminUpdateRoom)
			adminRoutes.DELETE("/rooms/:id", h.AdminDeleteRoom)
			adminRoutes.POST("/puzzles", h.AdminCreatePuzzle)
			adminRoutes.PUT("/puzzles/:id", h.AdminUpdatePuzzle)
			adminRoutes.DELETE("/puzzles/:id", h.AdminDeletePuzzle)
			adminRoutes.POST("/clues", h.AdminCreateClue)
			adminRoutes.POST("/perks", h.AdminCreatePerk)
			adminRoutes.POST("/teams/override-progress", h.AdminOverrideProgress)
			adminRoutes.POST("/teams/:id/adjust", h.AdminAdjustPoints)
			adminRoutes.POST("/teams/:id/disable", h.AdminDisableTeam)
			adminRoutes.GET("/teams", h.AdminGetTeams)
			adminRoutes.GET("/logs", h.AdminGetLogs)
		}
	}

	// WebSocket 接入（token 在查询参数里，自行校验）
	r.GET("/ws/connect", h.WSConnect)
	r.GET("/ws/team/:id", h.WSTeamChannel)

	return r
}
