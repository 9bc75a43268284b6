// file: main.go
package main

import (
	"log/slog"
	"os"

	"EscapeCTF/config"
	"EscapeCTF/controllers"
	"EscapeCTF/database"
	"EscapeCTF/realtime"
	"EscapeCTF/routes"
	"EscapeCTF/services"

	"github.com/lmittmann/tint"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, nil)))

	// 1. 加载配置
	config.Load()

	// 2. 初始化数据库与 Redis
	database.Connect()
	database.MigrateTables()
	database.InitRedis()

	// 3. 组装游戏服务
	hub := realtime.NewHub()
	limiter := services.NewRedisLimiter(database.RDB)
	game := services.NewGame(database.DB, limiter, hub, database.RDB)
	handler := controllers.NewHandler(game, hub)

	// 4. 启动 HTTP 服务
	r := routes.SetupRouter(handler, limiter)
	slog.Info("服务启动", "addr", config.C.ListenAddr)
	if err := r.Run(config.C.ListenAddr); err != nil {
		slog.Error("服务启动失败", "err", err)
		os.Exit(1)
	}
}
