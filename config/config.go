// file: config/config.go
package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 全部来自环境变量（本地开发可放 .env）。
// 不再把 DSN 和密钥硬编码在源码里。
type Config struct {
	ListenAddr string
	MySQLDSN   string
	RedisAddr  string
	RedisPass  string
	RedisDB    int
	JWTSecret  string
}

// C 进程级配置，main 里 Load 之后只读
var C = defaults()

func defaults() Config {
	return Config{
		ListenAddr: ":8080",
		MySQLDSN:   "root:123456@tcp(localhost:3306)/escapectf?charset=utf8mb4&parseTime=True&loc=Local",
		RedisAddr:  "localhost:6379",
		JWTSecret:  "dev-only-secret-change-me",
	}
}

// Load 读取 .env（可选）与环境变量
func Load() {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		C.ListenAddr = v
	}
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		C.MySQLDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		C.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		C.RedisPass = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid REDIS_DB, using default", "value", v)
		} else {
			C.RedisDB = n
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		C.JWTSecret = v
	} else {
		slog.Warn("JWT_SECRET not set, using insecure development secret")
	}
}
