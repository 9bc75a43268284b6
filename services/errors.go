// file: services/errors.go
package services

import (
	"errors"
)

// 核心错误分类。控制器用 errors.Is 映射到响应码，
// 任何失败都不会留下半成品状态（最多多一条审计记录）。
var (
	ErrNotFound          = errors.New("资源不存在")
	ErrConflict          = errors.New("状态冲突")
	ErrInsufficientFunds = errors.New("积分不足")
	ErrForbidden         = errors.New("无权执行该操作")
	ErrRateLimited       = errors.New("操作过于频繁")
	ErrInvalidInput      = errors.New("输入格式非法")
	ErrUnavailable       = errors.New("依赖服务暂不可用")
)
