// file: services/game_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"EscapeCTF/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Notifier 推送事件给在线客户端。推送必须是 fire-and-forget：
// 掉线的订阅者绝不能阻塞或失败触发它的业务操作。
type Notifier interface {
	PushUser(userID string, event any)
	PushTeam(teamID string, event any)
	Broadcast(event any)
}

// NopNotifier 没有实时层时的空实现
type NopNotifier struct{}

func (NopNotifier) PushUser(string, any) {}
func (NopNotifier) PushTeam(string, any) {}
func (NopNotifier) Broadcast(any)        {}

// Game 规则引擎入口，持有全部外部协作方。
// Now 可注入，测试里用固定时钟；过期判断全部依赖它。
type Game struct {
	DB      *gorm.DB
	Limiter RateLimiter
	Notify  Notifier
	Cache   *redis.Client // 可为 nil，排行榜缓存失效用
	Now     func() time.Time
}

func NewGame(db *gorm.DB, limiter RateLimiter, notify Notifier, cache *redis.Client) *Game {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Game{DB: db, Limiter: limiter, Notify: notify, Cache: cache, Now: time.Now}
}

// lockTeam 对队伍行加 FOR UPDATE 锁，事务提交前该队伍的
// 余额/进度检查与写入被串行化
func lockTeam(tx *gorm.DB, teamID string) (*models.Team, error) {
	var team models.Team
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", teamID).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapStorage(err)
	}
	return &team, nil
}

// TeamOf 返回用户所在队伍及其成员身份
func (g *Game) TeamOf(userID string) (*models.Team, *models.TeamMember, error) {
	var membership models.TeamMember
	err := g.DB.Where("user_id = ?", userID).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, wrapStorage(err)
	}
	var team models.Team
	if err := g.DB.Where("id = ?", membership.TeamID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, wrapStorage(err)
	}
	return &team, &membership, nil
}

// RequireCaptain 能力检查统一入口：操作方必须是该队伍队长。
// 各控制器不得自行再查一遍角色。
func RequireCaptain(team *models.Team, membership *models.TeamMember, userID string) error {
	if team.CaptainUserID != userID && (membership == nil || membership.Role != models.TeamRoleCaptain) {
		return ErrForbidden
	}
	return nil
}

// audit 写一条审计记录；details 序列化失败时退化为空详情而不是丢操作
func audit(tx *gorm.DB, userID *string, action string, details map[string]any, ip string) error {
	var payload datatypes.JSON
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			payload = raw
		}
	}
	return tx.Create(&models.AuditLog{
		UserID:    userID,
		Action:    action,
		Details:   payload,
		IPAddress: ip,
	}).Error
}

// wrapStorage 持久层错误统一归类为 Unavailable，由外层重试或上报
func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrUnavailable, err)
}

func cacheContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Second)
}

// invalidateLeaderboard 使排行榜缓存失效；缓存不可用不影响业务结果
func (g *Game) invalidateLeaderboard() {
	if g.Cache == nil {
		return
	}
	ctx, cancel := cacheContext()
	defer cancel()
	keys, err := g.Cache.Keys(ctx, "leaderboard:*").Result()
	if err == nil && len(keys) > 0 {
		g.Cache.Del(ctx, keys...)
	}
}
