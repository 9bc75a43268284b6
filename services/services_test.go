// file: services/services_test.go
package services

import (
	"sync"
	"testing"
	"time"

	"EscapeCTF/models"
	"EscapeCTF/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 测试统一用 sqlite 内存库 + 固定时钟 + 假的推送器，
// 不依赖外部 MySQL / Redis。

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// testClock 可手动推进的时钟
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type pushedEvent struct {
	Kind   string // "user" / "team" / "broadcast"
	Target string
	Event  any
}

// fakeNotifier 记录所有推送，供断言
type fakeNotifier struct {
	mu     sync.Mutex
	events []pushedEvent
}

func (f *fakeNotifier) PushUser(userID string, event any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, pushedEvent{Kind: "user", Target: userID, Event: event})
}

func (f *fakeNotifier) PushTeam(teamID string, event any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, pushedEvent{Kind: "team", Target: teamID, Event: event})
}

func (f *fakeNotifier) Broadcast(event any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, pushedEvent{Kind: "broadcast", Event: event})
}

func (f *fakeNotifier) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func newTestGame(t *testing.T) (*Game, *fakeNotifier, *testClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	// 内存库必须限制单连接，否则每个连接各有一份空库
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层连接失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{}, &models.Team{}, &models.TeamMember{}, &models.TeamJoinRequest{},
		&models.Room{}, &models.Puzzle{}, &models.Clue{}, &models.Perk{},
		&models.Purchase{}, &models.Action{}, &models.Submission{}, &models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("建表失败: %v", err)
	}

	clk := &testClock{now: baseTime}
	limiter := NewMemoryLimiter()
	limiter.Now = clk.Now
	notify := &fakeNotifier{}

	g := NewGame(db, limiter, notify, nil)
	g.Now = clk.Now
	return g, notify, clk
}

func seedUser(t *testing.T, g *Game, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:      email,
		Password:   "test-password",
		Name:       email,
		IsVerified: true,
	}
	if err := g.DB.Create(user).Error; err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	return user
}

// seedTeam 建一支队伍并把 captain 设为队长成员
func seedTeam(t *testing.T, g *Game, name string, captain *models.User, balance float64) *models.Team {
	t.Helper()
	team := &models.Team{
		TeamName:      name,
		CaptainUserID: captain.ID,
		Capacity:      4,
		PointsBalance: balance,
		InviteCode:    utils.GenerateInvitationCode(12),
	}
	if err := g.DB.Create(team).Error; err != nil {
		t.Fatalf("创建测试队伍失败: %v", err)
	}
	member := &models.TeamMember{TeamID: team.ID, UserID: captain.ID, Role: models.TeamRoleCaptain}
	if err := g.DB.Create(member).Error; err != nil {
		t.Fatalf("创建队长成员失败: %v", err)
	}
	return team
}

// addMember 往队伍里加一名普通队员
func addMember(t *testing.T, g *Game, team *models.Team, user *models.User) {
	t.Helper()
	member := &models.TeamMember{TeamID: team.ID, UserID: user.ID, Role: models.TeamRoleMember}
	if err := g.DB.Create(member).Error; err != nil {
		t.Fatalf("添加队员失败: %v", err)
	}
}

func seedRoom(t *testing.T, g *Game, orderIndex int, unlockCost float64) *models.Room {
	t.Helper()
	room := &models.Room{
		Name:       "测试房间",
		OrderIndex: orderIndex,
		IsActive:   true,
		UnlockCost: unlockCost,
	}
	if err := g.DB.Create(room).Error; err != nil {
		t.Fatalf("创建测试房间失败: %v", err)
	}
	return room
}

func seedPuzzle(t *testing.T, g *Game, room *models.Room, flag string, reward float64) *models.Puzzle {
	t.Helper()
	hash, err := HashFlag(flag)
	if err != nil {
		t.Fatalf("哈希 Flag 失败: %v", err)
	}
	puzzle := &models.Puzzle{
		RoomID:       room.ID,
		Title:        "测试题目",
		FlagHash:     hash,
		PointsReward: reward,
		IsActive:     true,
	}
	if err := g.DB.Create(puzzle).Error; err != nil {
		t.Fatalf("创建测试题目失败: %v", err)
	}
	return puzzle
}

func teamBalance(t *testing.T, g *Game, teamID string) float64 {
	t.Helper()
	var team models.Team
	if err := g.DB.Where("id = ?", teamID).First(&team).Error; err != nil {
		t.Fatalf("查询队伍失败: %v", err)
	}
	return team.PointsBalance
}

func auditCount(t *testing.T, g *Game, action string) int64 {
	t.Helper()
	var count int64
	if err := g.DB.Model(&models.AuditLog{}).
		Where("action = ?", action).Count(&count).Error; err != nil {
		t.Fatalf("统计审计记录失败: %v", err)
	}
	return count
}
