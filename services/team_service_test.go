// file: services/team_service_test.go
package services

import (
	"errors"
	"testing"
	"time"

	"EscapeCTF/models"
)

func TestCreateTeam(t *testing.T) {
	g, _, _ := newTestGame(t)
	user := seedUser(t, g, "founder@test.local")

	team, err := g.CreateTeam(user.ID, "密室先锋", "冲榜", 4, "127.0.0.1")
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if team.PointsBalance != 1000 {
		t.Fatalf("初始余额 = %v, 期望 1000", team.PointsBalance)
	}
	if team.CaptainUserID != user.ID {
		t.Fatalf("队长 = %s, 期望 %s", team.CaptainUserID, user.ID)
	}
	if len(team.InviteCode) != 12 {
		t.Fatalf("邀请码长度 = %d, 期望 12", len(team.InviteCode))
	}

	// 创建者被记为队长成员，角色升级
	var member models.TeamMember
	if err := g.DB.Where("team_id = ? AND user_id = ?", team.ID, user.ID).First(&member).Error; err != nil {
		t.Fatalf("查询成员: %v", err)
	}
	if member.Role != models.TeamRoleCaptain {
		t.Fatalf("成员角色 = %s, 期望 captain", member.Role)
	}
	var refreshed models.User
	g.DB.Where("id = ?", user.ID).First(&refreshed)
	if refreshed.Role != models.RoleCaptain {
		t.Fatalf("用户角色 = %s, 期望 team_captain", refreshed.Role)
	}
}

func TestCreateTeamDuplicateName(t *testing.T) {
	g, _, _ := newTestGame(t)
	u1 := seedUser(t, g, "a@test.local")
	u2 := seedUser(t, g, "b@test.local")

	if _, err := g.CreateTeam(u1.ID, "Alpha", "", 4, ""); err != nil {
		t.Fatalf("首次建队: %v", err)
	}
	// 大小写不敏感查重
	if _, err := g.CreateTeam(u2.ID, "alpha", "", 4, ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("重名 err = %v, 期望 ErrConflict", err)
	}
}

func TestCreateTeamAlreadyInTeam(t *testing.T) {
	g, _, _ := newTestGame(t)
	user := seedUser(t, g, "a@test.local")

	if _, err := g.CreateTeam(user.ID, "Alpha", "", 4, ""); err != nil {
		t.Fatalf("建队: %v", err)
	}
	if _, err := g.CreateTeam(user.ID, "Bravo", "", 4, ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("二次建队 err = %v, 期望 ErrConflict", err)
	}
}

func TestCreateTeamRateLimited(t *testing.T) {
	g, _, clk := newTestGame(t)

	// 限速按用户身份计数：同一用户每次建完就解散，单测限速本身
	user := seedUser(t, g, "spam@test.local")
	for i := 0; i < createTeamLimit; i++ {
		if _, err := g.CreateTeam(user.ID, "Spam", "", 4, ""); err != nil {
			t.Fatalf("第 %d 次建队: %v", i+1, err)
		}
		if err := g.DisbandTeam(user.ID, ""); err != nil {
			t.Fatalf("解散: %v", err)
		}
	}
	if _, err := g.CreateTeam(user.ID, "Spam", "", 4, ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, 期望 ErrRateLimited", err)
	}

	clk.Advance(createTeamWindow + time.Second)
	if _, err := g.CreateTeam(user.ID, "Spam", "", 4, ""); err != nil {
		t.Fatalf("窗口滑过后建队: %v", err)
	}
}

// 畸形请求在校验阶段就被拒绝，不消耗建队额度
func TestCreateTeamBlankNameKeepsQuota(t *testing.T) {
	g, _, _ := newTestGame(t)
	user := seedUser(t, g, "typo@test.local")

	for i := 0; i < createTeamLimit+2; i++ {
		if _, err := g.CreateTeam(user.ID, "   ", "", 4, ""); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("第 %d 次空名: err = %v, 期望 ErrInvalidInput", i+1, err)
		}
	}
	if _, err := g.CreateTeam(user.ID, "Finally", "", 4, ""); err != nil {
		t.Fatalf("空名尝试不应占用额度: %v", err)
	}
}

func TestJoinFlow(t *testing.T) {
	g, notify, _ := newTestGame(t)
	captain := seedUser(t, g, "captain@test.local")
	joiner := seedUser(t, g, "joiner@test.local")

	team, err := g.CreateTeam(captain.ID, "Alpha", "", 4, "")
	if err != nil {
		t.Fatalf("建队: %v", err)
	}

	request, err := g.RequestJoin(joiner.ID, team.ID, team.InviteCode, "127.0.0.1")
	if err != nil {
		t.Fatalf("RequestJoin: %v", err)
	}
	// 同一人待审期间不能重复申请
	if _, err := g.RequestJoin(joiner.ID, team.ID, team.InviteCode, ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("重复申请 err = %v, 期望 ErrConflict", err)
	}

	if err := g.AcceptJoinRequest(captain.ID, request.ID, ""); err != nil {
		t.Fatalf("AcceptJoinRequest: %v", err)
	}
	var member models.TeamMember
	if err := g.DB.Where("team_id = ? AND user_id = ?", team.ID, joiner.ID).First(&member).Error; err != nil {
		t.Fatalf("入队后查询成员: %v", err)
	}
	if member.Role != models.TeamRoleMember {
		t.Fatalf("成员角色 = %s, 期望 member", member.Role)
	}
	if notify.count("user") != 1 {
		t.Fatalf("用户推送 = %d, 期望 1 (join_accepted)", notify.count("user"))
	}

	// 申请已处理，重复审批是冲突
	if err := g.AcceptJoinRequest(captain.ID, request.ID, ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("重复审批 err = %v, 期望 ErrConflict", err)
	}
}

func TestRequestJoinWrongInviteCode(t *testing.T) {
	g, _, _ := newTestGame(t)
	captain := seedUser(t, g, "captain@test.local")
	joiner := seedUser(t, g, "joiner@test.local")

	team, err := g.CreateTeam(captain.ID, "Alpha", "", 4, "")
	if err != nil {
		t.Fatalf("建队: %v", err)
	}

	if _, err := g.RequestJoin(joiner.ID, team.ID, "WRONG-CODE", ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, 期望 ErrForbidden", err)
	}
	// 失败尝试要留审计痕迹
	if got := auditCount(t, g, "failed_join_attempt"); got != 1 {
		t.Fatalf("failed_join_attempt 审计记录 = %d, 期望 1", got)
	}
}

func TestAcceptJoinRequestCapacityFull(t *testing.T) {
	g, _, _ := newTestGame(t)
	captain := seedUser(t, g, "captain@test.local")
	team, err := g.CreateTeam(captain.ID, "Alpha", "", 2, "")
	if err != nil {
		t.Fatalf("建队: %v", err)
	}

	first := seedUser(t, g, "first@test.local")
	req1, err := g.RequestJoin(first.ID, team.ID, team.InviteCode, "")
	if err != nil {
		t.Fatalf("第一份申请: %v", err)
	}
	if err := g.AcceptJoinRequest(captain.ID, req1.ID, ""); err != nil {
		t.Fatalf("通过第一份: %v", err)
	}

	// 容量 2 已满
	second := seedUser(t, g, "second@test.local")
	req2, err := g.RequestJoin(second.ID, team.ID, team.InviteCode, "")
	if err != nil {
		t.Fatalf("第二份申请: %v", err)
	}
	if err := g.AcceptJoinRequest(captain.ID, req2.ID, ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("超容审批 err = %v, 期望 ErrConflict", err)
	}
}

func TestLeaveTeam(t *testing.T) {
	g, _, _ := newTestGame(t)
	captain := seedUser(t, g, "captain@test.local")
	member := seedUser(t, g, "member@test.local")
	team, err := g.CreateTeam(captain.ID, "Alpha", "", 4, "")
	if err != nil {
		t.Fatalf("建队: %v", err)
	}
	addMember(t, g, team, member)

	// 队长不能直接退队
	if err := g.LeaveTeam(captain.ID, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("队长退队 err = %v, 期望 ErrForbidden", err)
	}
	if err := g.LeaveTeam(member.ID, ""); err != nil {
		t.Fatalf("队员退队: %v", err)
	}
	var count int64
	g.DB.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&count)
	if count != 1 {
		t.Fatalf("剩余成员 = %d, 期望 1", count)
	}
}

func TestKickMember(t *testing.T) {
	g, notify, _ := newTestGame(t)
	captain := seedUser(t, g, "captain@test.local")
	member := seedUser(t, g, "member@test.local")
	team, err := g.CreateTeam(captain.ID, "Alpha", "", 4, "")
	if err != nil {
		t.Fatalf("建队: %v", err)
	}
	addMember(t, g, team, member)

	// 不能踢自己
	if err := g.KickMember(captain.ID, captain.ID, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("踢自己 err = %v, 期望 ErrInvalidInput", err)
	}
	if err := g.KickMember(captain.ID, member.ID, ""); err != nil {
		t.Fatalf("KickMember: %v", err)
	}
	if notify.count("user") != 1 {
		t.Fatalf("被踢通知 = %d, 期望 1", notify.count("user"))
	}
	// 已不在队里的人再踢一次是 NotFound
	if err := g.KickMember(captain.ID, member.ID, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("重复踢 err = %v, 期望 ErrNotFound", err)
	}
}

func TestDisbandTeam(t *testing.T) {
	g, _, _ := newTestGame(t)
	captain := seedUser(t, g, "captain@test.local")
	member := seedUser(t, g, "member@test.local")
	team, err := g.CreateTeam(captain.ID, "Alpha", "", 4, "")
	if err != nil {
		t.Fatalf("建队: %v", err)
	}
	addMember(t, g, team, member)

	if err := g.DisbandTeam(captain.ID, ""); err != nil {
		t.Fatalf("DisbandTeam: %v", err)
	}

	var teams, members int64
	g.DB.Model(&models.Team{}).Where("id = ?", team.ID).Count(&teams)
	g.DB.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&members)
	if teams != 0 || members != 0 {
		t.Fatalf("解散后残留: teams=%d members=%d", teams, members)
	}
	// 队长角色回落
	var refreshed models.User
	g.DB.Where("id = ?", captain.ID).First(&refreshed)
	if refreshed.Role != models.RolePlayer {
		t.Fatalf("用户角色 = %s, 期望 player", refreshed.Role)
	}
}
