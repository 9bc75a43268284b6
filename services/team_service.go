// file: services/team_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"EscapeCTF/models"
	"EscapeCTF/utils"

	"gorm.io/gorm"
)

const (
	createTeamLimit   = 3
	createTeamWindow  = time.Hour
	joinRequestLimit  = 5
	joinRequestWindow = 30 * time.Minute

	inviteCodeLength = 12
	initialBalance   = 1000.0
	defaultCapacity  = 4
)

// CreateTeam 建队：校验、限速、查重名（大小写不敏感）、建队并把创建者设为队长。
// 先校验再限速，畸形请求不消耗建队额度。
func (g *Game) CreateTeam(userID, name, description string, capacity int, ip string) (*models.Team, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}
	ok, err := g.Limiter.Allow(context.Background(), userID, "create_team", createTeamLimit, createTeamWindow)
	if err != nil {
		return nil, wrapStorage(err)
	}
	if !ok {
		return nil, ErrRateLimited
	}
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	var team models.Team
	err = g.DB.Transaction(func(tx *gorm.DB) error {
		var inTeam int64
		if err := tx.Model(&models.TeamMember{}).
			Where("user_id = ?", userID).Count(&inTeam).Error; err != nil {
			return wrapStorage(err)
		}
		if inTeam > 0 {
			return ErrConflict
		}

		var dup int64
		if err := tx.Model(&models.Team{}).
			Where("LOWER(team_name) = LOWER(?)", name).Count(&dup).Error; err != nil {
			return wrapStorage(err)
		}
		if dup > 0 {
			return ErrConflict
		}

		team = models.Team{
			TeamName:      name,
			Description:   description,
			CaptainUserID: userID,
			Capacity:      capacity,
			PointsBalance: initialBalance,
			InviteCode:    utils.GenerateInvitationCode(inviteCodeLength),
		}
		if err := wrapStorage(tx.Create(&team).Error); err != nil {
			return err
		}
		member := models.TeamMember{TeamID: team.ID, UserID: userID, Role: models.TeamRoleCaptain}
		if err := wrapStorage(tx.Create(&member).Error); err != nil {
			return err
		}
		if err := wrapStorage(tx.Model(&models.User{}).
			Where("id = ?", userID).Update("role", models.RoleCaptain).Error); err != nil {
			return err
		}
		return audit(tx, &userID, "create_team", map[string]any{
			"team_id": team.ID, "team_name": team.TeamName, "capacity": capacity,
		}, ip)
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// RequestJoin 凭邀请码提交入队申请，等队长审批
func (g *Game) RequestJoin(userID, teamID, inviteCode, ip string) (*models.TeamJoinRequest, error) {
	ok, err := g.Limiter.Allow(context.Background(), userID, "request_join_team", joinRequestLimit, joinRequestWindow)
	if err != nil {
		return nil, wrapStorage(err)
	}
	if !ok {
		return nil, ErrRateLimited
	}

	var request models.TeamJoinRequest
	err = g.DB.Transaction(func(tx *gorm.DB) error {
		var inTeam int64
		if err := tx.Model(&models.TeamMember{}).
			Where("user_id = ?", userID).Count(&inTeam).Error; err != nil {
			return wrapStorage(err)
		}
		if inTeam > 0 {
			return ErrConflict
		}

		var team models.Team
		if err := tx.Where("id = ?", teamID).First(&team).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return wrapStorage(err)
		}
		if team.InviteCode != inviteCode {
			if auditErr := audit(tx, &userID, "failed_join_attempt", map[string]any{
				"team_id": teamID, "reason": "invalid_invite_code",
			}, ip); auditErr != nil {
				return auditErr
			}
			return ErrForbidden
		}

		var pending int64
		if err := tx.Model(&models.TeamJoinRequest{}).
			Where("team_id = ? AND user_id = ? AND status = ?", teamID, userID, models.JoinRequestPending).
			Count(&pending).Error; err != nil {
			return wrapStorage(err)
		}
		if pending > 0 {
			return ErrConflict
		}

		request = models.TeamJoinRequest{TeamID: teamID, UserID: userID}
		if err := wrapStorage(tx.Create(&request).Error); err != nil {
			return err
		}
		return audit(tx, &userID, "request_join_team", map[string]any{"team_id": teamID}, ip)
	})
	if err != nil {
		return nil, err
	}

	g.Notify.PushTeam(teamID, map[string]any{"type": "join_request", "user_id": userID})
	return &request, nil
}

// AcceptJoinRequest 队长通过入队申请；容量满时拒绝
func (g *Game) AcceptJoinRequest(captainID, requestID, ip string) error {
	team, membership, err := g.TeamOf(captainID)
	if err != nil {
		return err
	}
	if err := RequireCaptain(team, membership, captainID); err != nil {
		return err
	}

	var joinedUserID string
	err = g.DB.Transaction(func(tx *gorm.DB) error {
		var request models.TeamJoinRequest
		if err := tx.Where("id = ? AND team_id = ?", requestID, team.ID).First(&request).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return wrapStorage(err)
		}
		if request.Status != models.JoinRequestPending {
			return ErrConflict
		}

		var memberCount int64
		if err := tx.Model(&models.TeamMember{}).
			Where("team_id = ?", team.ID).Count(&memberCount).Error; err != nil {
			return wrapStorage(err)
		}
		if int(memberCount) >= team.Capacity {
			return ErrConflict
		}

		// 申请方可能在等待期间加入了别的队
		var elsewhere int64
		if err := tx.Model(&models.TeamMember{}).
			Where("user_id = ?", request.UserID).Count(&elsewhere).Error; err != nil {
			return wrapStorage(err)
		}
		if elsewhere > 0 {
			return ErrConflict
		}

		member := models.TeamMember{TeamID: team.ID, UserID: request.UserID, Role: models.TeamRoleMember}
		if err := wrapStorage(tx.Create(&member).Error); err != nil {
			return err
		}
		if err := wrapStorage(tx.Model(&request).
			Update("status", models.JoinRequestAccepted).Error); err != nil {
			return err
		}
		joinedUserID = request.UserID
		return audit(tx, &captainID, "accept_join_request", map[string]any{
			"team_id": team.ID, "user_id": request.UserID,
		}, ip)
	})
	if err != nil {
		return err
	}

	g.Notify.PushUser(joinedUserID, map[string]any{"type": "join_accepted", "team_id": team.ID})
	return nil
}

// RejectJoinRequest 队长驳回入队申请
func (g *Game) RejectJoinRequest(captainID, requestID, ip string) error {
	team, membership, err := g.TeamOf(captainID)
	if err != nil {
		return err
	}
	if err := RequireCaptain(team, membership, captainID); err != nil {
		return err
	}

	return g.DB.Transaction(func(tx *gorm.DB) error {
		var request models.TeamJoinRequest
		if err := tx.Where("id = ? AND team_id = ?", requestID, team.ID).First(&request).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return wrapStorage(err)
		}
		if request.Status != models.JoinRequestPending {
			return ErrConflict
		}
		if err := wrapStorage(tx.Model(&request).
			Update("status", models.JoinRequestRejected).Error); err != nil {
			return err
		}
		return audit(tx, &captainID, "reject_join_request", map[string]any{
			"team_id": team.ID, "user_id": request.UserID,
		}, ip)
	})
}

// LeaveTeam 普通队员退队；队长必须先解散或转让（这里直接禁止）
func (g *Game) LeaveTeam(userID, ip string) error {
	team, membership, err := g.TeamOf(userID)
	if err != nil {
		return err
	}
	if team.CaptainUserID == userID {
		return ErrForbidden
	}

	return g.DB.Transaction(func(tx *gorm.DB) error {
		if err := wrapStorage(tx.Delete(&models.TeamMember{}, "id = ?", membership.ID).Error); err != nil {
			return err
		}
		return audit(tx, &userID, "leave_team", map[string]any{"team_id": team.ID}, ip)
	})
}

// KickMember 队长移除队员
func (g *Game) KickMember(captainID, targetUserID, ip string) error {
	team, membership, err := g.TeamOf(captainID)
	if err != nil {
		return err
	}
	if err := RequireCaptain(team, membership, captainID); err != nil {
		return err
	}
	if targetUserID == captainID {
		return ErrInvalidInput
	}

	err = g.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("team_id = ? AND user_id = ?", team.ID, targetUserID).
			Delete(&models.TeamMember{})
		if res.Error != nil {
			return wrapStorage(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return audit(tx, &captainID, "kick_member", map[string]any{
			"team_id": team.ID, "user_id": targetUserID,
		}, ip)
	})
	if err != nil {
		return err
	}

	g.Notify.PushUser(targetUserID, map[string]any{"type": "kicked", "team_id": team.ID})
	return nil
}

// DisbandTeam 队长解散队伍，级联清理成员与待审申请
func (g *Game) DisbandTeam(captainID, ip string) error {
	team, membership, err := g.TeamOf(captainID)
	if err != nil {
		return err
	}
	if err := RequireCaptain(team, membership, captainID); err != nil {
		return err
	}

	err = g.DB.Transaction(func(tx *gorm.DB) error {
		if err := wrapStorage(tx.Where("team_id = ?", team.ID).
			Delete(&models.TeamMember{}).Error); err != nil {
			return err
		}
		if err := wrapStorage(tx.Where("team_id = ?", team.ID).
			Delete(&models.TeamJoinRequest{}).Error); err != nil {
			return err
		}
		if err := wrapStorage(tx.Delete(&models.Team{}, "id = ?", team.ID).Error); err != nil {
			return err
		}
		if err := wrapStorage(tx.Model(&models.User{}).
			Where("id = ?", captainID).Update("role", models.RolePlayer).Error); err != nil {
			return err
		}
		return audit(tx, &captainID, "disband_team", map[string]any{"team_id": team.ID}, ip)
	})
	if err != nil {
		return err
	}

	g.invalidateLeaderboard()
	return nil
}
