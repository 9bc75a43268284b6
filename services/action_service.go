// file: services/action_service.go
package services

import (
	"encoding/json"
	"time"

	"EscapeCTF/models"

	"gorm.io/gorm"
)

// 动作状态机：attack/defend 创建即 active 并带 ends_at，
// invest 创建为 pending（结算逻辑是预留扩展点）。
// blocked 只在校验阶段出现，不会落库。

const (
	AttackCost     = 50.0
	DefendCost     = 30.0
	AttackDuration = 5 * time.Minute
	// 免疫窗口刻意短于攻击时长：攻击结束后目标立即可被再次攻击，
	// 但攻击进行中无法叠加第二次攻击
	ImmunityDuration = 3 * time.Minute
	ShieldDuration   = 10 * time.Minute
)

type ActionRequest struct {
	Type             models.ActionType
	TargetTeamID     string
	InvestmentAmount float64
}

// PerformAction 队长发起动作。攻击会锁住双方队伍行（按 id 排序防死锁），
// 扣分与给目标上免疫在同一事务内要么全做要么全不做。
func (g *Game) PerformAction(userID string, req ActionRequest, ip string) (*models.Action, error) {
	team, membership, err := g.TeamOf(userID)
	if err != nil {
		return nil, err
	}
	if err := RequireCaptain(team, membership, userID); err != nil {
		return nil, err
	}

	switch req.Type {
	case models.ActionTypeAttack:
		return g.performAttack(userID, team.ID, req.TargetTeamID, ip)
	case models.ActionTypeDefend:
		return g.performDefend(userID, team.ID, ip)
	case models.ActionTypeInvest:
		return g.performInvest(userID, team.ID, req.InvestmentAmount, ip)
	default:
		return nil, ErrInvalidInput
	}
}

func (g *Game) performAttack(userID, teamID, targetTeamID, ip string) (*models.Action, error) {
	if targetTeamID == "" || targetTeamID == teamID {
		return nil, ErrInvalidInput
	}

	now := g.Now()
	var action models.Action
	err := g.DB.Transaction(func(tx *gorm.DB) error {
		// 两行都要锁，固定按 id 排序避免交叉死锁
		first, second := teamID, targetTeamID
		if second < first {
			first, second = second, first
		}
		lockedFirst, err := lockTeam(tx, first)
		if err != nil {
			return err
		}
		lockedSecond, err := lockTeam(tx, second)
		if err != nil {
			return err
		}
		attacker, target := lockedFirst, lockedSecond
		if attacker.ID != teamID {
			attacker, target = lockedSecond, lockedFirst
		}

		// 免疫和护盾都按惰性过期判断
		if target.ImmuneAt(now) || target.ShieldedAt(now) {
			return ErrForbidden
		}
		if err := debitLocked(tx, attacker, AttackCost); err != nil {
			return err
		}

		endsAt := now.Add(AttackDuration)
		action = models.Action{
			TeamID:       attacker.ID,
			ActionType:   models.ActionTypeAttack,
			TargetTeamID: &target.ID,
			Cost:         AttackCost,
			Status:       models.ActionStatusActive,
			EndsAt:       &endsAt,
		}
		if err := wrapStorage(tx.Create(&action).Error); err != nil {
			return err
		}

		immunity := now.Add(ImmunityDuration)
		if err := wrapStorage(tx.Model(target).Update("immunity_until", immunity).Error); err != nil {
			return err
		}
		return audit(tx, &userID, "attack", map[string]any{
			"attacker_team_id": attacker.ID, "target_team_id": target.ID, "cost": AttackCost,
		}, ip)
	})
	if err != nil {
		return nil, err
	}

	g.invalidateLeaderboard()
	g.Notify.PushTeam(targetTeamID, map[string]any{
		"type":    "under_attack",
		"message": "你的队伍正在被攻击！",
	})
	return &action, nil
}

func (g *Game) performDefend(userID, teamID, ip string) (*models.Action, error) {
	now := g.Now()
	var action models.Action
	err := g.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := lockTeam(tx, teamID)
		if err != nil {
			return err
		}
		if err := debitLocked(tx, locked, DefendCost); err != nil {
			return err
		}

		expiry := now.Add(ShieldDuration)
		if err := wrapStorage(tx.Model(locked).Updates(map[string]any{
			"shield_active": true,
			"shield_expiry": expiry,
		}).Error); err != nil {
			return err
		}

		action = models.Action{
			TeamID:     teamID,
			ActionType: models.ActionTypeDefend,
			Cost:       DefendCost,
			Status:     models.ActionStatusActive,
			EndsAt:     &expiry,
		}
		if err := wrapStorage(tx.Create(&action).Error); err != nil {
			return err
		}
		return audit(tx, &userID, "defend", map[string]any{
			"team_id": teamID, "cost": DefendCost,
		}, ip)
	})
	if err != nil {
		return nil, err
	}

	g.invalidateLeaderboard()
	return &action, nil
}

func (g *Game) performInvest(userID, teamID string, amount float64, ip string) (*models.Action, error) {
	if amount <= 0 {
		return nil, ErrInvalidInput
	}

	var action models.Action
	err := g.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := lockTeam(tx, teamID)
		if err != nil {
			return err
		}
		if err := debitLocked(tx, locked, amount); err != nil {
			return err
		}

		result, _ := json.Marshal(map[string]any{"invested": amount})
		action = models.Action{
			TeamID:     teamID,
			ActionType: models.ActionTypeInvest,
			Cost:       amount,
			Result:     result,
			Status:     models.ActionStatusPending,
		}
		if err := wrapStorage(tx.Create(&action).Error); err != nil {
			return err
		}
		return audit(tx, &userID, "invest", map[string]any{
			"team_id": teamID, "amount": amount,
		}, ip)
	})
	if err != nil {
		return nil, err
	}

	g.invalidateLeaderboard()
	return &action, nil
}

// UnderAttackAt 队伍在 now 时刻是否被未过期的攻击压制
func (g *Game) UnderAttackAt(teamID string, now time.Time) (bool, error) {
	var count int64
	err := g.DB.Model(&models.Action{}).
		Where("target_team_id = ? AND action_type = ? AND status = ? AND ends_at > ?",
			teamID, models.ActionTypeAttack, models.ActionStatusActive, now).
		Count(&count).Error
	if err != nil {
		return false, wrapStorage(err)
	}
	return count > 0, nil
}

// TeamActions 查询队伍发起过的动作
func (g *Game) TeamActions(teamID string) ([]models.Action, error) {
	var actions []models.Action
	if err := g.DB.Where("team_id = ?", teamID).
		Order("created_at desc").Find(&actions).Error; err != nil {
		return nil, wrapStorage(err)
	}
	return actions, nil
}
