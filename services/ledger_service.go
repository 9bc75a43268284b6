// file: services/ledger_service.go
package services

import (
	"EscapeCTF/models"

	"gorm.io/gorm"
)

// 账本：队伍积分余额的唯一变更入口。
// 正常消费不允许把余额打到负数；只有管理员 Adjust 例外。

// creditLocked 在已锁定的队伍行上加分
func creditLocked(tx *gorm.DB, team *models.Team, amount float64) error {
	team.PointsBalance += amount
	return wrapStorage(tx.Model(team).Update("points_balance", team.PointsBalance).Error)
}

// debitLocked 在已锁定的队伍行上扣分，余额不足则原子失败
func debitLocked(tx *gorm.DB, team *models.Team, amount float64) error {
	if amount > team.PointsBalance {
		return ErrInsufficientFunds
	}
	team.PointsBalance -= amount
	return wrapStorage(tx.Model(team).Update("points_balance", team.PointsBalance).Error)
}

// Credit 给队伍加分并记账
func (g *Game) Credit(teamID string, amount float64, actorUserID, reason, ip string) error {
	err := g.DB.Transaction(func(tx *gorm.DB) error {
		team, err := lockTeam(tx, teamID)
		if err != nil {
			return err
		}
		if err := creditLocked(tx, team, amount); err != nil {
			return err
		}
		return audit(tx, &actorUserID, reason, map[string]any{
			"team_id": teamID, "amount": amount, "balance": team.PointsBalance,
		}, ip)
	})
	if err == nil {
		g.invalidateLeaderboard()
	}
	return err
}

// Debit 扣分；amount 大于余额时返回 ErrInsufficientFunds，不产生部分扣减
func (g *Game) Debit(teamID string, amount float64, actorUserID, reason, ip string) error {
	err := g.DB.Transaction(func(tx *gorm.DB) error {
		team, err := lockTeam(tx, teamID)
		if err != nil {
			return err
		}
		if err := debitLocked(tx, team, amount); err != nil {
			return err
		}
		return audit(tx, &actorUserID, reason, map[string]any{
			"team_id": teamID, "amount": -amount, "balance": team.PointsBalance,
		}, ip)
	})
	if err == nil {
		g.invalidateLeaderboard()
	}
	return err
}

// Adjust 管理员调账，允许结果为负（如没收积分）
func (g *Game) Adjust(teamID string, delta float64, actorUserID, reason, ip string) error {
	err := g.DB.Transaction(func(tx *gorm.DB) error {
		team, err := lockTeam(tx, teamID)
		if err != nil {
			return err
		}
		team.PointsBalance += delta
		if err := wrapStorage(tx.Model(team).Update("points_balance", team.PointsBalance).Error); err != nil {
			return err
		}
		return audit(tx, &actorUserID, reason, map[string]any{
			"team_id": teamID, "delta": delta, "balance": team.PointsBalance,
		}, ip)
	})
	if err == nil {
		g.invalidateLeaderboard()
	}
	return err
}
