// file: services/shop_service.go
package services

import (
	"errors"

	"EscapeCTF/models"

	"gorm.io/gorm"
)

// 商店：先判重、再扣分、最后落购买记录，三步在同一事务里，
// 队伍行锁住之后才开始检查，防止一次性物品被并发双买。

// BuyClue 队长购买线索，返回线索文本。
// 线索一律一次性：同队伍重复购买返回 ErrConflict。
func (g *Game) BuyClue(userID, clueID, ip string) (string, error) {
	team, membership, err := g.TeamOf(userID)
	if err != nil {
		return "", err
	}
	if err := RequireCaptain(team, membership, userID); err != nil {
		return "", err
	}

	var clue models.Clue
	err = g.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := lockTeam(tx, team.ID)
		if err != nil {
			return err
		}
		if err := tx.Where("id = ?", clueID).First(&clue).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return wrapStorage(err)
		}

		var bought int64
		if err := tx.Model(&models.Purchase{}).
			Where("team_id = ? AND clue_id = ?", locked.ID, clueID).
			Count(&bought).Error; err != nil {
			return wrapStorage(err)
		}
		if bought > 0 {
			return ErrConflict
		}

		if err := debitLocked(tx, locked, clue.Cost); err != nil {
			return err
		}
		purchase := models.Purchase{TeamID: locked.ID, ClueID: &clue.ID}
		if err := wrapStorage(tx.Create(&purchase).Error); err != nil {
			return err
		}
		return audit(tx, &userID, "buy_clue", map[string]any{
			"team_id": locked.ID, "clue_id": clueID, "cost": clue.Cost,
		}, ip)
	})
	if err != nil {
		return "", err
	}

	g.invalidateLeaderboard()
	g.Notify.PushTeam(team.ID, map[string]any{
		"type": "clue_purchased",
		"clue": map[string]any{"id": clue.ID, "text": clue.Text},
	})
	return clue.Text, nil
}

// BuyPerk 队长购买道具；一次性道具判重，可重复道具跳过判重
func (g *Game) BuyPerk(userID, perkID, ip string) error {
	team, membership, err := g.TeamOf(userID)
	if err != nil {
		return err
	}
	if err := RequireCaptain(team, membership, userID); err != nil {
		return err
	}

	err = g.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := lockTeam(tx, team.ID)
		if err != nil {
			return err
		}
		var perk models.Perk
		if err := tx.Where("id = ?", perkID).First(&perk).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return wrapStorage(err)
		}

		if perk.IsOneTime {
			var bought int64
			if err := tx.Model(&models.Purchase{}).
				Where("team_id = ? AND perk_id = ?", locked.ID, perkID).
				Count(&bought).Error; err != nil {
				return wrapStorage(err)
			}
			if bought > 0 {
				return ErrConflict
			}
		}

		if err := debitLocked(tx, locked, perk.Cost); err != nil {
			return err
		}
		purchase := models.Purchase{TeamID: locked.ID, PerkID: &perk.ID}
		if err := wrapStorage(tx.Create(&purchase).Error); err != nil {
			return err
		}
		return audit(tx, &userID, "buy_perk", map[string]any{
			"team_id": locked.ID, "perk_id": perkID, "cost": perk.Cost,
		}, ip)
	})
	if err != nil {
		return err
	}

	g.invalidateLeaderboard()
	return nil
}

// TeamPurchases 查询队伍已购买的线索/道具
func (g *Game) TeamPurchases(teamID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	if err := g.DB.Where("team_id = ?", teamID).
		Order("purchased_at asc").Find(&purchases).Error; err != nil {
		return nil, wrapStorage(err)
	}
	return purchases, nil
}
