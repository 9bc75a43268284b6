// file: services/flag_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"EscapeCTF/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Flag 校验使用 bcrypt：盐随摘要一起存储，校验时用存储盐重推导，
// 同一 Flag 的校验结果是确定的，比较本身也是等耗时的。

const (
	maxFlagLength = 500

	submitLimit  = 10
	submitWindow = 5 * time.Minute
)

var (
	flagCharset    = regexp.MustCompile(`^[A-Za-z0-9_\-{}\[\]@:.]+$`)
	flagSuspicious = regexp.MustCompile(`['";<>&|]`)
)

// HashFlag 生成 Flag 的加盐摘要
func HashFlag(flag string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(flag), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyFlag 用存储的摘要校验提交值
func VerifyFlag(flagHash, submitted string) bool {
	return bcrypt.CompareHashAndPassword([]byte(flagHash), []byte(submitted)) == nil
}

// ValidateFlagFormat 语法白名单检查，在任何比较之前执行，
// 与正确与否无关，用于挡注入和超长 DoS
func ValidateFlagFormat(flag string) bool {
	if flag == "" || len(flag) > maxFlagLength {
		return false
	}
	if flagSuspicious.MatchString(flag) {
		return false
	}
	return flagCharset.MatchString(flag)
}

type SubmitResult struct {
	Correct       bool    `json:"correct"`
	PointsAwarded float64 `json:"points_awarded"`
}

// SubmitFlag 提交 Flag 的完整流程：
// 格式检查 → 限速 → 锁队伍行 → 受攻击拦截 → 判重 → 校验 → 记账。
// 错误的 Flag 不算失败操作，照样落提交记录并返回 Correct=false。
func (g *Game) SubmitFlag(userID, puzzleID, flag, ip string) (*SubmitResult, error) {
	if !ValidateFlagFormat(flag) {
		return nil, ErrInvalidInput
	}

	team, _, err := g.TeamOf(userID)
	if err != nil {
		return nil, err
	}

	identity := fmt.Sprintf("%s:%s", team.ID, puzzleID)
	ok, err := g.Limiter.Allow(context.Background(), identity, "submit_flag", submitLimit, submitWindow)
	if err != nil {
		return nil, wrapStorage(err)
	}
	if !ok {
		return nil, ErrRateLimited
	}

	now := g.Now()
	result := &SubmitResult{}
	err = g.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := lockTeam(tx, team.ID)
		if err != nil {
			return err
		}

		// 受攻击期间禁止提交（惰性过期：只看 ends_at 是否还没到）
		var attacks int64
		if err := tx.Model(&models.Action{}).
			Where("target_team_id = ? AND action_type = ? AND status = ? AND ends_at > ?",
				locked.ID, models.ActionTypeAttack, models.ActionStatusActive, now).
			Count(&attacks).Error; err != nil {
			return wrapStorage(err)
		}
		if attacks > 0 {
			return ErrForbidden
		}

		var puzzle models.Puzzle
		if err := tx.Where("id = ? AND is_active = ?", puzzleID, true).First(&puzzle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return wrapStorage(err)
		}

		// 同一队伍对同一题只允许一条正确记录
		var solved int64
		if err := tx.Model(&models.Submission{}).
			Where("team_id = ? AND puzzle_id = ? AND is_correct = ?", locked.ID, puzzleID, true).
			Count(&solved).Error; err != nil {
			return wrapStorage(err)
		}
		if solved > 0 {
			return ErrConflict
		}

		result.Correct = VerifyFlag(puzzle.FlagHash, flag)

		submittedDigest, err := HashFlag(flag)
		if err != nil {
			return err
		}
		submission := models.Submission{
			TeamID:        locked.ID,
			PuzzleID:      puzzleID,
			SubmittedFlag: submittedDigest,
			IsCorrect:     result.Correct,
			IPAddress:     ip,
		}
		if err := wrapStorage(tx.Create(&submission).Error); err != nil {
			return err
		}

		if !result.Correct {
			return nil
		}

		result.PointsAwarded = puzzle.PointsReward
		if err := creditLocked(tx, locked, puzzle.PointsReward); err != nil {
			return err
		}
		return audit(tx, &userID, "solve_puzzle", map[string]any{
			"team_id": locked.ID, "puzzle_id": puzzleID, "points": puzzle.PointsReward,
		}, ip)
	})
	if err != nil {
		return nil, err
	}

	if result.Correct {
		g.invalidateLeaderboard()
		g.Notify.Broadcast(map[string]any{"type": "puzzle_solved", "team_id": team.ID, "puzzle_id": puzzleID})
	}
	return result, nil
}
