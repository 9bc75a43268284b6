// file: dto/admin.go
package dto

type RoomReq struct {
	Name                      string   `json:"name" binding:"required,max=100"`
	OrderIndex                int      `json:"order_index" binding:"required,min=1"`
	Description               string   `json:"description"`
	IsChallenge               bool     `json:"is_challenge"`
	UnlockCost                float64  `json:"unlock_cost"`
	ChallengeInvestment       *float64 `json:"challenge_investment"`
	ChallengeRewardMultiplier float64  `json:"challenge_reward_multiplier"`
}

type PuzzleReq struct {
	RoomID       string  `json:"room_id" binding:"required"`
	Title        string  `json:"title" binding:"required,max=100"`
	Type         string  `json:"type"`
	Description  string  `json:"description"`
	Flag         string  `json:"flag" binding:"required"`
	PointsReward float64 `json:"points_reward"`
}

type ClueReq struct {
	PuzzleID   string  `json:"puzzle_id" binding:"required"`
	Text       string  `json:"text" binding:"required"`
	Cost       float64 `json:"cost" binding:"required"`
	IsOneTime  *bool   `json:"is_one_time"`
	OrderIndex int     `json:"order_index"`
}

type PerkReq struct {
	Name        string         `json:"name" binding:"required,max=100"`
	Description string         `json:"description"`
	Cost        float64        `json:"cost" binding:"required"`
	Effect      map[string]any `json:"effect"`
	IsOneTime   *bool          `json:"is_one_time"`
	PerkType    string         `json:"perk_type"`
}

type TeamOverrideReq struct {
	TeamID    string `json:"team_id" binding:"required"`
	NewRoomID string `json:"new_room_id" binding:"required"`
	Reason    string `json:"reason"`
}

type AdjustPointsReq struct {
	Delta  float64 `json:"delta" binding:"required"`
	Reason string  `json:"reason"`
}
