// file: dto/game.go
package dto

import "strings"

type SubmitFlagReq struct {
	Flag string `json:"flag"`

	// 兼容旧客户端字段名
	FlagAlias string `json:"Flag"`
}

// Normalize: 别名归一化并裁剪首尾空白
func (r *SubmitFlagReq) Normalize() {
	if r.Flag == "" && r.FlagAlias != "" {
		r.Flag = r.FlagAlias
	}
	r.Flag = strings.TrimSpace(r.Flag)
}

type ActionReq struct {
	ActionType       string  `json:"action_type"`
	TargetTeamID     string  `json:"target_team_id"`
	InvestmentAmount float64 `json:"investment_amount"`

	// camelCase 别名
	ActionTypeCamel       string  `json:"actionType"`
	TargetTeamIDCamel     string  `json:"targetTeamId"`
	InvestmentAmountCamel float64 `json:"investmentAmount"`
}

func (r *ActionReq) Normalize() {
	if r.ActionType == "" && r.ActionTypeCamel != "" {
		r.ActionType = r.ActionTypeCamel
	}
	if r.TargetTeamID == "" && r.TargetTeamIDCamel != "" {
		r.TargetTeamID = r.TargetTeamIDCamel
	}
	if r.InvestmentAmount == 0 && r.InvestmentAmountCamel != 0 {
		r.InvestmentAmount = r.InvestmentAmountCamel
	}
}
