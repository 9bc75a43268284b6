// file: dto/team.go
package dto

type CreateTeamReq struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
}

type JoinTeamReq struct {
	InviteCode string `json:"invite_code"`

	// 兼容旧客户端的 camelCase 别名
	InviteCodeCamel string `json:"inviteCode"`
}

// Normalize: 将 camelCase 别名归一化到 snake_case
func (r *JoinTeamReq) Normalize() {
	if r.InviteCode == "" && r.InviteCodeCamel != "" {
		r.InviteCode = r.InviteCodeCamel
	}
}
