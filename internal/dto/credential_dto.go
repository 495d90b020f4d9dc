package dto

// CreateCredsReq 批量写入凭证：provider 名 -> 字段字典
type CreateCredsReq struct {
	OrganizationID uint                         `json:"organization_id" binding:"required"`
	ProjectID      *uint                        `json:"project_id"`
	Credential     map[string]map[string]string `json:"credential" binding:"required"`
}

// UpdateCredsReq 更新单个 provider 的凭证
type UpdateCredsReq struct {
	OrganizationID uint              `json:"organization_id" binding:"required"`
	ProjectID      *uint             `json:"project_id"`
	Provider       string            `json:"provider" binding:"required"`
	Credential     map[string]string `json:"credential" binding:"required"`
}
