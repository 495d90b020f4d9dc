package dto

// APIKeyResp 创建 API Key 的响应，明文 Key 只在这里出现一次
type APIKeyResp struct {
	ID             uint   `json:"id"`
	OrganizationID uint   `json:"organization_id"`
	UserID         uint   `json:"user_id"`
	Key            string `json:"key,omitempty"`
	KeyPrefix      string `json:"key_prefix"`
}

// OnboardingReq 快速开通：组织 + 项目 + 用户 + API Key 一步到位
type OnboardingReq struct {
	OrganizationName string `json:"organization_name" binding:"required"`
	ProjectName      string `json:"project_name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8,max=40"`
	UserName         string `json:"user_name" binding:"required"`
}

// OnboardingResp 开通结果
type OnboardingResp struct {
	OrganizationID uint   `json:"organization_id"`
	ProjectID      uint   `json:"project_id"`
	UserID         uint   `json:"user_id"`
	APIKey         string `json:"api_key"`
}
