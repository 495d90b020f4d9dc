package model

import "time"

// Credential 每行存一个 Provider 的加密凭证
// 约束：同一 (organization, project, provider) 只有一行；
// Credential 字段是整体加密后的 blob，明文只在读取时解出。
// 软删除走 IsActive + DeletedAt（删除时清空 blob 但保留行），
// 不用 gorm.DeletedAt，删除后的行仍要能按 provider 查到
type Credential struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"inserted_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrganizationID uint  `gorm:"uniqueIndex:idx_org_project_provider;not null" json:"organization_id"`
	ProjectID      *uint `gorm:"uniqueIndex:idx_org_project_provider" json:"project_id"`

	Provider   string `gorm:"uniqueIndex:idx_org_project_provider;size:50;not null" json:"provider"`
	Credential string `gorm:"type:text" json:"-"`

	IsActive  bool       `gorm:"default:true" json:"is_active"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// CredentialPublic 对外投影，blob 已解密
type CredentialPublic struct {
	ID             uint              `json:"id"`
	OrganizationID uint              `json:"organization_id"`
	ProjectID      *uint             `json:"project_id"`
	Provider       string            `json:"provider"`
	Credential     map[string]string `json:"credential"`
	IsActive       bool              `json:"is_active"`
	CreatedAt      time.Time         `json:"inserted_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
