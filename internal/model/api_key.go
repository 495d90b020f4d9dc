package model

import "time"

// APIKey 组织级 API Key
// 明文只在创建时返回一次，库里只存 bcrypt 哈希；
// KeyPrefix 保留明文前几位用于查找和展示
type APIKey struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OrganizationID uint `gorm:"index;not null" json:"organization_id"`
	UserID         uint `gorm:"index;not null" json:"user_id"`

	KeyHash   string `gorm:"not null" json:"-"`
	KeyPrefix string `gorm:"index;size:16;not null" json:"key_prefix"`

	IsDeleted bool       `gorm:"default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at"`
}
