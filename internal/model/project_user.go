package model

import "time"

// ProjectUser 中间表：记录用户和项目的关系
// 软删除走 IsDeleted + DeletedAt，不用 gorm.DeletedAt，
// 因为 (project_id, user_id) 的唯一性只约束"活跃"的那一行
type ProjectUser struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectID uint `gorm:"index;not null" json:"project_id"`
	UserID    uint `gorm:"index;not null" json:"user_id"`
	IsAdmin   bool `gorm:"default:false" json:"is_admin"`

	IsDeleted bool       `gorm:"default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at"`
}
