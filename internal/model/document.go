package model

import (
	"time"

	"github.com/google/uuid"
)

// Document 上传的文档元数据，文件内容在对象存储里
// 软删除只打 DeletedAt 时间戳：被删除的文档不出现在列表里，
// 但按 id 直查 (stat) 仍要能拿到
type Document struct {
	ID        uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerID uint   `gorm:"index;not null" json:"owner_id"`
	Fname   string `gorm:"size:255;not null" json:"fname"`

	// s3://{bucket}/{owner_id}/{document_id}
	ObjectStoreURL string `gorm:"not null" json:"object_store_url"`

	DeletedAt *time.Time `json:"deleted_at"`
}

// IsDeleted 文档是否已被软删除
func (d *Document) IsDeleted() bool {
	return d.DeletedAt != nil
}
