package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Collection 本地记录：一个外部 assistant + vector store 和一组文档的绑定
// 约束：(llm_service_id, llm_service_name) 唯一，
// 防止同一个外部 assistant 被重复注册
type Collection struct {
	ID        uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OwnerID uint `gorm:"index;not null" json:"owner_id"`

	// 外部 assistant id 和创建时用的模型名
	LLMServiceID   string `gorm:"uniqueIndex:idx_llm_service;not null" json:"llm_service_id"`
	LLMServiceName string `gorm:"uniqueIndex:idx_llm_service;not null" json:"llm_service_name"`

	// 创建 assistant 时的配置快照 {"model": ..., "instructions": ..., "temperature": ...}
	AssistantConfig datatypes.JSON `json:"assistant_config"`

	DeletedAt *time.Time `json:"deleted_at"`
}

// DocumentCollection 文档和 Collection 的多对多中间表
// 硬行，随 Collection 的删除路径一起处理，不做软删除
type DocumentCollection struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	DocumentID   uuid.UUID `gorm:"type:uuid;index;not null" json:"document_id"`
	CollectionID uuid.UUID `gorm:"type:uuid;index;not null" json:"collection_id"`
}
