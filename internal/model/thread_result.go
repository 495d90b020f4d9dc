package model

import (
	"time"

	"gorm.io/datatypes"
)

// ThreadResult 外部会话线程最后一次运行结果的本地缓存，按 thread_id upsert
// 轮询接口从这里读，拿不到就说明后台还没跑完
type ThreadResult struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	InsertedAt time.Time `gorm:"autoCreateTime" json:"inserted_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	ThreadID string `gorm:"uniqueIndex;not null" json:"thread_id"`
	Prompt   string `gorm:"type:text" json:"prompt"`
	Response string `gorm:"type:text" json:"response"`

	// processing / success / failed
	Status string `gorm:"size:20" json:"status"`
	Error  string `gorm:"type:text" json:"error"`

	// 请求里除固定字段外的透传数据
	Extra datatypes.JSON `json:"extra,omitempty"`
}
