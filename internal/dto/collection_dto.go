package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateCollectionReq 创建 Collection 请求
type CreateCollectionReq struct {
	// 文档 id 列表，重复的会被去重
	Documents []uuid.UUID `json:"documents" binding:"required"`

	// 单批发给 OpenAI 的文档数
	BatchSize int `json:"batch_size"`

	// Assistant 配置，只透传这三个字段
	Model        string  `json:"model" binding:"required"`
	Instructions string  `json:"instructions" binding:"required"`
	Temperature  float32 `json:"temperature"`

	// 可选的结果回调地址，不传则静默完成
	CallbackURL string `json:"callback_url" binding:"omitempty,url"`
}

// DeleteCollectionReq 删除 Collection 请求
type DeleteCollectionReq struct {
	CollectionID uuid.UUID `json:"collection_id" binding:"required"`
	CallbackURL  string    `json:"callback_url" binding:"omitempty,url"`
}

// ProcessingPayload 异步接口的 processing 确认元数据
// Key 在创建场景同时是未来 Collection 的 id
type ProcessingPayload struct {
	Status string `json:"status"`
	Route  string `json:"route"`
	Key    string `json:"key"`
	Time   string `json:"time"`
}

// NewProcessingPayload 构造一个 processing 状态的 payload
func NewProcessingPayload(route string) ProcessingPayload {
	return ProcessingPayload{
		Status: "processing",
		Route:  route,
		Key:    uuid.New().String(),
		Time:   time.Now().UTC().Format(time.ANSIC),
	}
}

// WithStatus 复制 payload 并替换状态、刷新时间
func (p ProcessingPayload) WithStatus(status string) ProcessingPayload {
	p.Status = status
	p.Time = time.Now().UTC().Format(time.ANSIC)
	return p
}
