package llm

import (
	"context"
	"fmt"
	"strings"
)

// FilePayload 一份待送入 vector store 的文档内容
type FilePayload struct {
	Name string
	Data []byte
}

// AssistantConfig 创建 assistant 时只透传这三个字段
type AssistantConfig struct {
	Model        string  `json:"model"`
	Instructions string  `json:"instructions"`
	Temperature  float32 `json:"temperature"`
}

// 线程最近一次 Run 的状态值（OpenAI 语义）
const (
	RunStatusQueued         = "queued"
	RunStatusInProgress     = "in_progress"
	RunStatusRequiresAction = "requires_action"
	RunStatusCompleted      = "completed"
)

// BatchIngestError 某一批文档没有全部入库
// 调用方拿到未入库的文件名后负责上报，不做自动重试
type BatchIngestError struct {
	Unresolved []string
}

func (e *BatchIngestError) Error() string {
	return fmt.Sprintf("OpenAI document processing error: unresolved documents: %s",
		strings.Join(e.Unresolved, ", "))
}

// Client 对外部 assistant/vector store/thread API 的抽象
// 服务层只依赖这个接口，测试用假实现
type Client interface {
	// --- Vector Store ---
	CreateVectorStore(ctx context.Context) (string, error)
	// UploadVectorStoreBatch 整批上传并轮询，入库数不等于批大小时返回 *BatchIngestError
	UploadVectorStoreBatch(ctx context.Context, vectorStoreID string, files []FilePayload) error
	// DeleteVectorStore 先清掉挂在上面的文件再删 store
	DeleteVectorStore(ctx context.Context, vectorStoreID string) error

	// --- Assistant ---
	CreateAssistant(ctx context.Context, vectorStoreID string, cfg AssistantConfig) (string, error)
	// DeleteAssistant 要求 assistant 上恰好挂一个 vector store，先删 store 再删 assistant
	DeleteAssistant(ctx context.Context, assistantID string) error

	// --- Thread / Run ---
	// LatestRunStatus 返回线程最近一次 Run 的状态，没有 Run 时返回空串
	LatestRunStatus(ctx context.Context, threadID string) (string, error)
	CreateThread(ctx context.Context) (string, error)
	AddUserMessage(ctx context.Context, threadID, content string) error
	// RunAndPoll 发起 Run 并轮询到终态，返回终态状态串
	RunAndPoll(ctx context.Context, threadID, assistantID string) (string, error)
	// LatestAssistantMessage 取线程里最新一条消息的文本
	LatestAssistantMessage(ctx context.Context, threadID string) (string, error)
}

// HasActiveRun 判断一个 Run 状态是否属于"进行中"
func HasActiveRun(status string) bool {
	switch status {
	case RunStatusQueued, RunStatusInProgress, RunStatusRequiresAction:
		return true
	}
	return false
}
