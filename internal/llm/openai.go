package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"Hermes-Gateway/internal/logger"

	openai "github.com/sashabaranov/go-openai"
)

// 清理外部资源时的重试上限
const cleanupRetries = 3

// 轮询批处理/Run 状态的间隔
const pollInterval = time.Second

// OpenAIClient Client 接口的 go-openai 实现
type OpenAIClient struct {
	api *openai.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{api: openai.NewClient(apiKey)}
}

// NormalizeError 把外部 API 错误压成一条短的人类可读信息
// 优先取结构化的 message 字段，原始错误对象不跨边界
func NormalizeError(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// =================================================================================
// 1. Vector Store
// =================================================================================

func (c *OpenAIClient) CreateVectorStore(ctx context.Context) (string, error) {
	vs, err := c.api.CreateVectorStore(ctx, openai.VectorStoreRequest{})
	if err != nil {
		return "", err
	}
	return vs.ID, nil
}

func (c *OpenAIClient) UploadVectorStoreBatch(ctx context.Context, vectorStoreID string, files []FilePayload) error {
	// 1. 逐个上传文件对象
	fileIDs := make([]string, 0, len(files))
	names := make(map[string]string, len(files)) // file_id -> fname
	for _, f := range files {
		uploaded, err := c.api.CreateFileBytes(ctx, openai.FileBytesRequest{
			Name:    f.Name,
			Bytes:   f.Data,
			Purpose: openai.PurposeAssistants,
		})
		if err != nil {
			return err
		}
		fileIDs = append(fileIDs, uploaded.ID)
		names[uploaded.ID] = f.Name
	}

	// 2. 建批并轮询到终态
	batch, err := c.api.CreateVectorStoreFileBatch(ctx, vectorStoreID, openai.VectorStoreFileBatchRequest{
		FileIDs: fileIDs,
	})
	if err != nil {
		return err
	}
	for batch.Status == "in_progress" {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
		batch, err = c.api.RetrieveVectorStoreFileBatch(ctx, vectorStoreID, batch.ID)
		if err != nil {
			return err
		}
	}

	// 3. 入库数必须等于批大小，差一个都算这次失败
	if batch.FileCounts.Completed != batch.FileCounts.Total {
		unresolved, err := c.unresolvedNames(ctx, vectorStoreID, names)
		if err != nil {
			return err
		}
		return &BatchIngestError{Unresolved: unresolved}
	}
	return nil
}

// unresolvedNames 找出没成功入库的文件名：
// 把状态 completed 的从候选集里剔掉，剩下的就是失败的
func (c *OpenAIClient) unresolvedNames(ctx context.Context, vectorStoreID string, names map[string]string) ([]string, error) {
	view := make(map[string]string, len(names))
	for id, fname := range names {
		view[id] = fname
	}

	page, err := c.listAllVectorStoreFiles(ctx, vectorStoreID)
	if err != nil {
		return nil, err
	}
	for _, f := range page {
		if f.Status == "completed" {
			delete(view, f.ID)
		}
	}

	unresolved := make([]string, 0, len(view))
	for _, fname := range view {
		unresolved = append(unresolved, fname)
	}
	sort.Strings(unresolved)
	return unresolved, nil
}

// listAllVectorStoreFiles 一个 vector store 上挂的全部文件
// 批大小有上限，单页上限拉满足够覆盖
func (c *OpenAIClient) listAllVectorStoreFiles(ctx context.Context, vectorStoreID string) ([]openai.VectorStoreFile, error) {
	limit := 100
	page, err := c.api.ListVectorStoreFiles(ctx, vectorStoreID, openai.Pagination{Limit: &limit})
	if err != nil {
		return nil, err
	}
	return page.VectorStoreFiles, nil
}

func (c *OpenAIClient) DeleteVectorStore(ctx context.Context, vectorStoreID string) error {
	var lastErr error
	for i := 0; i < cleanupRetries; i++ {
		if lastErr = c.deleteVectorStoreOnce(ctx, vectorStoreID); lastErr == nil {
			return nil
		}
		logger.L.Errorf("❌ [Cleanup] VectorStore %s 删除失败: %v", vectorStoreID, lastErr)
	}
	return lastErr
}

func (c *OpenAIClient) deleteVectorStoreOnce(ctx context.Context, vectorStoreID string) error {
	// 先清文件对象再删 store，避免留下孤儿文件
	files, err := c.listAllVectorStoreFiles(ctx, vectorStoreID)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := c.api.DeleteFile(ctx, f.ID); err != nil {
			return err
		}
	}

	_, err = c.api.DeleteVectorStore(ctx, vectorStoreID)
	return err
}

// =================================================================================
// 2. Assistant
// =================================================================================

func (c *OpenAIClient) CreateAssistant(ctx context.Context, vectorStoreID string, cfg AssistantConfig) (string, error) {
	instructions := cfg.Instructions
	temperature := cfg.Temperature

	assistant, err := c.api.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        cfg.Model,
		Instructions: &instructions,
		Temperature:  &temperature,
		Tools: []openai.AssistantTool{
			{Type: openai.AssistantToolTypeFileSearch},
		},
		ToolResources: &openai.AssistantToolResource{
			FileSearch: &openai.AssistantToolFileSearch{
				VectorStoreIDs: []string{vectorStoreID},
			},
		},
	})
	if err != nil {
		return "", err
	}
	return assistant.ID, nil
}

func (c *OpenAIClient) DeleteAssistant(ctx context.Context, assistantID string) error {
	assistant, err := c.api.RetrieveAssistant(ctx, assistantID)
	if err != nil {
		return err
	}

	// 预期恰好挂一个 vector store，0 个或多个都按异常处理
	var stores []string
	if assistant.ToolResources != nil && assistant.ToolResources.FileSearch != nil {
		stores = assistant.ToolResources.FileSearch.VectorStoreIDs
	}
	switch len(stores) {
	case 1:
		// ok
	case 0:
		return fmt.Errorf("no vector stores found on assistant %s", assistantID)
	default:
		return fmt.Errorf("too many attached vector stores: %v", stores)
	}

	if err := c.DeleteVectorStore(ctx, stores[0]); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < cleanupRetries; i++ {
		if _, lastErr = c.api.DeleteAssistant(ctx, assistantID); lastErr == nil {
			return nil
		}
		logger.L.Errorf("❌ [Cleanup] Assistant %s 删除失败: %v", assistantID, lastErr)
	}
	return lastErr
}

// =================================================================================
// 3. Thread / Run
// =================================================================================

func (c *OpenAIClient) LatestRunStatus(ctx context.Context, threadID string) (string, error) {
	limit := 1
	runs, err := c.api.ListRuns(ctx, threadID, openai.Pagination{Limit: &limit})
	if err != nil {
		return "", err
	}
	if len(runs.Runs) == 0 {
		return "", nil
	}
	return string(runs.Runs[0].Status), nil
}

func (c *OpenAIClient) CreateThread(ctx context.Context) (string, error) {
	thread, err := c.api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", err
	}
	return thread.ID, nil
}

func (c *OpenAIClient) AddUserMessage(ctx context.Context, threadID, content string) error {
	_, err := c.api.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: content,
	})
	return err
}

func (c *OpenAIClient) RunAndPoll(ctx context.Context, threadID, assistantID string) (string, error) {
	run, err := c.api.CreateRun(ctx, threadID, openai.RunRequest{AssistantID: assistantID})
	if err != nil {
		return "", err
	}

	// 轮询直到离开 queued/in_progress
	for run.Status == openai.RunStatusQueued || run.Status == openai.RunStatusInProgress {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(pollInterval):
		}
		run, err = c.api.RetrieveRun(ctx, threadID, run.ID)
		if err != nil {
			return "", err
		}
	}
	return string(run.Status), nil
}

func (c *OpenAIClient) LatestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	limit := 1
	messages, err := c.api.ListMessage(ctx, threadID, &limit, nil, nil, nil, nil)
	if err != nil {
		return "", err
	}
	if len(messages.Messages) == 0 {
		return "", fmt.Errorf("no messages on thread %s", threadID)
	}
	msg := messages.Messages[0]
	if len(msg.Content) == 0 || msg.Content[0].Text == nil {
		return "", fmt.Errorf("empty message content on thread %s", threadID)
	}
	return msg.Content[0].Text.Value, nil
}
