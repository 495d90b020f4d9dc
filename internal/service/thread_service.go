package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/llm"
	"Hermes-Gateway/internal/logger"
	"Hermes-Gateway/internal/model"
	"Hermes-Gateway/internal/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
)

// 运行结果状态
const (
	ThreadStatusProcessing = "processing"
	ThreadStatusSuccess    = "success"
	ThreadStatusFailed     = "failed"
)

const (
	threadResultKeyFmt = "thread_result:%s"
	threadResultTTL    = 24 * time.Hour
)

// 回答里的引用标记，形如 【4:0†source】
var citationPattern = regexp.MustCompile(`【\d+(?::\d+)?†[^】]*】`)

// ErrThreadResultNotFound 线程没有任何已知结果
var ErrThreadResultNotFound = errors.New("thread result not found")

// ThreadService 会话线程的运行编排
// 异步路径：受理后后台 Run，结果进 redis + 数据库，可选回调；
// 同步路径：原地 Run 到终态再返回
type ThreadService struct {
	llm       llm.Client
	results   repository.ThreadResultRepository
	cache     *redis.Client
	callbacks *CallbackPoster

	// spawn 后台任务的启动方式，测试里换成同步执行
	spawn func(func())
}

func NewThreadService(
	llmClient llm.Client,
	results repository.ThreadResultRepository,
	cache *redis.Client,
	callbacks *CallbackPoster,
) *ThreadService {
	return &ThreadService{
		llm:       llmClient,
		results:   results,
		cache:     cache,
		callbacks: callbacks,
		spawn:     func(fn func()) { go fn() },
	}
}

// ValidateThread 已有线程必须存在且没有进行中的 Run
// 校验和后续 Run 之间没有锁，外部状态可能在间隙里变化
func (s *ThreadService) ValidateThread(ctx context.Context, threadID string) error {
	if threadID == "" {
		return nil
	}

	status, err := s.llm.LatestRunStatus(ctx, threadID)
	if err != nil {
		return validationError(fmt.Errorf("Invalid thread ID provided %s", threadID))
	}
	if llm.HasActiveRun(status) {
		return validationError(fmt.Errorf(
			"There is an active run on this thread (status: %s). Please wait for it to complete.", status))
	}
	return nil
}

// SetupThread 准备好线程并挂上用户消息，返回线程 id
// 没传 thread_id 时新建线程
func (s *ThreadService) SetupThread(ctx context.Context, req dto.ThreadReq) (string, error) {
	threadID := req.ThreadID
	if threadID == "" {
		id, err := s.llm.CreateThread(ctx)
		if err != nil {
			return "", err
		}
		threadID = id
		logger.L.Infof("🚀 新线程: %s", threadID)
	}

	if err := s.llm.AddUserMessage(ctx, threadID, req.Question); err != nil {
		return "", err
	}
	return threadID, nil
}

// StartRun 校验 + 准备线程后把 Run 丢到后台，立即返回受理响应
func (s *ThreadService) StartRun(ctx context.Context, req dto.ThreadReq) (*dto.ThreadStartResp, error) {
	if err := s.ValidateThread(ctx, req.ThreadID); err != nil {
		return nil, err
	}

	threadID, err := s.SetupThread(ctx, req)
	if err != nil {
		return nil, err
	}

	// 受理即登记 processing，轮询方立刻可见
	s.persistResult(ctx, &model.ThreadResult{
		ThreadID: threadID,
		Prompt:   req.Question,
		Status:   ThreadStatusProcessing,
		Extra:    marshalExtra(req.Extra),
	})

	s.spawn(func() { s.doRun(context.Background(), threadID, req) })

	return &dto.ThreadStartResp{
		Status:   ThreadStatusProcessing,
		Message:  "Run started",
		ThreadID: threadID,
	}, nil
}

// RunSync 同步版本：原地跑到终态
func (s *ThreadService) RunSync(ctx context.Context, req dto.ThreadReq) (*dto.ThreadResultResp, error) {
	if err := s.ValidateThread(ctx, req.ThreadID); err != nil {
		return nil, err
	}

	threadID, err := s.SetupThread(ctx, req)
	if err != nil {
		return nil, err
	}

	result := s.executeRun(ctx, threadID, req)
	s.persistResult(ctx, result)

	return resultToResp(result), nil
}

// doRun 后台运行：跑到终态、落结果、投回调
func (s *ThreadService) doRun(ctx context.Context, threadID string, req dto.ThreadReq) {
	result := s.executeRun(ctx, threadID, req)
	s.persistResult(ctx, result)

	if req.CallbackURL == "" {
		return
	}
	resp := dto.Success(resultToResp(result))
	if result.Status == ThreadStatusFailed {
		resp = dto.Failure(result.Error)
		resp.Data = resultToResp(result)
	}
	s.callbacks.Post(req.CallbackURL, resp)
}

// executeRun 跑一次 Run 并取回答，永远返回一个可落库的结果
func (s *ThreadService) executeRun(ctx context.Context, threadID string, req dto.ThreadReq) *model.ThreadResult {
	result := &model.ThreadResult{
		ThreadID: threadID,
		Prompt:   req.Question,
		Extra:    marshalExtra(req.Extra),
	}

	status, err := s.llm.RunAndPoll(ctx, threadID, req.AssistantID)
	if err != nil {
		result.Status = ThreadStatusFailed
		result.Error = llm.NormalizeError(err)
		logger.L.Errorf("❌ Run 失败: thread=%s err=%v", threadID, err)
		return result
	}
	if status != llm.RunStatusCompleted {
		result.Status = ThreadStatusFailed
		result.Error = fmt.Sprintf("run finished with status: %s", status)
		logger.L.Errorf("❌ Run 终态异常: thread=%s status=%s", threadID, status)
		return result
	}

	answer, err := s.llm.LatestAssistantMessage(ctx, threadID)
	if err != nil {
		result.Status = ThreadStatusFailed
		result.Error = llm.NormalizeError(err)
		return result
	}

	if req.RemoveCitation {
		answer = StripCitations(answer)
	}

	result.Status = ThreadStatusSuccess
	result.Response = answer
	logger.L.Infof("✅ Run 完成: thread=%s", threadID)
	return result
}

// persistResult 结果双写：redis 供快速轮询，数据库按 thread_id upsert 兜底
func (s *ThreadService) persistResult(ctx context.Context, result *model.ThreadResult) {
	if err := s.results.Upsert(result); err != nil {
		logger.L.Errorf("❌ 线程结果落库失败: thread=%s err=%v", result.ThreadID, err)
	}

	body, err := json.Marshal(resultToResp(result))
	if err != nil {
		return
	}
	key := fmt.Sprintf(threadResultKeyFmt, result.ThreadID)
	if err := s.cache.Set(ctx, key, body, threadResultTTL).Err(); err != nil {
		logger.L.Warnf("⚠️ 线程结果缓存失败: thread=%s err=%v", result.ThreadID, err)
	}
}

// GetResult 先查 redis，未命中回落数据库
func (s *ThreadService) GetResult(ctx context.Context, threadID string) (*dto.ThreadResultResp, error) {
	key := fmt.Sprintf(threadResultKeyFmt, threadID)
	if body, err := s.cache.Get(ctx, key).Bytes(); err == nil {
		var resp dto.ThreadResultResp
		if jerr := json.Unmarshal(body, &resp); jerr == nil {
			return &resp, nil
		}
	}

	result, err := s.results.GetByThreadID(threadID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrThreadResultNotFound
	}
	return resultToResp(result), nil
}

// StripCitations 去掉回答里的引用标记
func StripCitations(text string) string {
	return citationPattern.ReplaceAllString(text, "")
}

func resultToResp(result *model.ThreadResult) *dto.ThreadResultResp {
	resp := &dto.ThreadResultResp{
		Status:   result.Status,
		ThreadID: result.ThreadID,
	}
	switch result.Status {
	case ThreadStatusSuccess:
		resp.Message = result.Response
	case ThreadStatusFailed:
		resp.Message = result.Error
	default:
		resp.Message = "Run is still being processed"
	}

	if len(result.Extra) > 0 {
		var extra map[string]string
		if err := json.Unmarshal(result.Extra, &extra); err == nil {
			resp.Extra = extra
		}
	}
	return resp
}

func marshalExtra(extra map[string]string) datatypes.JSON {
	if len(extra) == 0 {
		return nil
	}
	body, err := json.Marshal(extra)
	if err != nil {
		return nil
	}
	return datatypes.JSON(body)
}
