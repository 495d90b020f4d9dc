package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/logger"
)

// CallbackPoster 把异步任务结果 POST 到调用方给的回调地址
// Fire and Forget：投递失败只记日志，不重试
type CallbackPoster struct {
	client *http.Client
}

func NewCallbackPoster(timeout time.Duration) *CallbackPoster {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CallbackPoster{
		client: &http.Client{Timeout: timeout},
	}
}

// Post 返回是否投递成功，失败已记录日志
func (p *CallbackPoster) Post(url string, payload dto.APIResponse) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.L.Errorf("❌ Callback 序列化失败: %v", err)
		return false
	}

	resp, err := p.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		logger.L.Errorf("❌ Callback 投递失败: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		logger.L.Errorf("❌ Callback 投递失败: %s 返回 %d", url, resp.StatusCode)
		return false
	}
	return true
}

// resultReporter 一次异步操作的结果上报器
// 带回调地址时 POST 信封，不带时静默
type resultReporter struct {
	poster  *CallbackPoster
	url     string
	payload dto.ProcessingPayload
}

func (r *resultReporter) success(data any) {
	if r.url == "" {
		return
	}
	resp := dto.Success(data)
	resp.Metadata = r.payload.WithStatus("complete")
	r.poster.Post(r.url, resp)
}

func (r *resultReporter) fail(errMsg string) {
	if r.url == "" {
		return
	}
	resp := dto.Failure(errMsg)
	resp.Metadata = r.payload.WithStatus("incomplete")
	r.poster.Post(r.url, resp)
}
