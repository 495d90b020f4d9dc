package dto

// ThreadReq 对话请求
// Extra 透传请求里多余的字段，结果回调时原样带回
type ThreadReq struct {
	Question       string            `json:"question" binding:"required"`
	AssistantID    string            `json:"assistant_id" binding:"required"`
	ThreadID       string            `json:"thread_id"`
	CallbackURL    string            `json:"callback_url" binding:"omitempty,url"`
	RemoveCitation bool              `json:"remove_citation"`
	Extra          map[string]string `json:"extra"`
}

// ThreadStartResp 异步接口受理后的立即响应
type ThreadStartResp struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	ThreadID string `json:"thread_id"`
}

// ThreadResultResp 运行结果（回调 body 或轮询响应的 data）
type ThreadResultResp struct {
	Status   string            `json:"status"`
	Message  string            `json:"message"`
	ThreadID string            `json:"thread_id"`
	Extra    map[string]string `json:"extra,omitempty"`
}
