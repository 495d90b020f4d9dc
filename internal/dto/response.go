package dto

// APIResponse 统一响应信封
// 所有接口（包括异步回调的 body）都用这个结构
type APIResponse struct {
	Success  bool    `json:"success"`
	Data     any     `json:"data"`
	Error    *string `json:"error"`
	Metadata any     `json:"metadata"`
}

// Success 成功响应
func Success(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// SuccessWithMeta 成功响应 + 元数据（异步接口的 processing 确认用）
func SuccessWithMeta(data any, metadata any) APIResponse {
	return APIResponse{Success: true, Data: data, Metadata: metadata}
}

// Failure 失败响应
func Failure(errMsg string) APIResponse {
	return APIResponse{Success: false, Error: &errMsg}
}
