package handler

import (
	"errors"
	"net/http"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/logger"
	"Hermes-Gateway/internal/middleware"
	"Hermes-Gateway/internal/repository"
	"Hermes-Gateway/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError 把服务层错误映射成状态码 + 统一信封
// 未识别的错误一律 500，细节只进日志不出接口
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.Failure(verr.Error()))

	case errors.Is(err, repository.ErrDocumentNotFound),
		errors.Is(err, repository.ErrCollectionNotFound),
		errors.Is(err, repository.ErrCredsNotFound),
		errors.Is(err, repository.ErrOrgNotFound),
		errors.Is(err, repository.ErrProjNotFound),
		errors.Is(err, repository.ErrAPIKeyNotFound),
		errors.Is(err, repository.ErrNotMember),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, service.ErrThreadResultNotFound):
		c.JSON(http.StatusNotFound, dto.Failure(err.Error()))

	case errors.Is(err, repository.ErrNotCollectionOwner):
		c.JSON(http.StatusForbidden, dto.Failure(err.Error()))

	case errors.Is(err, repository.ErrOrgInactive),
		errors.Is(err, repository.ErrProjInactive):
		c.JSON(http.StatusBadRequest, dto.Failure(err.Error()))

	default:
		logger.L.Errorf("❌ 接口内部错误: trace=%s err=%v", middleware.TraceID(c), err)
		c.JSON(http.StatusInternalServerError, dto.Failure("Internal server error"))
	}
}

// bindError 请求体解析失败
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.Failure("invalid request: "+err.Error()))
}
