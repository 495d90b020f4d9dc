package handler

import (
	"net/http"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/service"

	"github.com/gin-gonic/gin"
)

type ThreadHandler struct {
	svc *service.ThreadService
}

func NewThreadHandler(svc *service.ThreadService) *ThreadHandler {
	return &ThreadHandler{svc: svc}
}

// Start POST /threads
// 异步：受理后立即返回 thread_id，结果走回调或轮询
func (h *ThreadHandler) Start(c *gin.Context) {
	var req dto.ThreadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.svc.StartRun(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.Success(resp))
}

// RunSync POST /threads/sync
// 同步：原地跑到终态再返回结果
func (h *ThreadHandler) RunSync(c *gin.Context) {
	var req dto.ThreadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.svc.RunSync(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(resp))
}

// GetResult GET /threads/:thread_id
// 先查缓存再查库，都没有就是 404
func (h *ThreadHandler) GetResult(c *gin.Context) {
	resp, err := h.svc.GetResult(c.Request.Context(), c.Param("thread_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(resp))
}
