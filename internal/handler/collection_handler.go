package handler

import (
	"net/http"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/middleware"
	"Hermes-Gateway/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CollectionHandler struct {
	svc *service.CollectionService
}

func NewCollectionHandler(svc *service.CollectionService) *CollectionHandler {
	return &CollectionHandler{svc: svc}
}

// Create POST /collections/create
// 异步协议：校验通过立即返回 processing 确认，结果走回调
// 确认元数据里的 key 就是未来 Collection 的 id
func (h *CollectionHandler) Create(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	var req dto.CreateCollectionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	payload, err := h.svc.StartCreate(caller.ID, req, c.FullPath())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.SuccessWithMeta(nil, payload))
}

// Delete POST /collections/delete
// 异步协议，同上
func (h *CollectionHandler) Delete(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	var req dto.DeleteCollectionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	payload, err := h.svc.StartDelete(caller.ID, req, c.FullPath())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.SuccessWithMeta(nil, payload))
}

// Info GET /collections/info/:collection_id
func (h *CollectionHandler) Info(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	collectionID, err := uuid.Parse(c.Param("collection_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Failure("invalid collection id"))
		return
	}

	collection, err := h.svc.Info(caller.ID, collectionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(collection))
}

// List GET /collections/list
func (h *CollectionHandler) List(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	collections, err := h.svc.List(caller.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(collections))
}

// Documents GET /collections/docs/:collection_id?skip=&limit=
func (h *CollectionHandler) Documents(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	collectionID, err := uuid.Parse(c.Param("collection_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Failure("invalid collection id"))
		return
	}

	skip, limit, ok := pagination(c)
	if !ok {
		return
	}

	docs, err := h.svc.Documents(caller.ID, collectionID, skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(docs))
}
