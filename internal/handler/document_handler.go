package handler

import (
	"net/http"
	"strconv"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/middleware"
	"Hermes-Gateway/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DocumentHandler struct {
	svc *service.DocumentService
}

func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Upload POST /documents/upload
// multipart 表单，字段名 files，可一次传多个
func (h *DocumentHandler) Upload(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	form, err := c.MultipartForm()
	if err != nil {
		bindError(c, err)
		return
	}

	fileHeaders := form.File["files"]
	uploads := make([]service.UploadFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer f.Close()

		uploads = append(uploads, service.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Reader:      f,
		})
	}

	docs, err := h.svc.Upload(c.Request.Context(), caller.ID, uploads)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Success(docs))
}

// List GET /documents?skip=&limit=
func (h *DocumentHandler) List(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	skip, limit, ok := pagination(c)
	if !ok {
		return
	}

	docs, err := h.svc.List(caller.ID, skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(docs))
}

// Stat GET /documents/:doc_id
// 软删除的文档也能查到，响应里带删除标记
func (h *DocumentHandler) Stat(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	docID, err := uuid.Parse(c.Param("doc_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Failure("invalid document id"))
		return
	}

	doc, err := h.svc.Stat(caller.ID, docID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(doc))
}

// Remove POST /documents/delete
// 同步级联删除引用文档的 Collection 后再软删除文档
func (h *DocumentHandler) Remove(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	var req struct {
		Documents []uuid.UUID `json:"documents" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	docs, err := h.svc.Remove(c.Request.Context(), caller.ID, req.Documents)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(docs))
}

// Download GET /documents/:doc_id/download
func (h *DocumentHandler) Download(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	docID, err := uuid.Parse(c.Param("doc_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Failure("invalid document id"))
		return
	}

	rc, doc, err := h.svc.Stream(c.Request.Context(), caller.ID, docID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(doc.Fname))
	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", rc, nil)
}

// pagination 解析 skip/limit，缺省 0/100
func pagination(c *gin.Context) (int, int, bool) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Failure("invalid skip"))
		return 0, 0, false
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Failure("invalid limit"))
		return 0, 0, false
	}
	return skip, limit, true
}
