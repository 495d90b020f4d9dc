package handler

import (
	"net/http"
	"strconv"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/service"

	"github.com/gin-gonic/gin"
)

type OrgHandler struct {
	svc *service.OrganizationService
}

func NewOrgHandler(svc *service.OrganizationService) *OrgHandler {
	return &OrgHandler{svc: svc}
}

// Create POST /organizations
func (h *OrgHandler) Create(c *gin.Context) {
	var req dto.CreateOrgReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	org, err := h.svc.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Success(org))
}

// List GET /organizations
func (h *OrgHandler) List(c *gin.Context) {
	orgs, err := h.svc.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(orgs))
}

// Get GET /organizations/:org_id
func (h *OrgHandler) Get(c *gin.Context) {
	orgID, ok := pathID(c, "org_id")
	if !ok {
		return
	}

	org, err := h.svc.Get(orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(org))
}

// Update PUT /organizations/:org_id
func (h *OrgHandler) Update(c *gin.Context) {
	orgID, ok := pathID(c, "org_id")
	if !ok {
		return
	}

	var req dto.UpdateOrgReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	org, err := h.svc.Update(orgID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(org))
}

// Delete DELETE /organizations/:org_id
// 软删除：停用后组织下的接口全部拒绝
func (h *OrgHandler) Delete(c *gin.Context) {
	orgID, ok := pathID(c, "org_id")
	if !ok {
		return
	}

	if err := h.svc.Deactivate(orgID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(gin.H{"deactivated": orgID}))
}

// pathID 解析路径里的数字 id
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Failure("invalid "+name))
		return 0, false
	}
	return uint(id), true
}
