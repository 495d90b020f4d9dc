package handler

import (
	"net/http"
	"strconv"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/middleware"
	"Hermes-Gateway/internal/service"

	"github.com/gin-gonic/gin"
)

type CredentialHandler struct {
	svc    *service.CredentialService
	access *middleware.OrgAccess
}

func NewCredentialHandler(svc *service.CredentialService, access *middleware.OrgAccess) *CredentialHandler {
	return &CredentialHandler{svc: svc, access: access}
}

// authorize 凭证接口逐个校验目标组织归属，
// 范围由请求体或查询参数给出，拦在这里而不是路由上
func (h *CredentialHandler) authorize(c *gin.Context, orgID uint) bool {
	if h.access.Allowed(middleware.CurrentUser(c), orgID) {
		return true
	}
	c.JSON(http.StatusForbidden, dto.Failure("User is not part of the organization"))
	return false
}

// Create POST /credentials
// 批量写入，去重校验失败整体不落库
func (h *CredentialHandler) Create(c *gin.Context) {
	var req dto.CreateCredsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !h.authorize(c, req.OrganizationID) {
		return
	}

	creds, err := h.svc.SetCreds(req.OrganizationID, req.ProjectID, req.Credential)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Success(creds))
}

// List GET /credentials?organization_id=&project_id=
func (h *CredentialHandler) List(c *gin.Context) {
	orgID, projectID, ok := credentialScope(c)
	if !ok || !h.authorize(c, orgID) {
		return
	}

	creds, err := h.svc.GetCreds(orgID, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(creds))
}

// GetProvider GET /credentials/:provider?organization_id=&project_id=
func (h *CredentialHandler) GetProvider(c *gin.Context) {
	orgID, projectID, ok := credentialScope(c)
	if !ok || !h.authorize(c, orgID) {
		return
	}

	fields, err := h.svc.GetProviderCredential(orgID, projectID, c.Param("provider"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(fields))
}

// Update PUT /credentials
func (h *CredentialHandler) Update(c *gin.Context) {
	var req dto.UpdateCredsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !h.authorize(c, req.OrganizationID) {
		return
	}

	cred, err := h.svc.UpdateCreds(req.OrganizationID, req.ProjectID, req.Provider, req.Credential)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(cred))
}

// DeleteProvider DELETE /credentials/:provider?organization_id=&project_id=
func (h *CredentialHandler) DeleteProvider(c *gin.Context) {
	orgID, projectID, ok := credentialScope(c)
	if !ok || !h.authorize(c, orgID) {
		return
	}

	cred, err := h.svc.RemoveProviderCredential(orgID, projectID, c.Param("provider"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(cred))
}

// DeleteScope DELETE /credentials?organization_id=&project_id=
// 只删这个范围的行，组织级和项目级互不牵连
func (h *CredentialHandler) DeleteScope(c *gin.Context) {
	orgID, projectID, ok := credentialScope(c)
	if !ok || !h.authorize(c, orgID) {
		return
	}

	affected, err := h.svc.RemoveCreds(orgID, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(gin.H{"deleted": affected}))
}

// credentialScope 从查询参数解析 (组织, 项目) 范围
func credentialScope(c *gin.Context) (uint, *uint, bool) {
	orgID, err := strconv.ParseUint(c.Query("organization_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Failure("invalid organization_id"))
		return 0, nil, false
	}

	var projectID *uint
	if raw := c.Query("project_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.Failure("invalid project_id"))
			return 0, nil, false
		}
		pid := uint(id)
		projectID = &pid
	}
	return uint(orgID), projectID, true
}
