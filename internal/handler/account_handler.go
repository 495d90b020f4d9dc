package handler

import (
	"net/http"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/middleware"
	"Hermes-Gateway/internal/service"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	svc    *service.AccountService
	access *middleware.OrgAccess
}

func NewAccountHandler(svc *service.AccountService, access *middleware.OrgAccess) *AccountHandler {
	return &AccountHandler{svc: svc, access: access}
}

// Onboard POST /onboard
// 一次开通组织 + 项目 + 管理员 + API Key，明文 Key 只在这里返回一次
func (h *AccountHandler) Onboard(c *gin.Context) {
	var req dto.OnboardingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.svc.Onboard(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Success(resp))
}

// CreateAPIKey POST /organizations/:org_id/api-keys
// 给自己签发；同一 (组织, 用户) 最多一把活跃 Key
func (h *AccountHandler) CreateAPIKey(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	orgID, ok := pathID(c, "org_id")
	if !ok {
		return
	}

	resp, err := h.svc.CreateAPIKey(orgID, caller.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Success(resp))
}

// ListAPIKeys GET /organizations/:org_id/api-keys
func (h *AccountHandler) ListAPIKeys(c *gin.Context) {
	orgID, ok := pathID(c, "org_id")
	if !ok {
		return
	}

	keys, err := h.svc.ListAPIKeys(orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(keys))
}

// RevokeAPIKey DELETE /api-keys/:key_id
// 只能吊销自己的 Key 或自己组织下的 Key
func (h *AccountHandler) RevokeAPIKey(c *gin.Context) {
	keyID, ok := pathID(c, "key_id")
	if !ok {
		return
	}

	key, err := h.svc.GetAPIKey(keyID)
	if err != nil {
		respondError(c, err)
		return
	}
	caller := middleware.CurrentUser(c)
	if key.UserID != caller.ID && !h.access.Allowed(caller, key.OrganizationID) {
		c.JSON(http.StatusForbidden, dto.Failure("User is not part of the organization"))
		return
	}

	if err := h.svc.RevokeAPIKey(keyID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(gin.H{"revoked": keyID}))
}
