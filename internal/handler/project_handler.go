package handler

import (
	"net/http"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/service"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	svc *service.ProjectService
}

func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// Create POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	project, err := h.svc.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Success(project))
}

// ListByOrg GET /organizations/:org_id/projects
func (h *ProjectHandler) ListByOrg(c *gin.Context) {
	orgID, ok := pathID(c, "org_id")
	if !ok {
		return
	}

	projects, err := h.svc.ListByOrg(orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(projects))
}

// Get GET /projects/:project_id
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	project, err := h.svc.Get(projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(project))
}

// Update PUT /projects/:project_id
func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var req dto.UpdateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	project, err := h.svc.Update(projectID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(project))
}

// Delete DELETE /projects/:project_id
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	if err := h.svc.Deactivate(projectID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(gin.H{"deactivated": projectID}))
}

// AddUser POST /projects/:project_id/users
func (h *ProjectHandler) AddUser(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var req dto.AddProjectUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	member, err := h.svc.AddUser(projectID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Success(member))
}

// RemoveUser DELETE /projects/:project_id/users/:user_id
func (h *ProjectHandler) RemoveUser(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	if err := h.svc.RemoveUser(projectID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(gin.H{"removed": userID}))
}

// ListUsers GET /projects/:project_id/users?skip=&limit=
func (h *ProjectHandler) ListUsers(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	skip, limit, ok := pagination(c)
	if !ok {
		return
	}

	resp, err := h.svc.ListUsers(projectID, skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(resp))
}
