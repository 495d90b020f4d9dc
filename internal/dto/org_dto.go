package dto

// CreateOrgReq 创建组织请求参数
type CreateOrgReq struct {
	Name     string `json:"name" binding:"required,max=255"`
	IsActive *bool  `json:"is_active"`
}

// UpdateOrgReq 更新组织，字段都可选
type UpdateOrgReq struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	IsActive *bool   `json:"is_active"`
}

// CreateProjectReq 创建项目请求参数
type CreateProjectReq struct {
	Name           string `json:"name" binding:"required,max=255"`
	Description    string `json:"description" binding:"max=500"`
	OrganizationID uint   `json:"organization_id" binding:"required"`
}

// UpdateProjectReq 更新项目，字段都可选
type UpdateProjectReq struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

// AddProjectUserReq 把用户加入项目
type AddProjectUserReq struct {
	UserID  uint `json:"user_id" binding:"required"`
	IsAdmin bool `json:"is_admin"`
}

// ListResp 带总数的列表响应
type ListResp struct {
	Data  any   `json:"data"`
	Count int64 `json:"count"`
}
