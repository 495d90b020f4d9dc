package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/model"
	"Hermes-Gateway/internal/repository"
	"Hermes-Gateway/internal/security"

	"github.com/gin-gonic/gin"
)

// Gin Context 里的调用方身份
const (
	CurrentUserKey    = "currentUser"
	CurrentProjectKey = "currentProject"
)

// Authenticator 双通道鉴权：X-API-KEY 或 Bearer JWT
// API Key 自带组织归属，JWT 只解析出用户
type Authenticator struct {
	users  repository.UserRepository
	keys   repository.APIKeyRepository
	orgs   repository.OrganizationRepository
	tokens *security.TokenIssuer
}

func NewAuthenticator(
	users repository.UserRepository,
	keys repository.APIKeyRepository,
	orgs repository.OrganizationRepository,
	tokens *security.TokenIssuer,
) *Authenticator {
	return &Authenticator{users: users, keys: keys, orgs: orgs, tokens: tokens}
}

// Authenticate 解析调用方身份，放进 Context
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. API Key 优先
		if apiKey := c.GetHeader("X-API-KEY"); apiKey != "" {
			caller, ok := a.fromAPIKey(c, apiKey)
			if !ok {
				return
			}
			c.Set(CurrentUserKey, caller)
			c.Next()
			return
		}

		// 2. Bearer JWT
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			caller, ok := a.fromToken(c, strings.TrimPrefix(authHeader, "Bearer "))
			if !ok {
				return
			}
			c.Set(CurrentUserKey, caller)
			c.Next()
			return
		}

		abortAuth(c, http.StatusUnauthorized, "Not authenticated")
	}
}

func (a *Authenticator) fromAPIKey(c *gin.Context, apiKey string) (*model.UserOrganization, bool) {
	key, err := a.keys.FindByValue(apiKey)
	if err != nil {
		abortAuth(c, http.StatusUnauthorized, "Invalid API Key")
		return nil, false
	}

	// Key 所属组织必须活跃
	if _, err := a.orgs.ValidateActive(key.OrganizationID); err != nil {
		abortAuth(c, http.StatusUnauthorized, err.Error())
		return nil, false
	}

	user, err := a.users.GetByID(key.UserID)
	if err != nil || !user.IsActive {
		abortAuth(c, http.StatusUnauthorized, "Inactive user")
		return nil, false
	}

	orgID := key.OrganizationID
	return &model.UserOrganization{User: *user, OrganizationID: &orgID}, true
}

func (a *Authenticator) fromToken(c *gin.Context, tokenString string) (*model.UserOrganization, bool) {
	userID, err := a.tokens.Parse(tokenString)
	if err != nil {
		abortAuth(c, http.StatusUnauthorized, "Could not validate credentials")
		return nil, false
	}

	user, err := a.users.GetByID(userID)
	if err != nil {
		abortAuth(c, http.StatusNotFound, "User not found")
		return nil, false
	}
	if !user.IsActive {
		abortAuth(c, http.StatusBadRequest, "Inactive user")
		return nil, false
	}

	// JWT 不携带组织信息，组织由请求参数提供
	return &model.UserOrganization{User: *user}, true
}

// RequireSuperuser 仅超级用户可用的管理接口
func (a *Authenticator) RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CurrentUser(c)
		if caller == nil || !caller.IsSuperuser {
			abortAuth(c, http.StatusForbidden, "The user doesn't have enough privileges")
			return
		}
		c.Next()
	}
}

// OrgAccess 组织级资源的访问控制
// 通过条件（满足其一）：
//   - 超级用户
//   - API Key 调用方，且 Key 的组织就是目标组织
//   - 目标组织下任一项目的活跃成员
type OrgAccess struct {
	members repository.ProjectUserRepository
}

func NewOrgAccess(members repository.ProjectUserRepository) *OrgAccess {
	return &OrgAccess{members: members}
}

// Allowed 判断调用方能否操作目标组织的资源
func (o *OrgAccess) Allowed(caller *model.UserOrganization, orgID uint) bool {
	if caller == nil {
		return false
	}
	return caller.IsSuperuser ||
		(caller.OrganizationID != nil && *caller.OrganizationID == orgID) ||
		o.members.IsUserInOrganization(caller.ID, orgID)
}

// Verify 路由里必须带 :org_id
func (o *OrgAccess) Verify() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CurrentUser(c)
		if caller == nil {
			abortAuth(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		orgID, err := strconv.ParseUint(c.Param("org_id"), 10, 64)
		if err != nil {
			abortAuth(c, http.StatusBadRequest, "Invalid organization id")
			return
		}

		if !o.Allowed(caller, uint(orgID)) {
			abortAuth(c, http.StatusForbidden, "User is not part of the organization")
			return
		}
		c.Next()
	}
}

// ProjectScope 项目级接口的访问控制
// 路由里必须带 :project_id；通过条件（满足其一）：
//   - 超级用户
//   - API Key 调用方，且 Key 的组织就是项目所属组织
//   - 项目的活跃成员
type ProjectScope struct {
	projects repository.ProjectRepository
	orgs     repository.OrganizationRepository
	members  repository.ProjectUserRepository
}

func NewProjectScope(
	projects repository.ProjectRepository,
	orgs repository.OrganizationRepository,
	members repository.ProjectUserRepository,
) *ProjectScope {
	return &ProjectScope{projects: projects, orgs: orgs, members: members}
}

func (p *ProjectScope) Verify() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CurrentUser(c)
		if caller == nil {
			abortAuth(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		projectID, err := strconv.ParseUint(c.Param("project_id"), 10, 64)
		if err != nil {
			abortAuth(c, http.StatusBadRequest, "Invalid project id")
			return
		}

		// 1. 项目 + 所属组织都要活跃
		project, err := p.projects.GetByID(uint(projectID))
		if err != nil {
			abortAuth(c, http.StatusNotFound, err.Error())
			return
		}
		if !project.IsActive {
			abortAuth(c, http.StatusBadRequest, repository.ErrProjInactive.Error())
			return
		}
		if _, err := p.orgs.ValidateActive(project.OrganizationID); err != nil {
			abortAuth(c, http.StatusBadRequest, err.Error())
			return
		}

		// 2. 访问资格
		allowed := caller.IsSuperuser ||
			(caller.OrganizationID != nil && *caller.OrganizationID == project.OrganizationID) ||
			p.members.IsMember(caller.ID, project.ID)
		if !allowed {
			abortAuth(c, http.StatusForbidden, "User is not part of the project")
			return
		}

		c.Set(CurrentProjectKey, &model.UserProjectOrg{
			UserOrganization: *caller,
			ProjectID:        project.ID,
		})
		c.Next()
	}
}

// CurrentUser 从 Context 取出鉴权后的调用方，取不到返回 nil
func CurrentUser(c *gin.Context) *model.UserOrganization {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil
	}
	caller, ok := v.(*model.UserOrganization)
	if !ok {
		return nil
	}
	return caller
}

// CurrentProjectUser 项目级接口里取出带项目绑定的调用方
func CurrentProjectUser(c *gin.Context) *model.UserProjectOrg {
	v, ok := c.Get(CurrentProjectKey)
	if !ok {
		return nil
	}
	caller, ok := v.(*model.UserProjectOrg)
	if !ok {
		return nil
	}
	return caller
}

func abortAuth(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, dto.Failure(message))
}
