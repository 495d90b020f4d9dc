package service

import (
	"testing"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/model"
	"Hermes-Gateway/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newProjectService(t *testing.T) (*ProjectService, *gorm.DB, *model.Organization) {
	t.Helper()

	db := newTestDB(t)
	svc := NewProjectService(
		repository.NewProjectRepository(db),
		repository.NewOrganizationRepository(db),
		repository.NewProjectUserRepository(db),
		repository.NewUserRepository(db),
	)
	return svc, db, seedOrg(t, db, "acme")
}

func TestProjectLifecycle(t *testing.T) {
	svc, _, org := newProjectService(t)

	project, err := svc.Create(dto.CreateProjectReq{
		Name:           "search",
		Description:    "internal search",
		OrganizationID: org.ID,
	})
	require.NoError(t, err)
	assert.True(t, project.IsActive)

	name := "search-v2"
	updated, err := svc.Update(project.ID, dto.UpdateProjectReq{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "search-v2", updated.Name)
	assert.Equal(t, "internal search", updated.Description)

	require.NoError(t, svc.Deactivate(project.ID))
	got, err := svc.Get(project.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestProjectCreateRequiresActiveOrg(t *testing.T) {
	svc, db, org := newProjectService(t)

	require.NoError(t, repository.NewOrganizationRepository(db).Deactivate(org.ID))

	var verr *ValidationError
	_, err := svc.Create(dto.CreateProjectReq{Name: "x", OrganizationID: org.ID})
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Create(dto.CreateProjectReq{Name: "x", OrganizationID: 999})
	assert.ErrorAs(t, err, &verr)
}

func TestProjectMembership(t *testing.T) {
	svc, db, org := newProjectService(t)
	user := seedUser(t, db, "dev@acme.io")

	project, err := svc.Create(dto.CreateProjectReq{Name: "search", OrganizationID: org.ID})
	require.NoError(t, err)

	member, err := svc.AddUser(project.ID, dto.AddProjectUserReq{UserID: user.ID, IsAdmin: true})
	require.NoError(t, err)
	assert.True(t, member.IsAdmin)

	// 重复加入被拒
	var verr *ValidationError
	_, err = svc.AddUser(project.ID, dto.AddProjectUserReq{UserID: user.ID})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "already a member")

	resp, err := svc.ListUsers(project.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Count)

	// 移除后可以重新加入
	require.NoError(t, svc.RemoveUser(project.ID, user.ID))
	resp, err = svc.ListUsers(project.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, resp.Count)

	_, err = svc.AddUser(project.ID, dto.AddProjectUserReq{UserID: user.ID})
	assert.NoError(t, err)

	// 再移除一次报 not member
	require.NoError(t, svc.RemoveUser(project.ID, user.ID))
	err = svc.RemoveUser(project.ID, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotMember)
}

func TestProjectMembershipUnknownUser(t *testing.T) {
	svc, _, org := newProjectService(t)

	project, err := svc.Create(dto.CreateProjectReq{Name: "search", OrganizationID: org.ID})
	require.NoError(t, err)

	_, err = svc.AddUser(project.ID, dto.AddProjectUserReq{UserID: 404})
	assert.Error(t, err)
}

func TestProjectListPaginationValidation(t *testing.T) {
	svc, _, org := newProjectService(t)

	project, err := svc.Create(dto.CreateProjectReq{Name: "search", OrganizationID: org.ID})
	require.NoError(t, err)

	var verr *ValidationError
	_, err = svc.ListUsers(project.ID, -1, 10)
	assert.ErrorAs(t, err, &verr)
}
