package middleware

import (
	"testing"

	"Hermes-Gateway/internal/data"
	"Hermes-Gateway/internal/model"
	"Hermes-Gateway/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAccessTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, data.AutoMigrate(db))
	return db
}

func TestOrgAccessAllowed(t *testing.T) {
	db := newAccessTestDB(t)
	members := repository.NewProjectUserRepository(db)
	access := NewOrgAccess(members)

	orgA := model.Organization{Name: "acme", IsActive: true}
	require.NoError(t, db.Create(&orgA).Error)
	orgB := model.Organization{Name: "globex", IsActive: true}
	require.NoError(t, db.Create(&orgB).Error)

	project := model.Project{Name: "search", OrganizationID: orgA.ID, IsActive: true}
	require.NoError(t, db.Create(&project).Error)

	member := model.User{Email: "dev@acme.io", HashedPassword: "x", IsActive: true}
	require.NoError(t, db.Create(&member).Error)
	_, err := members.Add(project.ID, member.ID, false)
	require.NoError(t, err)

	// 超级用户哪儿都能去
	admin := &model.UserOrganization{User: model.User{IsSuperuser: true}}
	assert.True(t, access.Allowed(admin, orgA.ID))
	assert.True(t, access.Allowed(admin, orgB.ID))

	// API Key 调用方自带组织归属
	keyCaller := &model.UserOrganization{User: member, OrganizationID: &orgA.ID}
	assert.True(t, access.Allowed(keyCaller, orgA.ID))
	assert.False(t, access.Allowed(keyCaller, orgB.ID))

	// JWT 调用方看项目成员关系
	jwtCaller := &model.UserOrganization{User: member}
	assert.True(t, access.Allowed(jwtCaller, orgA.ID))
	assert.False(t, access.Allowed(jwtCaller, orgB.ID))

	// 成员被移出后资格跟着失效
	require.NoError(t, members.Remove(project.ID, member.ID))
	assert.False(t, access.Allowed(jwtCaller, orgA.ID))

	assert.False(t, access.Allowed(nil, orgA.ID))
}
