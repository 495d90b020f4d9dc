package service

import (
	"testing"

	"Hermes-Gateway/internal/data"
	"Hermes-Gateway/internal/model"
	"Hermes-Gateway/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 每个测试一个独立的内存库，结构和生产共用同一份迁移
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, data.AutoMigrate(db))
	return db
}

// seedOrg 建一个活跃组织
func seedOrg(t *testing.T, db *gorm.DB, name string) *model.Organization {
	t.Helper()

	org := &model.Organization{Name: name, IsActive: true}
	require.NoError(t, repository.NewOrganizationRepository(db).Create(org))
	return org
}

// seedUser 建一个活跃用户
func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	user := &model.User{Email: email, HashedPassword: "x", IsActive: true}
	require.NoError(t, repository.NewUserRepository(db).Create(user))
	return user
}
