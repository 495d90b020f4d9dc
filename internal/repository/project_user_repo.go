package repository

import (
	"errors"
	"time"

	"Hermes-Gateway/internal/model"

	"gorm.io/gorm"
)

var (
	ErrAlreadyMember = errors.New("user is already a member of this project")
	ErrNotMember     = errors.New("user is not a member of this project or already removed")
)

type ProjectUserRepository interface {
	// Add 把用户加入项目，同一 (project, user) 只允许一条活跃记录
	Add(projectID, userID uint, isAdmin bool) (*model.ProjectUser, error)
	// Remove 软删除成员关系
	Remove(projectID, userID uint) error
	// ListByProject 分页列出项目成员，带总数
	ListByProject(projectID uint, skip, limit int) ([]model.ProjectUser, int64, error)
	IsAdmin(userID, projectID uint) bool
	IsMember(userID, projectID uint) bool
	// IsUserInOrganization 用户是否属于组织下至少一个项目
	IsUserInOrganization(userID, orgID uint) bool
}

type projectUserRepository struct {
	db *gorm.DB
}

func NewProjectUserRepository(db *gorm.DB) ProjectUserRepository {
	return &projectUserRepository{db: db}
}

func (r *projectUserRepository) activePair(projectID, userID uint) *gorm.DB {
	return r.db.Where("project_id = ? AND user_id = ? AND is_deleted = ?", projectID, userID, false)
}

func (r *projectUserRepository) Add(projectID, userID uint, isAdmin bool) (*model.ProjectUser, error) {
	var count int64
	r.activePair(projectID, userID).Model(&model.ProjectUser{}).Count(&count)
	if count > 0 {
		return nil, ErrAlreadyMember
	}

	pu := &model.ProjectUser{
		ProjectID: projectID,
		UserID:    userID,
		IsAdmin:   isAdmin,
	}
	if err := r.db.Create(pu).Error; err != nil {
		return nil, err
	}
	return pu, nil
}

func (r *projectUserRepository) Remove(projectID, userID uint) error {
	var pu model.ProjectUser
	err := r.activePair(projectID, userID).First(&pu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotMember
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	pu.IsDeleted = true
	pu.DeletedAt = &now
	return r.db.Save(&pu).Error
}

func (r *projectUserRepository) ListByProject(projectID uint, skip, limit int) ([]model.ProjectUser, int64, error) {
	if skip < 0 || limit < 0 {
		return nil, 0, errors.New("negative pagination")
	}

	// 查询条件不复用同一条链，Count 执行后语句已终结
	query := func() *gorm.DB {
		return r.db.Model(&model.ProjectUser{}).
			Where("project_id = ? AND is_deleted = ?", projectID, false)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.ProjectUser
	if err := query().Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *projectUserRepository) IsAdmin(userID, projectID uint) bool {
	var pu model.ProjectUser
	err := r.activePair(projectID, userID).First(&pu).Error
	return err == nil && pu.IsAdmin
}

func (r *projectUserRepository) IsMember(userID, projectID uint) bool {
	var count int64
	r.activePair(projectID, userID).Model(&model.ProjectUser{}).Count(&count)
	return count > 0
}

func (r *projectUserRepository) IsUserInOrganization(userID, orgID uint) bool {
	var count int64
	r.db.Model(&model.ProjectUser{}).
		Joins("JOIN projects ON projects.id = project_users.project_id").
		Where("projects.organization_id = ? AND project_users.user_id = ? AND project_users.is_deleted = ?",
			orgID, userID, false).
		Count(&count)
	return count > 0
}
