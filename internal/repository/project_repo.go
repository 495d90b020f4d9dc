package repository

import (
	"errors"

	"Hermes-Gateway/internal/model"

	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(project *model.Project) error
	GetByID(id uint) (*model.Project, error)
	GetByNameInOrg(orgID uint, name string) (*model.Project, error)
	ListByOrg(orgID uint) ([]model.Project, error)
	Update(project *model.Project) error
	Deactivate(id uint) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *model.Project) error {
	return r.db.Create(project).Error
}

func (r *projectRepository) GetByID(id uint) (*model.Project, error) {
	var project model.Project
	if err := r.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjNotFound
		}
		return nil, err
	}
	return &project, nil
}

// GetByNameInOrg 按名字在组织内查找，不存在时返回 nil 而不是错误
func (r *projectRepository) GetByNameInOrg(orgID uint, name string) (*model.Project, error) {
	var project model.Project
	err := r.db.Where("organization_id = ? AND name = ?", orgID, name).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListByOrg(orgID uint) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.Where("organization_id = ?", orgID).Order("created_at desc").Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) Update(project *model.Project) error {
	return r.db.Save(project).Error
}

func (r *projectRepository) Deactivate(id uint) error {
	project, err := r.GetByID(id)
	if err != nil {
		return err
	}
	project.IsActive = false
	return r.db.Save(project).Error
}
