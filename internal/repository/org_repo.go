package repository

import (
	"errors"

	"Hermes-Gateway/internal/model"

	"gorm.io/gorm"
)

var (
	ErrOrgNotFound  = errors.New("organization not found")
	ErrOrgInactive  = errors.New("organization is not active")
	ErrProjNotFound = errors.New("project not found")
	ErrProjInactive = errors.New("project is not active")
)

type OrganizationRepository interface {
	Create(org *model.Organization) error
	GetByID(id uint) (*model.Organization, error)
	GetByName(name string) (*model.Organization, error)
	List() ([]model.Organization, error)
	Update(org *model.Organization) error
	// Deactivate 软删除：IsActive=false
	Deactivate(id uint) error
	// ValidateActive 组织必须存在且处于活跃状态
	ValidateActive(id uint) (*model.Organization, error)
}

type organizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) Create(org *model.Organization) error {
	return r.db.Create(org).Error
}

func (r *organizationRepository) GetByID(id uint) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrgNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) GetByName(name string) (*model.Organization, error) {
	var org model.Organization
	err := r.db.Where("name = ?", name).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) List() ([]model.Organization, error) {
	var orgs []model.Organization
	if err := r.db.Order("created_at desc").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *organizationRepository) Update(org *model.Organization) error {
	return r.db.Save(org).Error
}

func (r *organizationRepository) Deactivate(id uint) error {
	org, err := r.GetByID(id)
	if err != nil {
		return err
	}
	org.IsActive = false
	return r.db.Save(org).Error
}

func (r *organizationRepository) ValidateActive(id uint) (*model.Organization, error) {
	org, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !org.IsActive {
		return nil, ErrOrgInactive
	}
	return org, nil
}
