package service

import (
	"errors"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/logger"
	"Hermes-Gateway/internal/model"
	"Hermes-Gateway/internal/repository"
)

// OrganizationService 组织生命周期管理
type OrganizationService struct {
	repo repository.OrganizationRepository
}

func NewOrganizationService(repo repository.OrganizationRepository) *OrganizationService {
	return &OrganizationService{repo: repo}
}

func (s *OrganizationService) Create(req dto.CreateOrgReq) (*model.Organization, error) {
	// 1. 名称全局唯一
	existing, err := s.repo.GetByName(req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, validationError(errors.New("organization name already exists"))
	}

	// 2. 落库，默认活跃
	org := model.Organization{Name: req.Name, IsActive: true}
	if req.IsActive != nil {
		org.IsActive = *req.IsActive
	}
	if err := s.repo.Create(&org); err != nil {
		return nil, err
	}

	logger.L.Infof("✅ 组织创建成功: %s (id=%d)", org.Name, org.ID)
	return &org, nil
}

func (s *OrganizationService) Get(id uint) (*model.Organization, error) {
	return s.repo.GetByID(id)
}

func (s *OrganizationService) List() ([]model.Organization, error) {
	return s.repo.List()
}

func (s *OrganizationService) Update(id uint, req dto.UpdateOrgReq) (*model.Organization, error) {
	org, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != org.Name {
		dup, err := s.repo.GetByName(*req.Name)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, validationError(errors.New("organization name already exists"))
		}
		org.Name = *req.Name
	}
	if req.IsActive != nil {
		org.IsActive = *req.IsActive
	}

	if err := s.repo.Update(org); err != nil {
		return nil, err
	}
	return org, nil
}

// Deactivate 软删除：组织停用后其下接口全部拒绝
func (s *OrganizationService) Deactivate(id uint) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	return s.repo.Deactivate(id)
}
