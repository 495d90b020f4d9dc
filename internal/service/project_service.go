package service

import (
	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/logger"
	"Hermes-Gateway/internal/model"
	"Hermes-Gateway/internal/repository"
)

// ProjectService 项目和项目成员管理
type ProjectService struct {
	repo     repository.ProjectRepository
	orgRepo  repository.OrganizationRepository
	members  repository.ProjectUserRepository
	userRepo repository.UserRepository
}

func NewProjectService(
	repo repository.ProjectRepository,
	orgRepo repository.OrganizationRepository,
	members repository.ProjectUserRepository,
	userRepo repository.UserRepository,
) *ProjectService {
	return &ProjectService{repo: repo, orgRepo: orgRepo, members: members, userRepo: userRepo}
}

func (s *ProjectService) Create(req dto.CreateProjectReq) (*model.Project, error) {
	// 组织必须存在且活跃
	if _, err := s.orgRepo.ValidateActive(req.OrganizationID); err != nil {
		return nil, validationError(err)
	}

	project := model.Project{
		Name:           req.Name,
		Description:    req.Description,
		OrganizationID: req.OrganizationID,
		IsActive:       true,
	}
	if err := s.repo.Create(&project); err != nil {
		return nil, err
	}

	logger.L.Infof("✅ 项目创建成功: %s (org=%d)", project.Name, project.OrganizationID)
	return &project, nil
}

func (s *ProjectService) Get(id uint) (*model.Project, error) {
	return s.repo.GetByID(id)
}

func (s *ProjectService) ListByOrg(orgID uint) ([]model.Project, error) {
	if _, err := s.orgRepo.GetByID(orgID); err != nil {
		return nil, err
	}
	return s.repo.ListByOrg(orgID)
}

func (s *ProjectService) Update(id uint, req dto.UpdateProjectReq) (*model.Project, error) {
	project, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.IsActive != nil {
		project.IsActive = *req.IsActive
	}

	if err := s.repo.Update(project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Deactivate(id uint) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	return s.repo.Deactivate(id)
}

// AddUser 把用户加入项目
// 同一对 (project, user) 只允许一条活跃成员关系
func (s *ProjectService) AddUser(projectID uint, req dto.AddProjectUserReq) (*model.ProjectUser, error) {
	project, err := s.repo.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.orgRepo.ValidateActive(project.OrganizationID); err != nil {
		return nil, validationError(err)
	}
	if _, err := s.userRepo.GetByID(req.UserID); err != nil {
		return nil, err
	}

	member, err := s.members.Add(projectID, req.UserID, req.IsAdmin)
	if err != nil {
		if err == repository.ErrAlreadyMember {
			return nil, validationError(err)
		}
		return nil, err
	}

	logger.L.Infof("✅ 项目成员已添加: user=%d project=%d admin=%v", req.UserID, projectID, req.IsAdmin)
	return member, nil
}

// RemoveUser 软删除成员关系
func (s *ProjectService) RemoveUser(projectID, userID uint) error {
	if _, err := s.repo.GetByID(projectID); err != nil {
		return err
	}
	return s.members.Remove(projectID, userID)
}

// ListUsers 分页列出项目成员，返回总数
func (s *ProjectService) ListUsers(projectID uint, skip, limit int) (*dto.ListResp, error) {
	if _, err := s.repo.GetByID(projectID); err != nil {
		return nil, err
	}

	members, total, err := s.members.ListByProject(projectID, skip, limit)
	if err != nil {
		return nil, validationError(err)
	}
	return &dto.ListResp{Data: members, Count: total}, nil
}
