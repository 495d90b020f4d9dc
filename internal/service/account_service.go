package service

import (
	"errors"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/logger"
	"Hermes-Gateway/internal/model"
	"Hermes-Gateway/internal/repository"
	"Hermes-Gateway/internal/security"
)

// AccountService 用户、API Key 与快速开通
type AccountService struct {
	userRepo repository.UserRepository
	orgRepo  repository.OrganizationRepository
	projRepo repository.ProjectRepository
	members  repository.ProjectUserRepository
	keyRepo  repository.APIKeyRepository
}

func NewAccountService(
	userRepo repository.UserRepository,
	orgRepo repository.OrganizationRepository,
	projRepo repository.ProjectRepository,
	members repository.ProjectUserRepository,
	keyRepo repository.APIKeyRepository,
) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		orgRepo:  orgRepo,
		projRepo: projRepo,
		members:  members,
		keyRepo:  keyRepo,
	}
}

// CreateAPIKey 给 (组织, 用户) 签发 API Key
// 明文只在这次响应里出现，库里只存哈希；
// 同一对 (组织, 用户) 最多一把活跃 Key
func (s *AccountService) CreateAPIKey(orgID, userID uint) (*dto.APIKeyResp, error) {
	if _, err := s.orgRepo.ValidateActive(orgID); err != nil {
		return nil, validationError(err)
	}
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, err
	}

	existing, err := s.keyRepo.GetActiveByUserOrg(orgID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, validationError(errors.New("user already has an active API key for this organization"))
	}

	plaintext, err := security.GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	hash, err := security.HashAPIKey(plaintext)
	if err != nil {
		return nil, err
	}

	key := model.APIKey{
		OrganizationID: orgID,
		UserID:         userID,
		KeyHash:        hash,
		KeyPrefix:      security.APIKeyPrefix(plaintext),
	}
	if err := s.keyRepo.Create(&key); err != nil {
		return nil, err
	}

	logger.L.Infof("✅ API Key 已签发: org=%d user=%d prefix=%s", orgID, userID, key.KeyPrefix)
	return &dto.APIKeyResp{
		ID:             key.ID,
		OrganizationID: key.OrganizationID,
		UserID:         key.UserID,
		Key:            plaintext,
		KeyPrefix:      key.KeyPrefix,
	}, nil
}

// ListAPIKeys 组织下所有未吊销的 Key（不含明文）
func (s *AccountService) ListAPIKeys(orgID uint) ([]model.APIKey, error) {
	if _, err := s.orgRepo.GetByID(orgID); err != nil {
		return nil, err
	}
	return s.keyRepo.ListByOrg(orgID)
}

// GetAPIKey 按 ID 查一把 Key（只有哈希，没有明文）
func (s *AccountService) GetAPIKey(id uint) (*model.APIKey, error) {
	return s.keyRepo.GetByID(id)
}

// RevokeAPIKey 吊销一把 Key
func (s *AccountService) RevokeAPIKey(id uint) error {
	if _, err := s.keyRepo.GetByID(id); err != nil {
		return err
	}
	return s.keyRepo.Revoke(id)
}

// Onboard 一步开通：组织 + 项目 + 管理员用户 + API Key
// 组织、项目、用户都是 get-or-create，唯一的硬性拒绝是
// 这对 (组织, 用户) 已经持有活跃 Key
func (s *AccountService) Onboard(req dto.OnboardingReq) (*dto.OnboardingResp, error) {
	// 1. 组织：按名字复用，没有就建
	org, err := s.orgRepo.GetByName(req.OrganizationName)
	if err != nil {
		return nil, err
	}
	if org == nil {
		org = &model.Organization{Name: req.OrganizationName, IsActive: true}
		if err := s.orgRepo.Create(org); err != nil {
			return nil, err
		}
	}

	// 2. 项目：组织内按名字复用
	project, err := s.projRepo.GetByNameInOrg(org.ID, req.ProjectName)
	if err != nil {
		return nil, err
	}
	if project == nil {
		project = &model.Project{
			Name:           req.ProjectName,
			OrganizationID: org.ID,
			IsActive:       true,
		}
		if err := s.projRepo.Create(project); err != nil {
			return nil, err
		}
	}

	// 3. 用户：按邮箱复用；新用户作为项目管理员入组
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	if user == nil {
		hashed, err := security.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user = &model.User{
			Email:          req.Email,
			HashedPassword: hashed,
			FullName:       req.UserName,
			IsActive:       true,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, err
		}
	}
	if _, err := s.members.Add(project.ID, user.ID, true); err != nil &&
		!errors.Is(err, repository.ErrAlreadyMember) {
		return nil, err
	}

	// 4. API Key：复用的 (组织, 用户) 已有活跃 Key 时直接拒绝
	keyResp, err := s.CreateAPIKey(org.ID, user.ID)
	if err != nil {
		return nil, err
	}

	logger.L.Infof("🎉 开通完成: org=%s project=%s user=%s", org.Name, project.Name, user.Email)
	return &dto.OnboardingResp{
		OrganizationID: org.ID,
		ProjectID:      project.ID,
		UserID:         user.ID,
		APIKey:         keyResp.Key,
	}, nil
}
