package service

import (
	"errors"
	"fmt"

	"Hermes-Gateway/internal/model"
	"Hermes-Gateway/internal/providers"
	"Hermes-Gateway/internal/repository"
	"Hermes-Gateway/internal/security"
)

// CredentialService 管理组织/项目级的 Provider 凭证
// 凭证整体加密成一个 blob 落库，一个 Provider 一行
type CredentialService struct {
	repo    repository.CredentialRepository
	orgRepo repository.OrganizationRepository
	cipher  *security.CredentialCipher
}

func NewCredentialService(
	repo repository.CredentialRepository,
	orgRepo repository.OrganizationRepository,
	cipher *security.CredentialCipher,
) *CredentialService {
	return &CredentialService{repo: repo, orgRepo: orgRepo, cipher: cipher}
}

// SetCreds 批量写入：每个 provider 单独成行
// 先整体校验再落库，校验失败什么都不写
func (s *CredentialService) SetCreds(orgID uint, projectID *uint, creds map[string]map[string]string) ([]model.CredentialPublic, error) {
	if len(creds) == 0 {
		return nil, validationError(errors.New("credential must not be empty"))
	}

	// 1. 组织必须存在且活跃
	if _, err := s.orgRepo.ValidateActive(orgID); err != nil {
		return nil, validationError(err)
	}

	// 2. 逐个 provider 校验 + 加密
	rows := make([]*model.Credential, 0, len(creds))
	for name, fields := range creds {
		if err := providers.ValidateCredentials(name, fields); err != nil {
			return nil, validationError(err)
		}

		// 加密失败是配置级错误，直接中止，绝不落明文
		blob, err := s.cipher.Encrypt(fields)
		if err != nil {
			return nil, err
		}

		rows = append(rows, &model.Credential{
			OrganizationID: orgID,
			ProjectID:      projectID,
			Provider:       name,
			Credential:     blob,
			IsActive:       true,
		})
	}

	// 3. 一个事务写入，约束冲突整体回滚
	if err := s.repo.Insert(rows); err != nil {
		return nil, validationError(err)
	}

	out := make([]model.CredentialPublic, 0, len(rows))
	for _, row := range rows {
		pub, err := s.toPublic(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *pub)
	}
	return out, nil
}

// GetCreds 范围内所有活跃凭证的解密投影
func (s *CredentialService) GetCreds(orgID uint, projectID *uint) ([]model.CredentialPublic, error) {
	rows, err := s.repo.ActiveByScope(orgID, projectID)
	if err != nil {
		return nil, err
	}

	out := make([]model.CredentialPublic, 0, len(rows))
	for i := range rows {
		pub, err := s.toPublic(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *pub)
	}
	return out, nil
}

// GetProviderCredential 单个 provider 的解密凭证，没有则返回 nil
func (s *CredentialService) GetProviderCredential(orgID uint, projectID *uint, provider string) (map[string]string, error) {
	if _, err := providers.Validate(provider); err != nil {
		return nil, validationError(err)
	}

	row, err := s.repo.ActiveByProvider(orgID, projectID, provider)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return s.cipher.Decrypt(row.Credential)
}

// UpdateCreds 更新已有 provider 行：重新校验、重新加密
// 行不存在和校验失败是两类错误，调用方要能区分
func (s *CredentialService) UpdateCreds(orgID uint, projectID *uint, provider string, fields map[string]string) (*model.CredentialPublic, error) {
	if err := providers.ValidateCredentials(provider, fields); err != nil {
		return nil, validationError(err)
	}

	row, err := s.repo.ActiveByProvider(orgID, projectID, provider)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, repository.ErrCredsNotFound
	}

	blob, err := s.cipher.Encrypt(fields)
	if err != nil {
		return nil, err
	}

	row.Credential = blob
	if err := s.repo.Update(row); err != nil {
		return nil, err
	}
	return s.toPublic(row)
}

// RemoveProviderCredential 软删除单个 provider，兄弟行不动
func (s *CredentialService) RemoveProviderCredential(orgID uint, projectID *uint, provider string) (*model.Credential, error) {
	if _, err := providers.Validate(provider); err != nil {
		return nil, validationError(err)
	}
	return s.repo.DeactivateProvider(orgID, projectID, provider)
}

// RemoveCreds 软删除范围内全部活跃行
// 组织级和项目级各删各的，互不级联
func (s *CredentialService) RemoveCreds(orgID uint, projectID *uint) (int64, error) {
	affected, err := s.repo.DeactivateScope(orgID, projectID)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, repository.ErrCredsNotFound
	}
	return affected, nil
}

func (s *CredentialService) toPublic(row *model.Credential) (*model.CredentialPublic, error) {
	var fields map[string]string
	if row.Credential != "" {
		decrypted, err := s.cipher.Decrypt(row.Credential)
		if err != nil {
			return nil, fmt.Errorf("credential row %d: %w", row.ID, err)
		}
		fields = decrypted
	}

	return &model.CredentialPublic{
		ID:             row.ID,
		OrganizationID: row.OrganizationID,
		ProjectID:      row.ProjectID,
		Provider:       row.Provider,
		Credential:     fields,
		IsActive:       row.IsActive,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}
