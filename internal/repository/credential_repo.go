package repository

import (
	"errors"
	"fmt"
	"time"

	"Hermes-Gateway/internal/model"

	"gorm.io/gorm"
)

var ErrCredsNotFound = errors.New("credentials not found")

type CredentialRepository interface {
	// Insert 新增一批 provider 行，任何一条失败整体回滚
	Insert(rows []*model.Credential) error
	// ActiveByScope 取一个 (org, project) 范围内所有活跃行
	ActiveByScope(orgID uint, projectID *uint) ([]model.Credential, error)
	// ActiveByProvider 取单个 provider 的活跃行，没有则返回 nil
	ActiveByProvider(orgID uint, projectID *uint, provider string) (*model.Credential, error)
	Update(row *model.Credential) error
	// DeactivateProvider 软删除单个 provider 行：清空 blob，IsActive=false
	DeactivateProvider(orgID uint, projectID *uint, provider string) (*model.Credential, error)
	// DeactivateScope 一个事务里软删除范围内全部活跃行
	DeactivateScope(orgID uint, projectID *uint) (int64, error)
}

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

// scope 处理 project_id 可空：组织级凭证的 project_id 是 NULL
func (r *credentialRepository) scope(db *gorm.DB, orgID uint, projectID *uint) *gorm.DB {
	db = db.Where("organization_id = ?", orgID)
	if projectID == nil {
		return db.Where("project_id IS NULL")
	}
	return db.Where("project_id = ?", *projectID)
}

func (r *credentialRepository) Insert(rows []*model.Credential) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			// 先查同范围同 provider 的已有行：
			// 活跃的算重复；软删除的原行复活（行保留策略下不能新建第二行）
			var existing model.Credential
			ferr := r.scope(tx, row.OrganizationID, row.ProjectID).
				Where("provider = ?", row.Provider).
				First(&existing).Error
			if ferr == nil {
				if existing.IsActive {
					return fmt.Errorf("credentials for provider %s already exist", row.Provider)
				}
				existing.Credential = row.Credential
				existing.IsActive = true
				existing.DeletedAt = nil
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				*row = existing
				continue
			}
			if !errors.Is(ferr, gorm.ErrRecordNotFound) {
				return ferr
			}

			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error while adding credentials: %w", err)
	}
	return nil
}

func (r *credentialRepository) ActiveByScope(orgID uint, projectID *uint) ([]model.Credential, error) {
	var rows []model.Credential
	err := r.scope(r.db, orgID, projectID).
		Where("is_active = ?", true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *credentialRepository) ActiveByProvider(orgID uint, projectID *uint, provider string) (*model.Credential, error) {
	var row model.Credential
	err := r.scope(r.db, orgID, projectID).
		Where("provider = ? AND is_active = ?", provider, true).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *credentialRepository) Update(row *model.Credential) error {
	if err := r.db.Save(row).Error; err != nil {
		return fmt.Errorf("error while updating credentials: %w", err)
	}
	return nil
}

func (r *credentialRepository) DeactivateProvider(orgID uint, projectID *uint, provider string) (*model.Credential, error) {
	row, err := r.ActiveByProvider(orgID, projectID, provider)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrCredsNotFound
	}

	now := time.Now().UTC()
	row.IsActive = false
	row.DeletedAt = &now
	row.Credential = "" // 删除即清空密文，行保留
	if err := r.db.Save(row).Error; err != nil {
		return nil, fmt.Errorf("error while deleting credentials: %w", err)
	}
	return row, nil
}

func (r *credentialRepository) DeactivateScope(orgID uint, projectID *uint) (int64, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := r.scope(tx.Model(&model.Credential{}), orgID, projectID).
			Where("is_active = ?", true).
			Updates(map[string]interface{}{
				"is_active":  false,
				"credential": "",
				"deleted_at": now,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error while deleting credentials: %w", err)
	}
	return affected, nil
}
