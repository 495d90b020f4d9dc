package repository

import (
	"errors"
	"time"

	"Hermes-Gateway/internal/model"
	"Hermes-Gateway/internal/security"

	"gorm.io/gorm"
)

var ErrAPIKeyNotFound = errors.New("API key not found or already deleted")

type APIKeyRepository interface {
	Create(key *model.APIKey) error
	GetByID(id uint) (*model.APIKey, error)
	// GetActiveByUserOrg 同一 (organization, user) 最多一把活跃的 Key
	GetActiveByUserOrg(orgID, userID uint) (*model.APIKey, error)
	ListByOrg(orgID uint) ([]model.APIKey, error)
	// Revoke 软删除（吊销）
	Revoke(id uint) error
	// FindByValue 按明文 Key 查找：先用前缀缩小范围，再逐条比对哈希
	FindByValue(key string) (*model.APIKey, error)
}

type apiKeyRepository struct {
	db *gorm.DB
}

func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository {
	return &apiKeyRepository{db: db}
}

func (r *apiKeyRepository) Create(key *model.APIKey) error {
	return r.db.Create(key).Error
}

func (r *apiKeyRepository) GetByID(id uint) (*model.APIKey, error) {
	var key model.APIKey
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAPIKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *apiKeyRepository) GetActiveByUserOrg(orgID, userID uint) (*model.APIKey, error) {
	var key model.APIKey
	err := r.db.Where("organization_id = ? AND user_id = ? AND is_deleted = ?", orgID, userID, false).
		First(&key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *apiKeyRepository) ListByOrg(orgID uint) ([]model.APIKey, error) {
	var keys []model.APIKey
	err := r.db.Where("organization_id = ? AND is_deleted = ?", orgID, false).Find(&keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *apiKeyRepository) Revoke(id uint) error {
	key, err := r.GetByID(id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	key.IsDeleted = true
	key.DeletedAt = &now
	return r.db.Save(key).Error
}

func (r *apiKeyRepository) FindByValue(value string) (*model.APIKey, error) {
	var candidates []model.APIKey
	err := r.db.Where("key_prefix = ? AND is_deleted = ?", security.APIKeyPrefix(value), false).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		if security.CheckAPIKey(value, candidates[i].KeyHash) {
			return &candidates[i], nil
		}
	}
	return nil, ErrAPIKeyNotFound
}
