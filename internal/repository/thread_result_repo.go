package repository

import (
	"errors"
	"time"

	"Hermes-Gateway/internal/model"

	"gorm.io/gorm"
)

type ThreadResultRepository interface {
	// Upsert 按 thread_id 写入/覆盖最后一次运行结果
	Upsert(result *model.ThreadResult) error
	// GetByThreadID 没有记录时返回 nil
	GetByThreadID(threadID string) (*model.ThreadResult, error)
}

type threadResultRepository struct {
	db *gorm.DB
}

func NewThreadResultRepository(db *gorm.DB) ThreadResultRepository {
	return &threadResultRepository{db: db}
}

func (r *threadResultRepository) Upsert(result *model.ThreadResult) error {
	var existing model.ThreadResult
	err := r.db.Where("thread_id = ?", result.ThreadID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(result).Error
	}
	if err != nil {
		return err
	}

	existing.Prompt = result.Prompt
	existing.Response = result.Response
	existing.Status = result.Status
	existing.Error = result.Error
	existing.Extra = result.Extra
	existing.UpdatedAt = time.Now().UTC()
	return r.db.Save(&existing).Error
}

func (r *threadResultRepository) GetByThreadID(threadID string) (*model.ThreadResult, error) {
	var result model.ThreadResult
	err := r.db.Where("thread_id = ?", threadID).First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
