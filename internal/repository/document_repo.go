package repository

import (
	"errors"
	"fmt"
	"time"

	"Hermes-Gateway/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentRepository interface {
	Save(doc *model.Document) error
	// ReadOne 按 id 直查，软删除的行也返回（带删除标记）
	ReadOne(ownerID uint, docID uuid.UUID) (*model.Document, error)
	// ReadEach 按 id 列表取文档，缺一个就报错
	ReadEach(ownerID uint, docIDs []uuid.UUID) ([]model.Document, error)
	// ReadMany 只返回活跃文档，skip/limit 为负报错
	ReadMany(ownerID uint, skip, limit int) ([]model.Document, error)
	// SoftDelete 打 DeletedAt 时间戳
	SoftDelete(ownerID uint, docID uuid.UUID) (*model.Document, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Save(doc *model.Document) error {
	return r.db.Save(doc).Error
}

func (r *documentRepository) ReadOne(ownerID uint, docID uuid.UUID) (*model.Document, error) {
	var doc model.Document
	err := r.db.Where("owner_id = ? AND id = ?", ownerID, docID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ReadEach(ownerID uint, docIDs []uuid.UUID) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.Where("owner_id = ? AND id IN ?", ownerID, docIDs).Find(&docs).Error
	if err != nil {
		return nil, err
	}
	if len(docs) != len(docIDs) {
		return nil, fmt.Errorf("%w: expected %d documents, found %d",
			ErrDocumentNotFound, len(docIDs), len(docs))
	}
	return docs, nil
}

func (r *documentRepository) ReadMany(ownerID uint, skip, limit int) ([]model.Document, error) {
	if skip < 0 {
		return nil, fmt.Errorf("negative skip: %d", skip)
	}
	if limit < 0 {
		return nil, fmt.Errorf("negative limit: %d", limit)
	}

	var docs []model.Document
	err := r.db.Where("owner_id = ? AND deleted_at IS NULL", ownerID).
		Offset(skip).Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepository) SoftDelete(ownerID uint, docID uuid.UUID) (*model.Document, error) {
	doc, err := r.ReadOne(ownerID, docID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc.DeletedAt = &now
	if err := r.db.Save(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}
