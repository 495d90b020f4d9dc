package repository

import (
	"errors"
	"fmt"
	"time"

	"Hermes-Gateway/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrCollectionExists   = errors.New("collection already present")
	ErrNotCollectionOwner = errors.New("invalid collection ownership")
)

type CollectionRepository interface {
	// Create 一个本地事务里写 Collection 行 + 文档关联行
	// (llm_service_id, llm_service_name) 已存在时报 ErrCollectionExists
	Create(collection *model.Collection, documents []model.Document) error
	ReadOne(ownerID uint, collectionID uuid.UUID) (*model.Collection, error)
	// ReadAll 只返回未删除的
	ReadAll(ownerID uint) ([]model.Collection, error)
	// MarkDeleted 打 DeletedAt 时间戳
	MarkDeleted(collection *model.Collection) error
	// CollectionsByDocument 通过中间表找出引用该文档的全部未删除 Collection
	CollectionsByDocument(docID uuid.UUID) ([]model.Collection, error)
	// DocumentsByCollection 分页列出 Collection 关联的文档
	DocumentsByCollection(collectionID uuid.UUID, skip, limit int) ([]model.Document, error)
}

type collectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(collection *model.Collection, documents []model.Document) error {
	// 先查唯一性，给出可读错误（数据库唯一索引兜底）
	var present int64
	r.db.Model(&model.Collection{}).
		Where("llm_service_id = ? AND llm_service_name = ?",
			collection.LLMServiceID, collection.LLMServiceName).
		Count(&present)
	if present > 0 {
		return ErrCollectionExists
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(collection).Error; err != nil {
			return err
		}
		for _, d := range documents {
			dc := model.DocumentCollection{
				DocumentID:   d.ID,
				CollectionID: collection.ID,
			}
			if err := tx.Create(&dc).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *collectionRepository) ReadOne(ownerID uint, collectionID uuid.UUID) (*model.Collection, error) {
	var collection model.Collection
	err := r.db.Where("owner_id = ? AND id = ?", ownerID, collectionID).First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *collectionRepository) ReadAll(ownerID uint) ([]model.Collection, error) {
	var collections []model.Collection
	err := r.db.Where("owner_id = ? AND deleted_at IS NULL", ownerID).
		Find(&collections).Error
	if err != nil {
		return nil, err
	}
	return collections, nil
}

func (r *collectionRepository) MarkDeleted(collection *model.Collection) error {
	now := time.Now().UTC()
	collection.DeletedAt = &now
	return r.db.Save(collection).Error
}

func (r *collectionRepository) CollectionsByDocument(docID uuid.UUID) ([]model.Collection, error) {
	var collections []model.Collection
	err := r.db.Distinct("collections.*").
		Joins("JOIN document_collections ON document_collections.collection_id = collections.id").
		Where("document_collections.document_id = ? AND collections.deleted_at IS NULL", docID).
		Find(&collections).Error
	if err != nil {
		return nil, err
	}
	return collections, nil
}

func (r *collectionRepository) DocumentsByCollection(collectionID uuid.UUID, skip, limit int) ([]model.Document, error) {
	if skip < 0 {
		return nil, fmt.Errorf("negative skip: %d", skip)
	}
	if limit < 0 {
		return nil, fmt.Errorf("negative limit: %d", limit)
	}

	var docs []model.Document
	err := r.db.Model(&model.Document{}).
		Joins("JOIN document_collections ON document_collections.document_id = documents.id").
		Where("document_collections.collection_id = ?", collectionID).
		Offset(skip).Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}
