package service

import (
	"context"
	"io"

	"Hermes-Gateway/internal/logger"
	"Hermes-Gateway/internal/model"
	"Hermes-Gateway/internal/repository"
	"Hermes-Gateway/internal/storage"

	"github.com/google/uuid"
)

// DocumentService 文档上传/查询/删除
// 文件内容在对象存储，元数据在数据库，二者以文档 id 关联
type DocumentService struct {
	repo        repository.DocumentRepository
	store       storage.DocumentStorage
	collections *CollectionService
}

func NewDocumentService(
	repo repository.DocumentRepository,
	store storage.DocumentStorage,
	collections *CollectionService,
) *DocumentService {
	return &DocumentService{repo: repo, store: store, collections: collections}
}

// Upload 接收一批文件，逐个落对象存储 + 落库
// 任何一个失败就中止，已传的不回滚（对象存储里会留下孤儿对象）
func (s *DocumentService) Upload(ctx context.Context, ownerID uint, files []UploadFile) ([]model.Document, error) {
	if len(files) == 0 {
		return nil, validationError(errNoFiles)
	}

	docs := make([]model.Document, 0, len(files))
	for _, f := range files {
		docID := uuid.New()

		// 1. 内容先进对象存储
		objectURL, err := s.store.Put(ctx, ownerID, docID, f.Reader, f.Size, f.ContentType)
		if err != nil {
			return nil, err
		}

		// 2. 元数据落库
		doc := model.Document{
			ID:             docID,
			OwnerID:        ownerID,
			Fname:          f.Name,
			ObjectStoreURL: objectURL,
		}
		if err := s.repo.Save(&doc); err != nil {
			return nil, err
		}

		logger.L.Infof("✅ 文档上传完成: %s (%s)", f.Name, docID)
		docs = append(docs, doc)
	}
	return docs, nil
}

// UploadFile 一份待上传的文件
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// List 分页列出活跃文档，软删除的不出现
func (s *DocumentService) List(ownerID uint, skip, limit int) ([]model.Document, error) {
	docs, err := s.repo.ReadMany(ownerID, skip, limit)
	if err != nil {
		return nil, validationError(err)
	}
	return docs, nil
}

// Stat 按 id 直查单个文档，软删除的也返回（带删除标记）
func (s *DocumentService) Stat(ownerID uint, docID uuid.UUID) (*model.Document, error) {
	return s.repo.ReadOne(ownerID, docID)
}

// Remove 软删除一批文档
// 删除前先同步级联掉引用它们的 Collection（含外部 assistant / vector store），
// 保证不会留下指向已删文档的 Collection
func (s *DocumentService) Remove(ctx context.Context, ownerID uint, docIDs []uuid.UUID) ([]model.Document, error) {
	// 1. 全部存在才动手
	if _, err := s.repo.ReadEach(ownerID, docIDs); err != nil {
		return nil, err
	}

	deleted := make([]model.Document, 0, len(docIDs))
	for _, docID := range docIDs {
		// 2. 级联删除引用该文档的 Collection
		if err := s.collections.DeleteByDocument(ctx, ownerID, docID); err != nil {
			return nil, err
		}

		// 3. 软删除文档本身
		doc, err := s.repo.SoftDelete(ownerID, docID)
		if err != nil {
			return nil, err
		}
		logger.L.Infof("🔥 文档已删除: %s (%s)", doc.Fname, doc.ID)
		deleted = append(deleted, *doc)
	}
	return deleted, nil
}

// Stream 取回文档内容流，调用方负责 Close
func (s *DocumentService) Stream(ctx context.Context, ownerID uint, docID uuid.UUID) (io.ReadCloser, *model.Document, error) {
	doc, err := s.repo.ReadOne(ownerID, docID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Stream(ctx, doc.ObjectStoreURL)
	if err != nil {
		return nil, nil, err
	}
	return rc, doc, nil
}
