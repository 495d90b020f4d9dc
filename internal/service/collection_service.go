package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/llm"
	"Hermes-Gateway/internal/logger"
	"Hermes-Gateway/internal/model"
	"Hermes-Gateway/internal/repository"
	"Hermes-Gateway/internal/storage"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const defaultBatchSize = 10

// CollectionService 把一组文档变成一个外部 assistant + vector store，
// 并在本地登记绑定关系。创建/删除都是异步协议：
// 先回 processing 确认，结果走回调
type CollectionService struct {
	repo      repository.CollectionRepository
	docRepo   repository.DocumentRepository
	store     storage.DocumentStorage
	llm       llm.Client
	callbacks *CallbackPoster

	// spawn 后台任务的启动方式，测试里换成同步执行
	spawn func(func())
}

func NewCollectionService(
	repo repository.CollectionRepository,
	docRepo repository.DocumentRepository,
	store storage.DocumentStorage,
	llmClient llm.Client,
	callbacks *CallbackPoster,
) *CollectionService {
	return &CollectionService{
		repo:      repo,
		docRepo:   docRepo,
		store:     store,
		llm:       llmClient,
		callbacks: callbacks,
		spawn:     func(fn func()) { go fn() },
	}
}

// StartCreate 校验请求后把创建流程丢到后台，立即返回 processing 确认
// 确认里的 Key 就是未来 Collection 的 id
func (s *CollectionService) StartCreate(ownerID uint, req dto.CreateCollectionReq, route string) (dto.ProcessingPayload, error) {
	docIDs := dedupe(req.Documents)
	if len(docIDs) == 0 {
		return dto.ProcessingPayload{}, validationError(errNoDocuments)
	}

	// 文档必须全部存在且未删除，缺谁直接拒收
	docs, err := s.docRepo.ReadEach(ownerID, docIDs)
	if err != nil {
		return dto.ProcessingPayload{}, err
	}
	for i := range docs {
		if docs[i].IsDeleted() {
			return dto.ProcessingPayload{}, validationError(
				fmt.Errorf("document %s has been deleted", docs[i].ID))
		}
	}

	if req.BatchSize <= 0 {
		req.BatchSize = defaultBatchSize
	}

	payload := dto.NewProcessingPayload(route)

	// Fire and Forget：请求上下文会随响应结束，后台用独立 context
	s.spawn(func() { s.doCreate(context.Background(), ownerID, req, docs, payload) })

	return payload, nil
}

// doCreate 创建协议全流程：
// 1. 建 vector store
// 2. 文档分批上传（顺序，批内整批校验）
// 3. 建 assistant
// 4. 本地事务落 Collection + 关联行
// 5. 回调结果
// 2-4 任何一步失败都回收 vector store，4 失败还要回收 assistant
func (s *CollectionService) doCreate(ctx context.Context, ownerID uint, req dto.CreateCollectionReq, docs []model.Document, payload dto.ProcessingPayload) {
	report := &resultReporter{poster: s.callbacks, url: req.CallbackURL, payload: payload}

	// 1. vector store
	vectorStoreID, err := s.llm.CreateVectorStore(ctx)
	if err != nil {
		logger.L.Errorf("❌ Vector store 创建失败: %v", err)
		report.fail(llm.NormalizeError(err))
		return
	}

	backout := func(stage string, cause error) {
		logger.L.Errorf("❌ Collection 创建失败 (%s): %v", stage, cause)
		if derr := s.llm.DeleteVectorStore(ctx, vectorStoreID); derr != nil {
			logger.L.Errorf("❌ Vector store 回收失败: %v", derr)
		}
		report.fail(llm.NormalizeError(cause))
	}

	// 2. 分批上传
	for start := 0; start < len(docs); start += req.BatchSize {
		end := start + req.BatchSize
		if end > len(docs) {
			end = len(docs)
		}

		files, err := s.loadBatch(ctx, docs[start:end])
		if err != nil {
			backout("load", err)
			return
		}
		if err := s.llm.UploadVectorStoreBatch(ctx, vectorStoreID, files); err != nil {
			backout("ingest", err)
			return
		}
		logger.L.Infof("📦 批次入库完成: %d-%d / %d", start, end, len(docs))
	}

	// 3. assistant
	assistantCfg := llm.AssistantConfig{
		Model:        req.Model,
		Instructions: req.Instructions,
		Temperature:  req.Temperature,
	}
	assistantID, err := s.llm.CreateAssistant(ctx, vectorStoreID, assistantCfg)
	if err != nil {
		backout("assistant", err)
		return
	}

	// 4. 本地登记
	cfgJSON, _ := json.Marshal(assistantCfg)
	collection := model.Collection{
		ID:              uuid.MustParse(payload.Key),
		OwnerID:         ownerID,
		LLMServiceID:    assistantID,
		LLMServiceName:  req.Model,
		AssistantConfig: datatypes.JSON(cfgJSON),
	}
	if err := s.repo.Create(&collection, docs); err != nil {
		// 落库失败时外部资源全部回收，assistant 的删除会顺带清掉 vector store
		logger.L.Errorf("❌ Collection 落库失败: %v", err)
		if derr := s.llm.DeleteAssistant(ctx, assistantID); derr != nil {
			logger.L.Errorf("❌ Assistant 回收失败: %v", derr)
			if derr := s.llm.DeleteVectorStore(ctx, vectorStoreID); derr != nil {
				logger.L.Errorf("❌ Vector store 回收失败: %v", derr)
			}
		}
		report.fail(err.Error())
		return
	}

	logger.L.Infof("🎉 Collection 创建完成: %s (assistant=%s)", collection.ID, assistantID)
	report.success(collection)
}

// loadBatch 从对象存储取回一批文档内容
func (s *CollectionService) loadBatch(ctx context.Context, docs []model.Document) ([]llm.FilePayload, error) {
	files := make([]llm.FilePayload, 0, len(docs))
	for i := range docs {
		rc, err := s.store.Stream(ctx, docs[i].ObjectStoreURL)
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", docs[i].ID, err)
		}
		files = append(files, llm.FilePayload{Name: docs[i].Fname, Data: data})
	}
	return files, nil
}

// StartDelete 校验归属后把删除流程丢到后台，立即返回 processing 确认
func (s *CollectionService) StartDelete(ownerID uint, req dto.DeleteCollectionReq, route string) (dto.ProcessingPayload, error) {
	collection, err := s.repo.ReadOne(ownerID, req.CollectionID)
	if err != nil {
		return dto.ProcessingPayload{}, err
	}

	payload := dto.NewProcessingPayload(route)
	payload.Key = collection.ID.String()

	s.spawn(func() { s.doDelete(context.Background(), collection, req.CallbackURL, payload) })

	return payload, nil
}

// doDelete 先删外部资源（assistant + 其 vector store），再打本地删除标记
// 外部删不掉就不动本地行，留给下次重试
func (s *CollectionService) doDelete(ctx context.Context, collection *model.Collection, callbackURL string, payload dto.ProcessingPayload) {
	report := &resultReporter{poster: s.callbacks, url: callbackURL, payload: payload}

	if err := s.llm.DeleteAssistant(ctx, collection.LLMServiceID); err != nil {
		logger.L.Errorf("❌ Assistant 删除失败: %v", err)
		report.fail(llm.NormalizeError(err))
		return
	}

	if err := s.repo.MarkDeleted(collection); err != nil {
		logger.L.Errorf("❌ Collection 删除标记失败: %v", err)
		report.fail(err.Error())
		return
	}

	logger.L.Infof("🔥 Collection 已删除: %s", collection.ID)
	report.success(collection)
}

// DeleteByDocument 同步级联：删除所有引用该文档的 Collection
// 文档删除路径调用，不走异步协议
func (s *CollectionService) DeleteByDocument(ctx context.Context, ownerID uint, docID uuid.UUID) error {
	collections, err := s.repo.CollectionsByDocument(docID)
	if err != nil {
		return err
	}

	for i := range collections {
		if collections[i].OwnerID != ownerID {
			return repository.ErrNotCollectionOwner
		}
		if err := s.llm.DeleteAssistant(ctx, collections[i].LLMServiceID); err != nil {
			return err
		}
		if err := s.repo.MarkDeleted(&collections[i]); err != nil {
			return err
		}
		logger.L.Infof("🔥 级联删除 Collection: %s (document=%s)", collections[i].ID, docID)
	}
	return nil
}

// Info 单个 Collection 详情，软删除的也返回（带删除标记）
func (s *CollectionService) Info(ownerID uint, collectionID uuid.UUID) (*model.Collection, error) {
	return s.repo.ReadOne(ownerID, collectionID)
}

// List 全部未删除的 Collection
func (s *CollectionService) List(ownerID uint) ([]model.Collection, error) {
	return s.repo.ReadAll(ownerID)
}

// Documents 分页列出 Collection 关联的文档（先校验归属）
func (s *CollectionService) Documents(ownerID uint, collectionID uuid.UUID, skip, limit int) ([]model.Document, error) {
	if _, err := s.repo.ReadOne(ownerID, collectionID); err != nil {
		return nil, err
	}
	docs, err := s.repo.DocumentsByCollection(collectionID, skip, limit)
	if err != nil {
		return nil, validationError(err)
	}
	return docs, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
