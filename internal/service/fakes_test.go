package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"Hermes-Gateway/internal/llm"
	"Hermes-Gateway/internal/storage"

	"github.com/google/uuid"
)

// fakeStorage 内存对象存储
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Put(_ context.Context, ownerID uint, docID uuid.UUID, src io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("s3://test-bucket/%d/%s", ownerID, docID)

	s.mu.Lock()
	s.objects[url] = data
	s.mu.Unlock()
	return url, nil
}

func (s *fakeStorage) Stream(_ context.Context, objectURL string) (io.ReadCloser, error) {
	s.mu.Lock()
	data, ok := s.objects[objectURL]
	s.mu.Unlock()
	if !ok {
		return nil, &storage.StorageError{Op: "stream", Err: fmt.Errorf("no such object: %s", objectURL)}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// fakeLLM 可编程的外部 API 假实现，记录所有调用
type fakeLLM struct {
	mu sync.Mutex

	vectorStores        []string // 已创建的
	deletedVectorStores []string
	assistants          map[string]string // assistantID -> vectorStoreID
	deletedAssistants   []string
	batches             [][]string // 每批上传的文件名

	threads      []string
	messages     map[string][]string // threadID -> 用户消息
	runStatus    map[string]string   // LatestRunStatus 返回值
	runErr       map[string]error    // LatestRunStatus 错误
	finalStatus  string              // RunAndPoll 终态，空则 completed
	answer       string              // LatestAssistantMessage 返回值
	uploadErr    error               // UploadVectorStoreBatch 的错误（所有批）
	failAtBatch  int                 // 第 n 批失败（1-based），0 表示不失败
	assistantErr error
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{
		assistants: make(map[string]string),
		messages:   make(map[string][]string),
		runStatus:  make(map[string]string),
		runErr:     make(map[string]error),
	}
}

func (f *fakeLLM) CreateVectorStore(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("vs_%d", len(f.vectorStores)+1)
	f.vectorStores = append(f.vectorStores, id)
	return id, nil
}

func (f *fakeLLM) UploadVectorStoreBatch(_ context.Context, _ string, files []llm.FilePayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}
	f.batches = append(f.batches, names)

	if f.uploadErr != nil {
		return f.uploadErr
	}
	if f.failAtBatch > 0 && len(f.batches) == f.failAtBatch {
		return &llm.BatchIngestError{Unresolved: names}
	}
	return nil
}

func (f *fakeLLM) DeleteVectorStore(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedVectorStores = append(f.deletedVectorStores, id)
	return nil
}

func (f *fakeLLM) CreateAssistant(_ context.Context, vectorStoreID string, _ llm.AssistantConfig) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assistantErr != nil {
		return "", f.assistantErr
	}
	id := fmt.Sprintf("asst_%d", len(f.assistants)+1)
	f.assistants[id] = vectorStoreID
	return id, nil
}

func (f *fakeLLM) DeleteAssistant(_ context.Context, assistantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedAssistants = append(f.deletedAssistants, assistantID)
	if vs, ok := f.assistants[assistantID]; ok {
		f.deletedVectorStores = append(f.deletedVectorStores, vs)
		delete(f.assistants, assistantID)
	}
	return nil
}

func (f *fakeLLM) LatestRunStatus(_ context.Context, threadID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.runErr[threadID]; err != nil {
		return "", err
	}
	return f.runStatus[threadID], nil
}

func (f *fakeLLM) CreateThread(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("thread_%d", len(f.threads)+1)
	f.threads = append(f.threads, id)
	return id, nil
}

func (f *fakeLLM) AddUserMessage(_ context.Context, threadID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[threadID] = append(f.messages[threadID], content)
	return nil
}

func (f *fakeLLM) RunAndPoll(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finalStatus == "" {
		return llm.RunStatusCompleted, nil
	}
	return f.finalStatus, nil
}

func (f *fakeLLM) LatestAssistantMessage(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.answer, nil
}

func bytesReader(s string) io.Reader {
	return bytes.NewReader([]byte(s))
}

var _ llm.Client = (*fakeLLM)(nil)
var _ storage.DocumentStorage = (*fakeStorage)(nil)
