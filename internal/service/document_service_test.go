package service

import (
	"context"
	"io"
	"testing"
	"time"

	"Hermes-Gateway/internal/dto"
	"Hermes-Gateway/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type documentFixture struct {
	collectionFixture
	svc *DocumentService
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()

	cf := newCollectionFixture(t)
	return &documentFixture{
		collectionFixture: *cf,
		svc:               NewDocumentService(cf.docRepo, cf.store, cf.svc),
	}
}

func TestDocumentUpload(t *testing.T) {
	f := newDocumentFixture(t)

	docs, err := f.svc.Upload(context.Background(), f.owner.ID, []UploadFile{
		{Name: "report.pdf", ContentType: "application/pdf", Size: 5, Reader: bytesReader("hello")},
		{Name: "notes.txt", ContentType: "text/plain", Size: 5, Reader: bytesReader("world")},
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	for _, doc := range docs {
		assert.NotEqual(t, uuid.Nil, doc.ID)
		assert.Equal(t, f.owner.ID, doc.OwnerID)
		assert.Contains(t, doc.ObjectStoreURL, "s3://")
		assert.Nil(t, doc.DeletedAt)
	}

	// 内容能按 URL 取回
	rc, doc, err := f.svc.Stream(context.Background(), f.owner.ID, docs[0].ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "report.pdf", doc.Fname)
}

func TestDocumentUploadEmpty(t *testing.T) {
	f := newDocumentFixture(t)

	_, err := f.svc.Upload(context.Background(), f.owner.ID, nil)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDocumentListExcludesDeleted(t *testing.T) {
	f := newDocumentFixture(t)

	docs, err := f.svc.Upload(context.Background(), f.owner.ID, []UploadFile{
		{Name: "a.txt", Size: 1, Reader: bytesReader("a")},
		{Name: "b.txt", Size: 1, Reader: bytesReader("b")},
	})
	require.NoError(t, err)

	_, err = f.svc.Remove(context.Background(), f.owner.ID, []uuid.UUID{docs[0].ID})
	require.NoError(t, err)

	// 列表只剩未删除的
	listed, err := f.svc.List(f.owner.ID, 0, 100)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "b.txt", listed[0].Fname)

	// 直查仍能看到删除标记
	stat, err := f.svc.Stat(f.owner.ID, docs[0].ID)
	require.NoError(t, err)
	require.NotNil(t, stat.DeletedAt)
	assert.True(t, stat.IsDeleted())
	assert.False(t, stat.DeletedAt.Before(stat.CreatedAt), "删除时间不能早于创建时间")
}

func TestDocumentListPaginationValidation(t *testing.T) {
	f := newDocumentFixture(t)

	var verr *ValidationError
	_, err := f.svc.List(f.owner.ID, -1, 10)
	assert.ErrorAs(t, err, &verr)
	_, err = f.svc.List(f.owner.ID, 0, -1)
	assert.ErrorAs(t, err, &verr)
}

func TestDocumentRemoveCascadesCollections(t *testing.T) {
	f := newDocumentFixture(t)

	docs, err := f.svc.Upload(context.Background(), f.owner.ID, []UploadFile{
		{Name: "a.txt", Size: 1, Reader: bytesReader("a")},
	})
	require.NoError(t, err)

	// 文档进了一个 Collection
	req := dto.CreateCollectionReq{
		Documents:    []uuid.UUID{docs[0].ID},
		Model:        "gpt-4o",
		Instructions: "x",
	}
	payload, err := f.collectionFixture.svc.StartCreate(f.owner.ID, req, "/collections/create")
	require.NoError(t, err)
	collectionID := uuid.MustParse(payload.Key)

	// 删文档要先同步删掉引用它的 Collection（外部资源一起回收）
	deleted, err := f.svc.Remove(context.Background(), f.owner.ID, []uuid.UUID{docs[0].ID})
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.NotNil(t, deleted[0].DeletedAt)

	assert.Len(t, f.llm.deletedAssistants, 1)
	assert.Contains(t, f.llm.deletedVectorStores, "vs_1")

	collection, err := f.collectionFixture.svc.Info(f.owner.ID, collectionID)
	require.NoError(t, err)
	assert.NotNil(t, collection.DeletedAt)
}

func TestDocumentRemoveUnknown(t *testing.T) {
	f := newDocumentFixture(t)

	_, err := f.svc.Remove(context.Background(), f.owner.ID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, repository.ErrDocumentNotFound)
}

func TestDocumentOwnershipIsolation(t *testing.T) {
	f := newDocumentFixture(t)
	stranger := seedUser(t, f.db, "stranger@acme.io")

	docs, err := f.svc.Upload(context.Background(), f.owner.ID, []UploadFile{
		{Name: "a.txt", Size: 1, Reader: bytesReader("a")},
	})
	require.NoError(t, err)

	_, err = f.svc.Stat(stranger.ID, docs[0].ID)
	assert.ErrorIs(t, err, repository.ErrDocumentNotFound)

	listed, err := f.svc.List(stranger.ID, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestDocumentTimestamps(t *testing.T) {
	f := newDocumentFixture(t)

	before := time.Now().Add(-time.Second)
	docs, err := f.svc.Upload(context.Background(), f.owner.ID, []UploadFile{
		{Name: "a.txt", Size: 1, Reader: bytesReader("a")},
	})
	require.NoError(t, err)
	assert.True(t, docs[0].CreatedAt.After(before))
}
