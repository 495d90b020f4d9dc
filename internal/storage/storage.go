package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ErrStorage 对象存储错误的统一封装
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// DocumentStorage 文档对象存储抽象
// 对象命名: s3://{bucket}/{owner_id}/{document_id}
type DocumentStorage interface {
	// Put 上传文档内容，返回对象 URL
	Put(ctx context.Context, ownerID uint, docID uuid.UUID, src io.Reader, size int64, contentType string) (string, error)
	// Stream 按 URL 取回文档内容流
	Stream(ctx context.Context, objectURL string) (io.ReadCloser, error)
}

// MinioStorage 基于 MinIO/S3 的实现
type MinioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorage(client *minio.Client, bucket string) *MinioStorage {
	return &MinioStorage{client: client, bucket: bucket}
}

func (s *MinioStorage) Put(ctx context.Context, ownerID uint, docID uuid.UUID, src io.Reader, size int64, contentType string) (string, error) {
	objectName := fmt.Sprintf("%d/%s", ownerID, docID)

	_, err := s.client.PutObject(ctx, s.bucket, objectName, src, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", &StorageError{Op: "put", Err: err}
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, objectName), nil
}

func (s *MinioStorage) Stream(ctx context.Context, objectURL string) (io.ReadCloser, error) {
	bucket, key, err := ParseObjectURL(objectURL)
	if err != nil {
		return nil, &StorageError{Op: "stream", Err: err}
	}

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, &StorageError{Op: "stream", Err: err}
	}
	return obj, nil
}

// ParseObjectURL 解析 s3://{bucket}/{key} 形式的对象 URL
func ParseObjectURL(objectURL string) (bucket, key string, err error) {
	u, err := url.Parse(objectURL)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid object url: %s", objectURL)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}
