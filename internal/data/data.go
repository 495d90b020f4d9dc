package data

import (
	"context"
	"fmt"

	"Hermes-Gateway/internal/conf"
	"Hermes-Gateway/internal/logger"
	"Hermes-Gateway/internal/model"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Data 结构体持有所有数据库句柄
type Data struct {
	DB     *gorm.DB
	Minio  *minio.Client
	Redis  *redis.Client
	Bucket string
}

func NewData(cfg *conf.Config) (*Data, func(), error) {
	// 1. 连接 Postgres
	dsn := cfg.Data.DatabaseSource
	pgDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %v", err)
	}

	// 自动迁移表结构
	if err := AutoMigrate(pgDB); err != nil {
		return nil, nil, fmt.Errorf("schema migration failed: %v", err)
	}
	logger.L.Info("✅ 数据库表结构迁移完成")

	// 2. 初始化 Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Data.RedisAddr,
		Password: cfg.Data.RedisPassword,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, nil, fmt.Errorf("redis ping failed: %v", err)
	}
	logger.L.Info("✅ Redis 连接成功")

	// 3. 初始化 MinIO
	minioClient, err := minio.New(cfg.Data.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Data.MinioAccessKey, cfg.Data.MinioSecretKey, ""),
		Secure: false,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("minio init failed: %v", err)
	}

	// 自动创建 Bucket
	bucketName := cfg.Data.MinioBucket
	if bucketName == "" {
		bucketName = "hermes-docs" // 兜底
	}
	exists, err := minioClient.BucketExists(context.Background(), bucketName)
	if err != nil {
		return nil, nil, fmt.Errorf("minio bucket check failed: %v", err)
	}
	if !exists {
		if err := minioClient.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, nil, fmt.Errorf("minio bucket create failed: %v", err)
		}
		logger.L.Infof("🎉 MinIO Bucket '%s' 创建成功", bucketName)
	} else {
		logger.L.Infof("✅ MinIO 连接成功 (Bucket '%s' 已存在)", bucketName)
	}

	d := &Data{
		DB:     pgDB,
		Minio:  minioClient,
		Redis:  rdb,
		Bucket: bucketName,
	}

	// 构造清理函数
	cleanup := func() {
		logger.L.Info("正在关闭数据层资源...")
		if sqlDB, err := d.DB.DB(); err == nil {
			sqlDB.Close()
		}
		d.Redis.Close()
	}

	return d, cleanup, nil
}

// AutoMigrate 建表/改字段，测试里的 sqlite 也走这里保持一致
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Organization{},
		&model.Project{},
		&model.ProjectUser{},
		&model.APIKey{},
		&model.Credential{},
		&model.Document{},
		&model.Collection{},
		&model.DocumentCollection{},
		&model.ThreadResult{},
	)
}
