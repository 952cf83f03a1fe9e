package service

import (
	"context"
	"elearning_backend/internal/config"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// 播放地址签名有效期
const playbackURLExpiry = 2 * time.Hour

// StorageProvider 定义播放地址解析接口
type StorageProvider interface {
	PlaybackURL(ctx context.Context, objectKey string) (string, error)
}

// LocalStorageProvider 本地存储：对象由静态路由 /uploads 直接提供
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) PlaybackURL(ctx context.Context, objectKey string) (string, error) {
	return "/uploads/" + objectKey, nil
}

// MinioStorageProvider MinIO存储：签发限时的预签名 GET 地址
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) PlaybackURL(ctx context.Context, objectKey string) (string, error) {
	presigned, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, objectKey, playbackURLExpiry, url.Values{})
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	if cfg.Storage.Type == "minio" {
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err == nil {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

// PlaybackURL 解析内容的播放地址。已是完整 URL 的存量数据原样返回
func (s *StorageService) PlaybackURL(ctx context.Context, objectKey string) (string, error) {
	if strings.HasPrefix(objectKey, "http://") || strings.HasPrefix(objectKey, "https://") {
		return objectKey, nil
	}
	return s.Provider.PlaybackURL(ctx, objectKey)
}
