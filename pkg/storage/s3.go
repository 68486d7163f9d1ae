package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/yourusername/storefront-api/internal/config"
)

// ObjectStorage сохраняет файлы и возвращает их публичный URL
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// S3Storage реализует ObjectStorage поверх S3-совместимого бакета
type S3Storage struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3Storage создаёт клиент S3 по настройкам из конфигурации
func NewS3Storage(cfg config.StorageConfig) (*S3Storage, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("incomplete storage config: bucket/access_key_id/secret_access_key are required")
	}

	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		UsePathStyle: cfg.PathStyle,
	}
	if endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"); endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		opts.BaseEndpoint = aws.String(endpoint)
	}

	return &S3Storage{
		client:        s3.New(opts),
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Put загружает объект и возвращает его публичный URL
func (s *S3Storage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key = NormalizeKey(key)
	if key == "" {
		return "", fmt.Errorf("invalid object key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.publicBaseURL + "/" + key, nil
}

// Delete удаляет объект
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	key = NormalizeKey(key)
	if key == "" {
		return fmt.Errorf("invalid object key")
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

// NormalizeKey убирает ведущие слэши и обратные слэши из ключа объекта
func NormalizeKey(key string) string {
	key = strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	key = strings.TrimLeft(key, "/")
	if strings.Contains(key, "..") {
		return ""
	}
	return key
}

// NoopStorage используется, когда хранилище не настроено: загрузки отклоняются
type NoopStorage struct{}

func (NoopStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return "", fmt.Errorf("object storage is not configured")
}

func (NoopStorage) Delete(ctx context.Context, key string) error {
	return nil
}
