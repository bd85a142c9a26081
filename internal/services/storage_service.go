// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/exportplatform/export-api/internal/config"
)

const (
	MaxImageSize    = 5 * 1024 * 1024
	MaxDocumentSize = 10 * 1024 * 1024
)

var imageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

var documentTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.oasis.opendocument.text",
	"application/vnd.oasis.opendocument.spreadsheet",
	"application/zip",
	"text/plain",
	"text/csv",
	"image/jpeg",
	"image/png",
}

// ObjectStore is the backend that keeps uploaded bytes.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

type StorageService struct {
	store ObjectStore
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	switch cfg.Storage.Driver {
	case "s3":
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(cfg.AWS.Region),
			Credentials: credentials.NewStaticCredentials(
				cfg.AWS.AccessKeyID,
				cfg.AWS.SecretAccessKey,
				"",
			),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		return NewStorageServiceWithStore(&s3Store{client: s3.New(sess), cfg: cfg.AWS}), nil

	case "gcs":
		var opts []option.ClientOption
		if cfg.GCS.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GCS.CredentialsFile))
		}
		client, err := gcs.NewClient(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCS client: %w", err)
		}
		return NewStorageServiceWithStore(&gcsStore{client: client, cfg: cfg.GCS}), nil

	default:
		return NewStorageServiceWithStore(NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL)), nil
	}
}

func NewStorageServiceWithStore(store ObjectStore) *StorageService {
	return &StorageService{store: store}
}

func (s *StorageService) GetDefaultUploadOptions(category string) UploadOptions {
	switch category {
	case "logo":
		return UploadOptions{Folder: "logos", MaxSize: MaxImageSize, AllowedTypes: imageTypes}
	case "avatar":
		return UploadOptions{Folder: "avatars", MaxSize: MaxImageSize, AllowedTypes: imageTypes}
	case "gallery":
		return UploadOptions{Folder: "gallery", MaxSize: MaxImageSize, AllowedTypes: imageTypes}
	case "documents":
		return UploadOptions{Folder: "documents", MaxSize: MaxDocumentSize, AllowedTypes: documentTypes}
	default:
		return UploadOptions{Folder: "general", MaxSize: MaxImageSize, AllowedTypes: imageTypes}
	}
}

// UploadFile validates the size and sniffed content type of an uploaded
// part before handing it to the store.
func (s *StorageService) UploadFile(ctx context.Context, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error) {
	if header == nil {
		return nil, ErrFileRequired
	}
	if options.MaxSize > 0 && header.Size > options.MaxSize {
		return nil, ErrFileTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	return s.Upload(ctx, file, options)
}

func (s *StorageService) Upload(ctx context.Context, r io.Reader, options UploadOptions) (*UploadResult, error) {
	limit := options.MaxSize
	if limit <= 0 {
		limit = MaxDocumentSize
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrFileRequired
	}

	mtype := mimetype.Detect(data)
	if !typeAllowed(mtype, options.AllowedTypes) {
		return nil, ErrFileTypeRejected
	}

	key := generateFileName(options.Folder, mtype.Extension())
	contentType := strings.SplitN(mtype.String(), ";", 2)[0]

	url, err := s.store.Put(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	return &UploadResult{
		URL:      url,
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) DeleteFile(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.store.Delete(ctx, key)
}

// typeAllowed matches the detected type itself. Parents are not consulted:
// html and svg descend from text/plain, executables from generic containers.
func typeAllowed(mtype *mimetype.MIME, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if mtype.Is(a) {
			return true
		}
	}
	return false
}

func generateFileName(folder, ext string) string {
	filename := uuid.New().String() + ext
	if folder != "" {
		return folder + "/" + filename
	}
	return filename
}

// Local filesystem
type localStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) ObjectStore {
	return &localStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (l *localStore) path(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	clean := filepath.Clean("/" + key)
	return filepath.Join(l.dir, filepath.FromSlash(clean)), nil
}

func (l *localStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	p, err := l.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", err
	}
	return l.baseURL + "/" + key, nil
}

func (l *localStore) Delete(_ context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Amazon S3
type s3Store struct {
	client *s3.S3
	cfg    config.AWSConfig
}

func (s *s3Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	if s.cfg.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.CloudFrontURL, "/"), key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.S3Bucket, s.cfg.Region, key), nil
}

func (s *s3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// Google Cloud Storage
type gcsStore struct {
	client *gcs.Client
	cfg    config.GCSConfig
}

func (g *gcsStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	w := g.client.Bucket(g.cfg.Bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload to GCS: %w", err)
	}

	if g.cfg.PublicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(g.cfg.PublicURL, "/"), key), nil
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.cfg.Bucket, key), nil
}

func (g *gcsStore) Delete(ctx context.Context, key string) error {
	err := g.client.Bucket(g.cfg.Bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete file from GCS: %w", err)
	}
	return nil
}
