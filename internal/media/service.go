package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/printforge/printshop-backend/pkg/config"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/enums"
	pkgerrors "github.com/printforge/printshop-backend/pkg/errors"
	"gorm.io/gorm"
)

type gcsClient interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, object string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes upload presigning and media lifecycle operations.
type Service interface {
	PresignUpload(ctx context.Context, input PresignInput) (*PresignOutput, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Media, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo      Repository
	tx        txRunner
	gcs       gcsClient
	bucket    string
	uploadTTL time.Duration
	limits    config.MediaConfig
}

// NewService constructs a media service backed by the repository and GCS signer.
func NewService(repo Repository, tx txRunner, gcs gcsClient, gcsCfg config.GCSConfig, limits config.MediaConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gcs == nil {
		return nil, fmt.Errorf("gcs client required")
	}
	if gcsCfg.BucketName == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	if gcsCfg.UploadURLExpiry <= 0 {
		return nil, fmt.Errorf("upload url expiry must be positive")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		gcs:       gcs,
		bucket:    gcsCfg.BucketName,
		uploadTTL: gcsCfg.UploadURLExpiry,
		limits:    limits,
	}, nil
}

// PresignInput models the payload required to request an upload URL.
type PresignInput struct {
	Kind      enums.MediaKind
	MimeType  string
	FileName  string
	SizeBytes int64
}

// PresignOutput contains the data returned to the client after creating a media record.
type PresignOutput struct {
	MediaID      uuid.UUID `json:"media_id"`
	ObjectKey    string    `json:"object_key"`
	SignedPUTURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *service) PresignUpload(ctx context.Context, input PresignInput) (*PresignOutput, error) {
	if input.Kind == "" || !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}

	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if maxBytes := s.maxUploadBytes(input.Kind); input.SizeBytes > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size_bytes must be at most %d bytes", maxBytes))
	}

	mimeType := strings.TrimSpace(input.MimeType)
	if mimeType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type is required")
	}
	if !isAllowedMime(input.Kind, mimeType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type not allowed for media kind")
	}

	mediaID := uuid.New()
	objectKey := buildObjectKey(input.Kind, mediaID, fileName)

	mediaRow := &models.Media{
		ID:          mediaID,
		Kind:        input.Kind,
		ObjectKey:   objectKey,
		ContentType: mimeType,
		FileName:    fileName,
		SizeBytes:   input.SizeBytes,
	}

	if _, err := s.repo.Create(ctx, mediaRow); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist media row")
	}

	expiresAt := time.Now().Add(s.uploadTTL)
	signedURL, err := s.gcs.SignedURL(s.bucket, objectKey, mimeType, s.uploadTTL)
	if err != nil {
		_ = s.repo.Delete(ctx, mediaID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignOutput{
		MediaID:      mediaID,
		ObjectKey:    objectKey,
		SignedPUTURL: signedURL,
		ContentType:  mimeType,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media id required")
	}
	media, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media")
	}
	return media, nil
}

// Delete removes the media row and its bucket object. Media still referenced
// by a product or project cannot be removed.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "media id required")
	}

	var objectKey string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		media, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media")
		}

		refs, err := repo.CountReferences(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count media references")
		}
		if refs > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "media is still referenced and cannot be deleted")
		}

		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete media row")
		}
		objectKey = media.ObjectKey
		return nil
	})
	if err != nil {
		return err
	}

	// Bucket cleanup happens after commit; a failed delete leaves an
	// orphaned object, never a dangling row.
	if err := s.gcs.DeleteObject(ctx, s.bucket, objectKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete bucket object")
	}
	return nil
}

func (s *service) maxUploadBytes(kind enums.MediaKind) int64 {
	mb := s.limits.ImageMaxUploadMB
	if kind == enums.MediaKindProjectModel {
		mb = s.limits.ModelMaxUploadMB
	}
	return int64(mb) * 1024 * 1024
}

func buildObjectKey(kind enums.MediaKind, id uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("media/%s/%s/%s", kind, id.String(), cleanName)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
