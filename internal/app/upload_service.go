package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"docintake/internal/authz"
	"docintake/internal/identity"
	"docintake/internal/intake"
	"docintake/internal/metrics"
	"docintake/internal/model"
	"docintake/internal/objectstore"
	"docintake/internal/tenant"
)

type ObjectStore interface {
	Put(ctx context.Context, in objectstore.PutInput) error
}

// UploadEventPublisher forwards audit records to the persistence worker.
type UploadEventPublisher interface {
	Publish(ctx context.Context, record model.UploadRecord) error
}

type Clock func() time.Time

type UploadService struct {
	store     ObjectStore
	validator *intake.Validator
	publisher UploadEventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       Clock
}

type UploadInput struct {
	Profile  *identity.Profile
	Filename string
	Data     []byte
}

type UploadResult struct {
	Namespace   string                `json:"namespace"`
	ObjectKey   string                `json:"object_key"`
	MetadataKey string                `json:"metadata_key"`
	ContentType string                `json:"content_type"`
	Pages       int                   `json:"pages,omitempty"`
	Record      *UploadMetadataRecord `json:"metadata"`
}

func NewUploadService(
	store ObjectStore,
	validator *intake.Validator,
	publisher UploadEventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	now Clock,
) *UploadService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadService{
		store:     store,
		validator: validator,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       now,
	}
}

// Upload stores the document and then its metadata sidecar. Nothing is written unless the
// profile is complete, its role may upload and the file passes validation.
func (s *UploadService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	p := in.Profile
	if p == nil || !p.Authenticated() {
		s.metrics.ObserveUpload(metrics.OutcomeDenied, 0)
		return nil, ErrProfileIncomplete
	}
	if !authz.CanUpload(p.Role) {
		s.metrics.ObserveUpload(metrics.OutcomeDenied, 0)
		s.logger.Warn("upload denied", "user_id", p.UserID, "role", p.Role, "organization", p.Organization)
		return nil, fmt.Errorf("%w: role %s may not upload", ErrPermissionDenied, p.Role)
	}

	inspection, err := s.validator.Validate(in.Filename, in.Data)
	if err != nil {
		s.metrics.ObserveUpload(metrics.OutcomeRejected, 0)
		return nil, err
	}

	at := s.now()
	namespace := tenant.Namespace(p.Organization, p.Department)
	objectName := tenant.ObjectName(in.Filename, at)
	objectKey := tenant.ObjectKey(namespace, objectName)
	metadataKey := tenant.MetadataKey(namespace, objectName)
	size := int64(len(in.Data))

	record := BuildMetadataRecord(*p, in.Filename, size, at)
	sidecar, err := record.encode()
	if err != nil {
		return nil, err
	}

	err = s.store.Put(ctx, objectstore.PutInput{
		Key:         objectKey,
		Body:        in.Data,
		ContentType: inspection.ContentType,
		Metadata:    record.objectTags(),
		NoOverwrite: true,
	})
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectExists) {
			s.metrics.ObserveUpload(metrics.OutcomeCollision, 0)
			return nil, fmt.Errorf("%w: %s", ErrKeyCollision, objectKey)
		}
		s.metrics.ObserveUpload(metrics.OutcomeStoreFailed, 0)
		s.logger.Error("object write failed", "key", objectKey, "error", err)
		return nil, &StoreError{Key: objectKey, Err: err}
	}

	err = s.store.Put(ctx, objectstore.PutInput{
		Key:         metadataKey,
		Body:        sidecar,
		ContentType: "application/json",
		NoOverwrite: true,
	})
	if err != nil {
		s.metrics.ObserveUpload(metrics.OutcomePartial, size)
		s.logger.Error("metadata write failed; upload is partial",
			"object_key", objectKey, "metadata_key", metadataKey, "error", err)
		s.publish(ctx, auditRecord(objectKey, metadataKey, inspection.ContentType, model.UploadStatusPartial, record, sidecar))
		return nil, &PartialUploadError{
			ObjectKey:   objectKey,
			MetadataKey: metadataKey,
			ContentType: inspection.ContentType,
			SizeBytes:   size,
			Record:      record,
			Err:         err,
		}
	}

	s.metrics.ObserveUpload(metrics.OutcomeStored, size)
	s.logger.Info("upload stored", "object_key", objectKey, "user_id", p.UserID, "size_bytes", size)
	s.publish(ctx, auditRecord(objectKey, metadataKey, inspection.ContentType, model.UploadStatusComplete, record, sidecar))

	return &UploadResult{
		Namespace:   namespace,
		ObjectKey:   objectKey,
		MetadataKey: metadataKey,
		ContentType: inspection.ContentType,
		Pages:       inspection.Pages,
		Record:      record,
	}, nil
}

// RetryMetadata writes the sidecar of a partial upload again. A sidecar that is already
// present counts as success.
func (s *UploadService) RetryMetadata(ctx context.Context, partial *PartialUploadError) error {
	if partial == nil || partial.Record == nil {
		return ErrInvalidInput
	}
	sidecar, err := partial.Record.encode()
	if err != nil {
		return err
	}
	err = s.store.Put(ctx, objectstore.PutInput{
		Key:         partial.MetadataKey,
		Body:        sidecar,
		ContentType: "application/json",
		NoOverwrite: true,
	})
	if err != nil && !errors.Is(err, objectstore.ErrObjectExists) {
		return &StoreError{Key: partial.MetadataKey, Err: err}
	}

	s.logger.Info("partial upload completed", "object_key", partial.ObjectKey)
	s.publish(ctx, auditRecord(partial.ObjectKey, partial.MetadataKey, partial.ContentType, model.UploadStatusComplete, partial.Record, sidecar))
	return nil
}

// Preview returns the namespace a profile's uploads land in.
func (s *UploadService) Preview(p *identity.Profile) (string, error) {
	if p == nil || !p.Authenticated() {
		return "", ErrProfileIncomplete
	}
	return tenant.Namespace(p.Organization, p.Department), nil
}

func (s *UploadService) publish(ctx context.Context, record model.UploadRecord) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, record); err != nil {
		s.logger.Warn("publish upload event failed", "object_key", record.ObjectKey, "status", record.Status, "error", err)
	}
}
