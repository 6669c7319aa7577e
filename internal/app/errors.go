package app

import (
	"errors"
	"fmt"

	"docintake/internal/identity"
	"docintake/internal/intake"
	"docintake/internal/session"
)

var (
	ErrProfileIncomplete       = identity.ErrProfileIncomplete
	ErrUserNotFound            = identity.ErrUserNotFound
	ErrPermissionDenied        = errors.New("permission denied")
	ErrStoreUnavailable        = errors.New("object store unavailable")
	ErrPartialUpload           = errors.New("object stored but metadata was not")
	ErrKeyCollision            = errors.New("storage key already exists")
	ErrUnsupportedFileType     = intake.ErrUnsupportedFileType
	ErrFileTooLarge            = intake.ErrFileTooLarge
	ErrEmptyFile               = intake.ErrEmptyFile
	ErrModelNotAllowed         = errors.New("model not allowed")
	ErrSessionNotFound         = session.ErrNotFound
	ErrCompletionRequestFailed = errors.New("completion request failed")
	ErrInvalidInput            = errors.New("invalid input")
)

// StoreError reports a write the object store refused or never answered.
type StoreError struct {
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// PartialUploadError means the document is stored but its sidecar is not.
// It carries everything RetryMetadata needs to finish the upload.
type PartialUploadError struct {
	ObjectKey   string
	MetadataKey string
	ContentType string
	SizeBytes   int64
	Record      *UploadMetadataRecord
	Err         error
}

func (e *PartialUploadError) Error() string {
	return fmt.Sprintf("partial upload %s: metadata %s not written: %v", e.ObjectKey, e.MetadataKey, e.Err)
}

func (e *PartialUploadError) Unwrap() error { return e.Err }

func (e *PartialUploadError) Is(target error) bool { return target == ErrPartialUpload }
