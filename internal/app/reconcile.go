package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docintake/internal/metrics"
	"docintake/internal/model"
	"docintake/internal/objectstore"
)

type UploadRecordStore interface {
	ListByStatus(ctx context.Context, status string, limit int) ([]model.UploadRecord, error)
	GetByObjectKey(ctx context.Context, objectKey string) (*model.UploadRecord, error)
	MarkComplete(ctx context.Context, objectKey string) error
}

// Reconciler finishes partial uploads recorded in the audit table by writing their
// stored sidecar documents.
type Reconciler struct {
	records UploadRecordStore
	store   ObjectStore
	metrics *metrics.Metrics
	logger  *slog.Logger
	batch   int
}

type ReconcileReport struct {
	Scanned   int      `json:"scanned"`
	Completed int      `json:"completed"`
	Failed    []string `json:"failed"`
}

func NewReconciler(records UploadRecordStore, store ObjectStore, m *metrics.Metrics, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{records: records, store: store, metrics: m, logger: logger, batch: 100}
}

// List returns audit records, optionally filtered by status.
func (r *Reconciler) List(ctx context.Context, status string, limit int) ([]model.UploadRecord, error) {
	switch status {
	case "", model.UploadStatusComplete, model.UploadStatusPartial:
	default:
		return nil, ErrInvalidInput
	}
	return r.records.ListByStatus(ctx, status, limit)
}

// Get returns the audit record of one object key. ErrInvalidInput when none exists.
func (r *Reconciler) Get(ctx context.Context, objectKey string) (*model.UploadRecord, error) {
	if objectKey == "" {
		return nil, fmt.Errorf("%w: key is required", ErrInvalidInput)
	}
	rec, err := r.records.GetByObjectKey(ctx, objectKey)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: no upload recorded for %s", ErrInvalidInput, objectKey)
	}
	return rec, nil
}

func (r *Reconciler) Run(ctx context.Context) (*ReconcileReport, error) {
	pending, err := r.records.ListByStatus(ctx, model.UploadStatusPartial, r.batch)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{Scanned: len(pending), Failed: []string{}}
	for _, rec := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := r.complete(ctx, rec); err != nil {
			r.metrics.ObserveReconcile(false)
			r.logger.Warn("reconcile upload failed", "object_key", rec.ObjectKey, "error", err)
			report.Failed = append(report.Failed, rec.ObjectKey)
			continue
		}
		r.metrics.ObserveReconcile(true)
		report.Completed++
	}
	r.logger.Info("reconcile finished", "scanned", report.Scanned, "completed", report.Completed, "failed", len(report.Failed))
	return report, nil
}

func (r *Reconciler) complete(ctx context.Context, rec model.UploadRecord) error {
	if len(rec.Metadata) == 0 {
		return errors.New("audit record has no metadata snapshot")
	}
	err := r.store.Put(ctx, objectstore.PutInput{
		Key:         rec.MetadataKey,
		Body:        []byte(rec.Metadata),
		ContentType: "application/json",
		NoOverwrite: true,
	})
	if err != nil && !errors.Is(err, objectstore.ErrObjectExists) {
		return &StoreError{Key: rec.MetadataKey, Err: err}
	}
	return r.records.MarkComplete(ctx, rec.ObjectKey)
}
