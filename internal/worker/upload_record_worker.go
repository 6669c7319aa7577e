package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"docintake/internal/model"
	"docintake/internal/platform/rabbitmq"
)

type UploadRecordSaver interface {
	Save(ctx context.Context, record *model.UploadRecord) error
}

// UploadRecordWorker consumes upload events and persists them as audit records.
type UploadRecordWorker struct {
	conn      *amqp.Connection
	repo      UploadRecordSaver
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewUploadRecordWorker(conn *amqp.Connection, repo UploadRecordSaver, queueName string, logger *slog.Logger) *UploadRecordWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadRecordWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *UploadRecordWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *UploadRecordWorker) handle(ctx context.Context, d amqp.Delivery) {
	requeue, err := w.process(ctx, d.Body)
	if err != nil {
		requeue = requeue && !d.Redelivered
		w.logger.Error("upload event not persisted", "requeue", requeue, "error", err)
		_ = d.Nack(false, requeue)
		return
	}
	_ = d.Ack(false)
}

// process decodes and saves one event. Undecodable payloads are dropped; save
// failures are retried once by redelivery.
func (w *UploadRecordWorker) process(ctx context.Context, body []byte) (requeue bool, err error) {
	var record model.UploadRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return false, fmt.Errorf("decode upload event failed: %w", err)
	}
	if record.ObjectKey == "" || record.Status == "" {
		return false, fmt.Errorf("upload event is missing object key or status")
	}
	// Ids from the producer side mean nothing in this table.
	record.ID = 0
	if err := w.repo.Save(ctx, &record); err != nil {
		return true, err
	}
	return false, nil
}

func (w *UploadRecordWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
