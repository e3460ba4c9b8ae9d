// Package services orchestrates the manifest, ledger and settings writes:
// validation, numbering, persistence and change publication.
package services

import (
	"context"

	"tripdesk/internal/amqp"
	applog "tripdesk/internal/log"
)

// Publisher announces record changes to the mirror worker.
type Publisher interface {
	PublishChange(ctx context.Context, msg *amqp.RecordChange) error
}

// notifier publishes after a write has been stored. Failures are logged and
// never returned: the record is already saved locally.
type notifier struct {
	publisher Publisher
	logger    *applog.Logger
}

func (n notifier) notify(ctx context.Context, collection, id, op string) {
	if n.publisher == nil {
		n.logger.DebugContext(ctx, "No publisher configured, skipping change message",
			applog.FieldCollection, collection)
		return
	}
	msg := amqp.NewRecordChange(collection, id, op)
	if err := n.publisher.PublishChange(ctx, msg); err != nil {
		n.logger.ErrorContext(ctx, "Failed to publish record change",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeNetwork,
			applog.FieldCollection, collection,
			applog.FieldRecordID, id,
			applog.FieldOperation, op)
	}
}
