package mongo

import (
	"context"
	"errors"
	"staydesk/internal/storage"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	labelTransientTransaction = "TransientTransactionError"
	labelRetryableWrite       = "RetryableWriteError"
	labelUnknownCommitResult  = "UnknownTransactionCommitResult"
	codeWriteConflict         = 112
)

// classify marks driver failures that are worth another attempt.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	// the driver has already retried the commit itself; a fresh transaction
	// could duplicate a write that landed
	if hasLabel(err, labelUnknownCommitResult) {
		return storage.OutcomeUnknown(err)
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return storage.Transient(err)
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		if se.HasErrorLabel(labelTransientTransaction) ||
			se.HasErrorLabel(labelRetryableWrite) ||
			se.HasErrorCode(codeWriteConflict) {
			return storage.Transient(err)
		}
	}
	return err
}

func hasLabel(err error, label string) bool {
	var le interface{ HasErrorLabel(string) bool }
	return errors.As(err, &le) && le.HasErrorLabel(label)
}
