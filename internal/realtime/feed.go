package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	model "task-manager.com/task-manager/internal/models"
)

// Feed carries change notifications from the services that write rows to
// the clients that cache them.
type Feed interface {
	Publish(ctx context.Context, change model.Change) error

	// Subscribe returns the changes of userID's rows. The channel is closed
	// once ctx is done.
	Subscribe(ctx context.Context, userID string) (<-chan model.Change, error)
}

const subscriberBuffer = 16

func encodeChange(change model.Change) (string, error) {
	payload, err := json.Marshal(change)
	if err != nil {
		return "", fmt.Errorf("encode change: %w", err)
	}
	return string(payload), nil
}

func decodeChange(payload string) (model.Change, error) {
	var change model.Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return model.Change{}, fmt.Errorf("decode change: %w", err)
	}
	if change.Table == "" {
		return model.Change{}, fmt.Errorf("decode change: missing table")
	}
	return change, nil
}

// offer delivers change without blocking. A full buffer already holds a
// pending refetch signal, so dropping is harmless.
func offer(ch chan<- model.Change, change model.Change) bool {
	select {
	case ch <- change:
		return true
	default:
		return false
	}
}
