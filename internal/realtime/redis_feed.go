package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	model "task-manager.com/task-manager/internal/models"
)

// RedisFeed shares changes between API instances over one Redis pub/sub
// channel. Every instance receives every change and filters by user.
type RedisFeed struct {
	client  rueidis.Client
	channel string
	log     *zap.SugaredLogger
}

func NewRedisFeed(client rueidis.Client, channel string, log *zap.SugaredLogger) *RedisFeed {
	return &RedisFeed{
		client:  client,
		channel: channel,
		log:     log,
	}
}

func (r *RedisFeed) Publish(ctx context.Context, change model.Change) error {
	payload, err := encodeChange(change)
	if err != nil {
		return err
	}

	cmd := r.client.B().Publish().Channel(r.channel).Message(payload).Build()
	return r.client.Do(ctx, cmd).Error()
}

// Subscribe returns once Redis has confirmed the subscription, so any change
// published after it returns is delivered. Each subscriber holds its own
// dedicated connection until ctx is done.
func (r *RedisFeed) Subscribe(ctx context.Context, userID string) (<-chan model.Change, error) {
	conn, release := r.client.Dedicate()

	var (
		mu     sync.Mutex
		closed bool
		ch     = make(chan model.Change, subscriberBuffer)
	)
	confirmed := make(chan struct{})
	var confirmOnce sync.Once

	wait := conn.SetPubSubHooks(rueidis.PubSubHooks{
		OnMessage: func(msg rueidis.PubSubMessage) {
			change, err := decodeChange(msg.Message)
			if err != nil {
				r.log.Warnw("dropping malformed change", "channel", msg.Channel, "error", err)
				return
			}
			if change.UserID != userID {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if !closed {
				offer(ch, change)
			}
		},
		OnSubscription: func(sub rueidis.PubSubSubscription) {
			if sub.Kind == "subscribe" && sub.Channel == r.channel {
				confirmOnce.Do(func() { close(confirmed) })
			}
		},
	})

	if err := conn.Do(ctx, conn.B().Subscribe().Channel(r.channel).Build()).Error(); err != nil {
		release()
		return nil, fmt.Errorf("subscribe to %s: %w", r.channel, err)
	}

	select {
	case <-confirmed:
	case err := <-wait:
		release()
		if err == nil {
			err = errors.New("connection closed")
		}
		return nil, fmt.Errorf("subscribe to %s: %w", r.channel, err)
	case <-ctx.Done():
		release()
		return nil, ctx.Err()
	}

	go func() {
		defer release()

		select {
		case <-ctx.Done():
			conn.SetPubSubHooks(rueidis.PubSubHooks{})
		case err := <-wait:
			if err != nil {
				r.log.Errorw("redis subscription ended", "channel", r.channel, "error", err)
			}
		}

		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	return ch, nil
}
