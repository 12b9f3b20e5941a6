package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	repository "task-manager.com/task-manager/internal/repositories"
)

// TokenJanitor periodically drops revocations of tokens that have expired.
type TokenJanitor struct {
	users    *repository.UserRepository
	interval time.Duration
	log      *zap.SugaredLogger

	wg   sync.WaitGroup
	stop chan struct{}
}

func NewTokenJanitor(users *repository.UserRepository, interval time.Duration, log *zap.SugaredLogger) *TokenJanitor {
	j := &TokenJanitor{
		users:    users,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
	}

	j.wg.Add(1)
	go j.loop()

	return j
}

func (j *TokenJanitor) loop() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.PurgeOnce(context.Background())
		case <-j.stop:
			return
		}
	}
}

func (j *TokenJanitor) PurgeOnce(ctx context.Context) {
	purged, err := j.users.PurgeRevoked(ctx, time.Now())
	if err != nil {
		j.log.Warnw("failed to purge revoked tokens", "error", err)
		return
	}
	if purged > 0 {
		j.log.Debugw("purged revoked tokens", "count", purged)
	}
}

func (j *TokenJanitor) Shutdown(ctx context.Context) {
	close(j.stop)

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		j.log.Info("token janitor shut down cleanly")
	case <-ctx.Done():
		j.log.Warn("token janitor shutdown timed out")
	}
}
