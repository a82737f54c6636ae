package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"ev-admin-backend/config"
	"ev-admin-backend/internal/model"
)

// PushChannelBookings is the notification channel booking updates go out on.
const PushChannelBookings = "bookings"

// WorkerPool delivers outbox events. Booking transactions write events
// durably; the pool's sweeper periodically enqueues unsent rows and the
// workers dispatch them, so delivery failures retry independently of the
// booking write path and are never rolled back into it.
type WorkerPool struct {
	size        int
	interval    time.Duration
	batch       int
	maxAttempts int
	jobs        chan int64
	kick        chan struct{}
	db          *gorm.DB
	mailer      Mailer
	push        PushSender
	logger      *log.Logger
}

// NewWorkerPool creates a worker pool over the given dispatchers.
func NewWorkerPool(cfg config.OutboxConfig, db *gorm.DB, mailer Mailer, push PushSender, logger *log.Logger) *WorkerPool {
	if logger == nil {
		logger = log.Default()
	}
	return &WorkerPool{
		size:        cfg.Workers,
		interval:    cfg.SweepInterval,
		batch:       cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
		jobs:        make(chan int64, cfg.BatchSize),
		kick:        make(chan struct{}, 1),
		db:          db,
		mailer:      mailer,
		push:        push,
		logger:      logger,
	}
}

// Start launches the worker goroutines and the sweeper.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
	go wp.sweeper(ctx)
}

// Wake asks the sweeper to run now instead of waiting for the next tick.
// Non-blocking; safe from any goroutine.
func (wp *WorkerPool) Wake() {
	select {
	case wp.kick <- struct{}{}:
	default:
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	for {
		select {
		case eventID := <-wp.jobs:
			wp.deliver(ctx, eventID)
		case <-ctx.Done():
			wp.logger.Printf("outbox worker %d shutting down", id)
			return
		}
	}
}

func (wp *WorkerPool) sweeper(ctx context.Context) {
	ticker := time.NewTicker(wp.interval)
	defer ticker.Stop()

	wp.sweep(ctx)
	for {
		select {
		case <-ticker.C:
			wp.sweep(ctx)
		case <-wp.kick:
			wp.sweep(ctx)
		case <-ctx.Done():
			wp.logger.Println("outbox sweeper shutting down")
			return
		}
	}
}

// sweep enqueues a batch of undelivered events, oldest first. Events that
// exhausted their attempts are left for operator inspection.
func (wp *WorkerPool) sweep(ctx context.Context) {
	var ids []int64
	err := wp.db.WithContext(ctx).Model(&model.OutboxEvent{}).
		Where("sent = ? AND attempts < ?", false, wp.maxAttempts).
		Order("id").
		Limit(wp.batch).
		Pluck("id", &ids).Error
	if err != nil {
		wp.logger.Printf("Error sweeping outbox: %v", err)
		return
	}

	for _, id := range ids {
		select {
		case wp.jobs <- id:
		case <-ctx.Done():
			return
		}
	}
}

// deliver dispatches one event. The attempt is claimed with a guarded update
// so an already-sent event is never re-dispatched.
func (wp *WorkerPool) deliver(ctx context.Context, eventID int64) {
	claim := wp.db.WithContext(ctx).
		Exec("UPDATE outbox_events SET attempts = attempts + 1 WHERE id = ? AND sent = ?", eventID, false)
	if claim.Error != nil {
		wp.logger.Printf("Error claiming outbox event %d: %v", eventID, claim.Error)
		return
	}
	if claim.RowsAffected == 0 {
		return
	}

	var ev model.OutboxEvent
	if err := wp.db.WithContext(ctx).Take(&ev, eventID).Error; err != nil {
		wp.logger.Printf("Error loading outbox event %d: %v", eventID, err)
		return
	}

	var err error
	switch ev.Channel {
	case model.OutboxChannelEmail:
		err = wp.mailer.Enqueue(ev.Recipient, ev.Heading, ev.Body)
	case model.OutboxChannelPush:
		err = wp.push.Send(ev.DeviceToken, ev.Heading, ev.Body, PushChannelBookings, ev.DeepLink)
	default:
		err = fmt.Errorf("unknown channel %q", ev.Channel)
	}

	if err != nil {
		wp.logger.Printf("Error delivering outbox event %d (%s): %v", ev.ID, ev.Channel, err)
		if uerr := wp.db.WithContext(ctx).Model(&model.OutboxEvent{}).
			Where("id = ?", ev.ID).
			Update("last_error", err.Error()).Error; uerr != nil {
			wp.logger.Printf("Error recording outbox failure for event %d: %v", ev.ID, uerr)
		}
		return
	}

	now := time.Now()
	if err := wp.db.WithContext(ctx).Model(&model.OutboxEvent{}).
		Where("id = ?", ev.ID).
		Updates(map[string]any{"sent": true, "sent_at": now, "last_error": ""}).Error; err != nil {
		wp.logger.Printf("Error marking outbox event %d sent: %v", ev.ID, err)
	}
}
