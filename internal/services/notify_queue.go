package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/config"
	"github.com/kanishkumar-karunakaran/task-management-system/pkg/logger"
)

const (
	TaskTypeNotify = "notify:task_status"
)

// NotifyTask is the payload handed to the queue when a task's status
// changed and tech leads should hear about it.
type NotifyTask struct {
	TaskID uint `json:"task_id"`
}

// NotifyQueue dispatches notification jobs. The async implementation
// rides asynq over Redis; the sync one runs jobs in-process.
type NotifyQueue interface {
	// Enqueue adds a job to the queue
	Enqueue(task *NotifyTask) error
	// SetProcessor sets the function jobs are handed to
	SetProcessor(processor func(context.Context, *NotifyTask) error)
	// IsAsync returns true if jobs are processed out of process
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

var (
	globalNotifyQueue NotifyQueue
	notifyQueueOnce   sync.Once
)

// InitNotifyQueue initializes the global queue based on config. Redis
// being unreachable falls back to the in-process queue.
func InitNotifyQueue(cfg *config.Config) NotifyQueue {
	notifyQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[NotifyQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalNotifyQueue = NewSyncQueue()
			} else {
				logger.Infof("[NotifyQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalNotifyQueue = queue
			}
		} else {
			logger.Infof("[NotifyQueue] Sync queue initialized (Redis disabled)")
			globalNotifyQueue = NewSyncQueue()
		}
	})
	return globalNotifyQueue
}

// GetNotifyQueue returns the global queue instance.
func GetNotifyQueue() NotifyQueue {
	return globalNotifyQueue
}

// AsyncQueue implements NotifyQueue using asynq (Redis-based).
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates a new Redis-based async queue and verifies the
// connection before returning it.
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue adds a notification job to the async queue.
func (q *AsyncQueue) Enqueue(task *NotifyTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeNotify, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[AsyncQueue] Job enqueued: id=%s, queue=%s", info.ID, info.Queue)
	return nil
}

// SetProcessor is a no-op for the async queue; the worker owns the
// processor there.
func (q *AsyncQueue) SetProcessor(func(context.Context, *NotifyTask) error) {}

// IsAsync returns true for async queue.
func (q *AsyncQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client.
func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue implements NotifyQueue with in-process delivery (no Redis).
type SyncQueue struct {
	mu        sync.RWMutex
	processor func(context.Context, *NotifyTask) error
}

// NewSyncQueue creates a new in-process queue.
func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function jobs are handed to.
func (q *SyncQueue) SetProcessor(processor func(context.Context, *NotifyTask) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.processor = processor
}

// Enqueue runs the job in a goroutine so the HTTP response is never
// blocked on mail delivery.
func (q *SyncQueue) Enqueue(task *NotifyTask) error {
	q.mu.RLock()
	processor := q.processor
	q.mu.RUnlock()

	if processor == nil {
		logger.Infof("[SyncQueue] Warning: no processor set, job will be dropped")
		return nil
	}

	go func() {
		if err := processor(context.Background(), task); err != nil {
			logger.Infof("[SyncQueue] Job processing failed: %v", err)
		}
	}()

	return nil
}

// IsAsync returns false for sync queue.
func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close is a no-op for sync queue.
func (q *SyncQueue) Close() error {
	return nil
}
