package queue

import (
	"context"
	"errors"
	"time"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Producer accepts jobs for later processing.
type Producer interface {
	Enqueue(ctx context.Context, job Job) error
}

// Consumer hands out jobs. Dequeue returns nil and no error when nothing
// arrived within timeout.
type Consumer interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*Job, error)
}

type Queue interface {
	Producer
	Consumer
	Close() error
}
