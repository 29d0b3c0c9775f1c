package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/entity"
)

// ErrClosed is returned by StartExtraction after Shutdown.
var ErrClosed = errors.New("coordinator is shut down")

// Coordinator runs at most one extraction at a time on a background goroutine
// and reports progress and outcome over a bounded FIFO channel.
type Coordinator struct {
	logger *slog.Logger
	ch     chan Message

	mu      sync.Mutex
	running bool
	closed  bool
	current uuid.UUID
	done    chan struct{}
	dropped int
}

type Option func(*Coordinator)

func WithQueueSize(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.ch = make(chan Message, n)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		logger: slog.Default(),
		ch:     make(chan Message, 64),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StartExtraction launches fn unless a job is already running, in which case
// an error message is enqueued and common.ErrExtractionInProgress returned.
// The worker context keeps ctx's values but not its cancellation.
func (c *Coordinator) StartExtraction(ctx context.Context, fn ExtractionFunc) (uuid.UUID, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return uuid.Nil, ErrClosed
	}
	if c.running {
		active := c.current
		c.mu.Unlock()
		c.logger.Warn("coordinator.start.rejected", "active_job", active)
		c.offer(Message{Type: MessageError, Text: "Extraction already in progress", At: time.Now()})
		return uuid.Nil, common.ErrExtractionInProgress
	}

	stale := c.drainLocked()
	jobID := uuid.New()
	done := make(chan struct{})
	c.running = true
	c.current = jobID
	c.done = done
	c.mu.Unlock()

	if stale > 0 {
		c.logger.Debug("coordinator.stale.drained", "count", stale)
	}

	workerCtx := common.WithJobID(context.WithoutCancel(ctx), jobID.String())
	go c.run(workerCtx, jobID, done, fn)

	c.logger.Info("coordinator.job.started", "job_id", jobID)
	return jobID, nil
}

func (c *Coordinator) run(ctx context.Context, jobID uuid.UUID, done chan struct{}, fn ExtractionFunc) {
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		close(done)
	}()

	msg := Message{JobID: jobID}
	results, err := c.invoke(ctx, jobID, fn)
	if err != nil {
		c.logger.Error("coordinator.job.failed", "job_id", jobID, "err", err)
		msg.Type = MessageError
		msg.Text = common.UserMessage(err)
	} else {
		c.logger.Info("coordinator.job.complete", "job_id", jobID)
		msg.Type = MessageComplete
		msg.Results = results
	}
	msg.At = time.Now()
	c.push(msg)
}

func (c *Coordinator) invoke(ctx context.Context, jobID uuid.UUID, fn ExtractionFunc) (results *entity.BatchResults, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extraction panicked: %v", r)
		}
	}()
	return fn(ctx, &ProgressReporter{coord: c, jobID: jobID})
}

// offer enqueues without blocking and drops msg when the queue is full.
func (c *Coordinator) offer(msg Message) bool {
	select {
	case c.ch <- msg:
		return true
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
		c.logger.Warn("coordinator.message.dropped", "type", msg.Type, "job_id", msg.JobID)
		return false
	}
}

// push enqueues a terminal message, evicting the oldest queued message when full.
func (c *Coordinator) push(msg Message) {
	for {
		select {
		case c.ch <- msg:
			return
		default:
		}
		select {
		case old := <-c.ch:
			c.mu.Lock()
			c.dropped++
			c.mu.Unlock()
			c.logger.Warn("coordinator.message.evicted", "type", old.Type, "job_id", old.JobID)
		default:
		}
	}
}

func (c *Coordinator) drainLocked() int {
	n := 0
	for {
		select {
		case <-c.ch:
			n++
		default:
			return n
		}
	}
}

// CheckMessages drains every queued message without blocking, in FIFO order.
func (c *Coordinator) CheckMessages() []Message {
	var out []Message
	for {
		select {
		case msg := <-c.ch:
			out = append(out, msg)
		default:
			return out
		}
	}
}

// IsRunning reports whether a worker is active.
func (c *Coordinator) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// CurrentJob returns the ID of the active or most recent job.
func (c *Coordinator) CurrentJob() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Dropped returns how many messages were discarded because the queue was full.
func (c *Coordinator) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// WaitForCompletion blocks until the active worker finishes or timeout
// elapses. Returns true when no worker is running.
func (c *Coordinator) WaitForCompletion(timeout time.Duration) bool {
	c.mu.Lock()
	running, done := c.running, c.done
	c.mu.Unlock()
	if !running {
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// Shutdown refuses new jobs and waits for the active one until ctx is done.
func (c *Coordinator) Shutdown(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	running, done := c.running, c.done
	c.mu.Unlock()

	if !running {
		c.logger.Info("coordinator.shutdown.complete")
		return
	}
	select {
	case <-ctx.Done():
		c.logger.Warn("coordinator.shutdown.interrupted")
	case <-done:
		c.logger.Info("coordinator.shutdown.complete")
	}
}
