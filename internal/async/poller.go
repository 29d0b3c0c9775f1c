package async

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smeshko/text-extractor/internal/entity"
)

// StateSink receives the outcome of a job.
type StateSink interface {
	CompleteProcessing(results *entity.BatchResults) error
	FailProcessing(message string) error
}

// Poller drains the coordinator queue on a ticker and forwards the active
// job's outcome into a StateSink.
type Poller struct {
	coord      *Coordinator
	sink       StateSink
	interval   time.Duration
	logger     *slog.Logger
	onProgress func(Message)
	onReject   func(Message)
}

type PollerOption func(*Poller)

func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithProgressHandler(fn func(Message)) PollerOption {
	return func(p *Poller) { p.onProgress = fn }
}

func WithRejectionHandler(fn func(Message)) PollerOption {
	return func(p *Poller) { p.onReject = fn }
}

func WithPollerLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPoller(coord *Coordinator, sink StateSink, opts ...PollerOption) *Poller {
	p := &Poller{
		coord:    coord,
		sink:     sink,
		interval: 100 * time.Millisecond,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run polls until the coordinator is idle and the queue has been drained
// once more, or until ctx is done. Only messages of jobID reach the sink.
func (p *Poller) Run(ctx context.Context, jobID uuid.UUID) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		running := p.coord.IsRunning()
		p.dispatch(jobID, p.coord.CheckMessages())
		if !running {
			p.logger.Debug("poller.done", "job_id", jobID)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) dispatch(jobID uuid.UUID, msgs []Message) {
	for _, msg := range msgs {
		switch {
		case msg.IsRejection():
			p.logger.Warn("poller.rejected", "text", msg.Text)
			if p.onReject != nil {
				p.onReject(msg)
			}
		case msg.JobID != jobID:
			p.logger.Debug("poller.stale", "job_id", msg.JobID, "type", msg.Type)
		case msg.Type == MessageProgress:
			if p.onProgress != nil {
				p.onProgress(msg)
			}
		case msg.Type == MessageComplete:
			if err := p.sink.CompleteProcessing(msg.Results); err != nil {
				p.logger.Error("poller.complete.failed", "job_id", jobID, "err", err)
			}
		case msg.Type == MessageError:
			if err := p.sink.FailProcessing(msg.Text); err != nil {
				p.logger.Error("poller.fail.failed", "job_id", jobID, "err", err)
			}
		}
	}
}
