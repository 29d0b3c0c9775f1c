package async

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smeshko/text-extractor/internal/entity"
)

// MessageType tags a coordinator message.
type MessageType string

const (
	MessageProgress MessageType = "progress"
	MessageComplete MessageType = "complete"
	MessageError    MessageType = "error"
)

// Message travels from the worker to the polling side. Rejections of a
// second start carry uuid.Nil as JobID.
type Message struct {
	Type    MessageType
	JobID   uuid.UUID
	Text    string
	Results *entity.BatchResults
	At      time.Time
}

// IsTerminal reports whether m ends a job.
func (m Message) IsTerminal() bool {
	return m.Type == MessageComplete || m.Type == MessageError
}

// IsRejection reports whether m is a single-flight rejection.
func (m Message) IsRejection() bool {
	return m.Type == MessageError && m.JobID == uuid.Nil
}

// ExtractionFunc is the work run on the worker goroutine.
type ExtractionFunc func(ctx context.Context, progress *ProgressReporter) (*entity.BatchResults, error)

// Runner is the coordinator surface used by callers that start jobs.
type Runner interface {
	StartExtraction(ctx context.Context, fn ExtractionFunc) (uuid.UUID, error)
	IsRunning() bool
	WaitForCompletion(timeout time.Duration) bool
}

var _ Runner = (*Coordinator)(nil)
