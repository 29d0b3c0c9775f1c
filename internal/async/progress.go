package async

import (
	"time"

	"github.com/google/uuid"
)

// ProgressReporter lets the worker publish interim status text for its job.
type ProgressReporter struct {
	coord *Coordinator
	jobID uuid.UUID
}

// Report enqueues a progress message. It never blocks; when the queue is
// full the message is dropped.
func (p *ProgressReporter) Report(text string) {
	if p == nil || p.coord == nil {
		return
	}
	p.coord.offer(Message{Type: MessageProgress, JobID: p.jobID, Text: text, At: time.Now()})
}

// JobID returns the job this reporter belongs to.
func (p *ProgressReporter) JobID() uuid.UUID {
	if p == nil {
		return uuid.Nil
	}
	return p.jobID
}
