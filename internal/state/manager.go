package state

import (
	"log/slog"
	"sync"

	"github.com/smeshko/text-extractor/internal/entity"
)

// Manager serializes all access to one ApplicationState.
//
// Each mutation runs under mu, bumps Version and takes a snapshot, then
// releases mu before observers run, so observers may call back into the
// manager. Concurrent mutations can reach an observer out of order; Version
// tells them apart.
type Manager struct {
	mu         sync.Mutex
	state      ApplicationState
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		state:      NewApplicationState(),
		dispatcher: NewDispatcher(logger),
		logger:     logger,
	}
}

// Subscribe registers an observer for every subsequent mutation.
func (m *Manager) Subscribe(obs Observer) func() {
	return m.dispatcher.Subscribe(obs)
}

// Dispatcher exposes the observer registry, e.g. for failure metrics.
func (m *Manager) Dispatcher() *Dispatcher { return m.dispatcher }

// Snapshot returns a deep copy of the current state.
func (m *Manager) Snapshot() ApplicationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// CanStartExtraction reports whether StartProcessing would succeed now.
func (m *Manager) CanStartExtraction() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.CanStartExtraction()
}

func (m *Manager) mutate(op string, fn func(s *ApplicationState) error) error {
	m.mu.Lock()
	if err := fn(&m.state); err != nil {
		m.mu.Unlock()
		m.logger.Debug("state.mutation.rejected", "op", op, "err", err)
		return err
	}
	m.state.Version++
	snapshot := m.state.Clone()
	m.mu.Unlock()

	m.logger.Debug("state.changed", "op", op, "status", snapshot.Status, "version", snapshot.Version)
	m.dispatcher.Dispatch(snapshot)
	return nil
}

// SetDocuments replaces the selected documents.
func (m *Manager) SetDocuments(docs []entity.Document) error {
	docs = append([]entity.Document(nil), docs...)
	return m.mutate("set_documents", func(s *ApplicationState) error {
		return s.SetDocuments(docs)
	})
}

// AddKeyword activates kw; duplicates (case-insensitive) are rejected.
func (m *Manager) AddKeyword(kw entity.Keyword) error {
	return m.mutate("add_keyword", func(s *ApplicationState) error {
		return s.AddKeyword(kw)
	})
}

// RemoveKeyword deactivates the keyword matching text.
func (m *Manager) RemoveKeyword(text string) error {
	return m.mutate("remove_keyword", func(s *ApplicationState) error {
		return s.RemoveKeyword(text)
	})
}

// ClearKeywords deactivates every keyword.
func (m *Manager) ClearKeywords() error {
	return m.mutate("clear_keywords", func(s *ApplicationState) error {
		return s.ClearKeywords()
	})
}

// StartProcessing enters the processing status when CanStartExtraction holds.
func (m *Manager) StartProcessing() error {
	return m.mutate("start_processing", func(s *ApplicationState) error {
		return s.StartProcessing()
	})
}

// CompleteProcessing stores a copy of results and derives the terminal status.
func (m *Manager) CompleteProcessing(results *entity.BatchResults) error {
	results = results.Clone()
	return m.mutate("complete_processing", func(s *ApplicationState) error {
		return s.CompleteProcessing(results)
	})
}

// FailProcessing ends the active run with message.
func (m *Manager) FailProcessing(message string) error {
	return m.mutate("fail_processing", func(s *ApplicationState) error {
		return s.FailProcessing(message)
	})
}

// AddError appends a session error message.
func (m *Manager) AddError(message string) {
	_ = m.mutate("add_error", func(s *ApplicationState) error {
		s.ErrorMessages = append(s.ErrorMessages, message)
		return nil
	})
}

// ClearErrors drops all session error messages.
func (m *Manager) ClearErrors() {
	_ = m.mutate("clear_errors", func(s *ApplicationState) error {
		s.ErrorMessages = []string{}
		return nil
	})
}

// Reset returns the session to idle.
func (m *Manager) Reset() {
	_ = m.mutate("reset", func(s *ApplicationState) error {
		s.Reset()
		return nil
	})
}
