package state

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Observer receives a snapshot after every state mutation.
type Observer func(snapshot ApplicationState) error

type subscription struct {
	id  uint64
	obs Observer
}

// Dispatcher delivers snapshots to observers in subscription order. A failing
// or panicking observer is logged and counted; delivery to the rest continues.
type Dispatcher struct {
	mu       sync.RWMutex
	subs     []subscription
	nextID   uint64
	failures atomic.Int64
	logger   *slog.Logger
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// Subscribe registers obs and returns a function that removes it.
func (d *Dispatcher) Subscribe(obs Observer) func() {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.subs = append(d.subs, subscription{id: id, obs: obs})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { d.unsubscribe(id) })
	}
}

func (d *Dispatcher) unsubscribe(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, s := range d.subs {
		if s.id == id {
			d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
			return
		}
	}
}

// Dispatch hands each observer its own copy of snapshot.
func (d *Dispatcher) Dispatch(snapshot ApplicationState) {
	d.mu.RLock()
	subs := append([]subscription(nil), d.subs...)
	d.mu.RUnlock()

	for _, s := range subs {
		if err := d.deliver(s.obs, snapshot.Clone()); err != nil {
			d.failures.Add(1)
			d.logger.Warn("state.observer.failed", "observer", s.id, "version", snapshot.Version, "err", err)
		}
	}
}

func (d *Dispatcher) deliver(obs Observer, snapshot ApplicationState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	return obs(snapshot)
}

// Failures returns the number of failed deliveries so far.
func (d *Dispatcher) Failures() int64 { return d.failures.Load() }

// Len returns the number of registered observers.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs)
}
