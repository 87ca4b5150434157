/*
File Name:  Scheduler.go
Copyright:  2024 Hearthmesh Contributors

Named long-lived worker tasks (§9 design note: "a single task scheduler with
named long-lived tasks... and a task-group discipline that cancels them on
teardown"), replacing the teacher's mix of timer threads and detached
goroutines with one place that starts, names, and tears down background
work. Only this scheduler's tasks run as goroutines; they wait on timers and
call into components (the gossip manager, the verification sessions) that
guard their own maps with a mutex.
*/

package meshcore

import (
	"context"
	"log"
	"sync"
)

// Scheduler owns a set of named cancellable background tasks.
type Scheduler struct {
	mu     sync.Mutex
	cancel map[string]context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{cancel: make(map[string]context.CancelFunc)}
}

// Start launches fn under a cancellable context registered as name. Starting
// a task under a name that is already running replaces it, cancelling the
// previous instance first.
func (s *Scheduler) Start(parent context.Context, name string, fn func(ctx context.Context)) {
	s.mu.Lock()
	if existing, ok := s.cancel[name]; ok {
		existing()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel[name] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("scheduler: task %q panicked: %v", name, r)
			}
		}()
		fn(ctx)
	}()
}

// Stop cancels the named task, if running. It does not wait for the task's
// goroutine to observe cancellation and return.
func (s *Scheduler) Stop(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancel[name]; ok {
		cancel()
		delete(s.cancel, name)
	}
}

// StopAll cancels every running task and waits for all of them to return
// (§9 "task-group discipline that cancels them on teardown").
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	for name, cancel := range s.cancel {
		cancel()
		delete(s.cancel, name)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Named task identifiers used throughout the backend (§9).
const (
	TaskGossipTimer     = "gossip-timer"
	TaskBootstrapPoller = "bootstrap-poller"
	TaskControlMonitor  = "control-monitor"
	TaskOutboxFlusher   = "outbox-flusher"
	TaskVerificationSweep = "verification-sweep"
)
