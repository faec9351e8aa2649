package testutil

import (
	"sync"
	"time"
)

// Registration records one call to RegisterRecurring.
type Registration struct {
	Key          string
	InitialDelay time.Duration
	Period       time.Duration
	Run          func()
}

// StubScheduler records registrations without running anything. Jobs can be
// fired manually via Fire. Safe for concurrent use.
type StubScheduler struct {
	mu        sync.Mutex
	jobs      map[string]Registration
	cancelled []string
}

func NewStubScheduler() *StubScheduler {
	return &StubScheduler{jobs: make(map[string]Registration)}
}

func (s *StubScheduler) RegisterRecurring(key string, initialDelay, period time.Duration, run func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[key] = Registration{Key: key, InitialDelay: initialDelay, Period: period, Run: run}
}

func (s *StubScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, key)
	s.cancelled = append(s.cancelled, key)
}

// Job returns the registration stored under key, if any.
func (s *StubScheduler) Job(key string) (Registration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.jobs[key]
	return reg, ok
}

// Keys returns the keys of all currently registered jobs.
func (s *StubScheduler) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.jobs))
	for k := range s.jobs {
		keys = append(keys, k)
	}
	return keys
}

// Cancelled returns the keys passed to Cancel, in order.
func (s *StubScheduler) Cancelled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.cancelled))
	copy(out, s.cancelled)
	return out
}

// Fire runs the job registered under key, if present.
func (s *StubScheduler) Fire(key string) bool {
	s.mu.Lock()
	reg, ok := s.jobs[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	reg.Run()
	return true
}
