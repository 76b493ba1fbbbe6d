package timer

import (
	"sync"
	"time"

	"github.com/samber/do"
)

var _ do.Shutdownable = (*Service)(nil)

// Service owns the fire-and-forget timers used for simulated reply latency.
// Every scheduled task can be cancelled individually; Shutdown stops
// everything still outstanding.
type Service struct {
	mu      sync.Mutex
	seq     int
	pending map[int]*time.Timer
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		pending: make(map[int]*time.Timer),
	}, nil
}

// Schedule runs fn on its own goroutine after d. The returned func cancels
// the task; cancelling after the task fired is a no-op.
func (s *Service) Schedule(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := s.seq

	s.pending[id] = time.AfterFunc(d, func() {
		s.remove(id)
		fn()
	})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if t, ok := s.pending[id]; ok {
			t.Stop()
			delete(s.pending, id)
		}
	}
}

func (s *Service) remove(id int) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

func (s *Service) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}

	return nil
}
