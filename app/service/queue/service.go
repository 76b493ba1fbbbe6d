package queue

import (
	"log/slog"

	"github.com/samber/do"
)

const bufferSize = 64

var _ do.Shutdownable = (*Service)(nil)

// Service is the inbound utterance queue. Both transports enqueue here and
// a single consumer drains it, which keeps reply ordering FIFO.
type Service struct {
	queue chan Utterance
}

type Utterance struct {
	Text string
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		queue: make(chan Utterance, bufferSize),
	}, nil
}

func (s *Service) Add(text string) {
	defer func() {
		if r := recover(); r != nil {
			// queue already closed during shutdown
		}
	}()

	select {
	case s.queue <- Utterance{Text: text}:
	default:
		slog.Warn("utterance queue is full")
	}
}

func (s *Service) Channel() <-chan Utterance {
	return s.queue
}

func (s *Service) Shutdown() error {
	close(s.queue)

	return nil
}
