package sandbox

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"cleanmachine/app/config"
	"cleanmachine/app/service/timer"
	"cleanmachine/app/service/transcript"

	"github.com/samber/do"
)

const replySummaryLimit = 50

// Scheduler delays the simulated agent reply. The returned func cancels the
// task if it has not fired yet.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

// Exporter receives the final snapshot of a conversation that is about to
// be wiped.
type Exporter interface {
	Export(record any) error
}

// Service is the intent responder: it appends the customer message, walks
// the mode's ordered rule table and applies the resulting transition, then
// schedules the delayed agent reply.
type Service struct {
	cfg      *config.Config
	store    *Store
	sched    Scheduler
	exporter Exporter

	mu      sync.Mutex
	seq     int
	pending map[int]func()
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	timerSvc := do.MustInvoke[*timer.Service](di)
	transcriptSvc := do.MustInvoke[*transcript.Service](di)

	return NewService(cfg, timerSvc, transcriptSvc), nil
}

func NewService(cfg *config.Config, sched Scheduler, exporter Exporter) *Service {
	return &Service{
		cfg:      cfg,
		store:    NewStore(Mode(cfg.Sandbox.Mode)),
		sched:    sched,
		exporter: exporter,
		pending:  make(map[int]func()),
	}
}

// Initialize switches the simulator to mode, discarding the previous
// conversation. Any still-pending agent reply is cancelled so it cannot
// leak into the fresh conversation.
func (s *Service) Initialize(mode Mode) {
	s.exportTranscript()
	s.cancelPending()
	s.store.Initialize(mode)

	slog.Info("Sandbox initialized", "mode", mode)
}

// Reset re-seeds the currently selected mode.
func (s *Service) Reset() {
	s.Initialize(s.store.Mode())
}

// ProcessMessage reacts to a customer utterance. The customer message is
// appended synchronously; phase, slots and branch events are applied
// synchronously too, then the agent reply (plus its sms summary event) is
// scheduled after the configured delay. Unmatched input appends the
// customer message and nothing else.
func (s *Service) ProcessMessage(text string) {
	s.store.AppendMessage(text, SenderCustomer)

	mode := s.store.Mode()
	lowered := strings.ToLower(strings.TrimSpace(text))

	r, ok := matchRule(mode, lowered, s.store.Phase(), s.store.Slots())
	if !ok {
		slog.Debug("No rule matched",
			"mode", mode,
			"phase", s.store.Phase(),
			"text", lowered)
		return
	}

	out := r.run(strings.TrimSpace(text), s.store.Slots())

	s.store.MergeSlots(out.slots)
	if out.phase != "" {
		s.store.SetPhase(out.phase)
	}
	for _, e := range out.events {
		s.store.AppendEvent(e.eventType, e.message, e.details)
	}

	if out.reply == "" {
		return
	}

	s.scheduleReply(out.reply)
}

// Snapshot returns the current conversation state plus the typing flag and
// the mode's quick-reply suggestions.
func (s *Service) Snapshot() Snapshot {
	snap := s.store.Snapshot()
	snap.AgentTyping = s.pendingCount() > 0
	snap.Suggestions = Suggestions(snap.Mode)

	return snap
}

// TypingDuration is the display-only typing indicator length for a message,
// proportional to its size and capped.
func (s *Service) TypingDuration(text string) time.Duration {
	d := time.Duration(len(text)*s.cfg.Sandbox.TypingMsPerChar) * time.Millisecond

	maxTyping := time.Duration(s.cfg.Sandbox.TypingMaxMs) * time.Millisecond
	if d > maxTyping {
		return maxTyping
	}

	return d
}

func (s *Service) scheduleReply(reply string) {
	s.mu.Lock()
	s.seq++
	id := s.seq
	s.pending[id] = func() {}
	s.mu.Unlock()

	delay := time.Duration(s.cfg.Sandbox.ReplyDelayMs) * time.Millisecond

	cancel := s.sched.Schedule(delay, func() {
		if !s.takePending(id) {
			return
		}

		s.store.AppendMessage(reply, SenderAgent)
		s.store.AppendEvent(EventSMS, "Auto-reply sent: "+truncate(reply, replySummaryLimit), "")
	})

	s.mu.Lock()
	if _, held := s.pending[id]; held {
		s.pending[id] = cancel
	}
	s.mu.Unlock()
}

// takePending claims a scheduled reply; it reports false if the reply was
// cancelled (or already claimed) in the meantime.
func (s *Service) takePending(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[id]; !ok {
		return false
	}

	delete(s.pending, id)

	return true
}

func (s *Service) cancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, cancel := range s.pending {
		cancel()
		delete(s.pending, id)
	}
}

func (s *Service) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}

// exportTranscript hands the outgoing conversation to the exporter if it
// saw any customer activity.
func (s *Service) exportTranscript() {
	if s.exporter == nil {
		return
	}

	snap := s.store.Snapshot()

	hasCustomerMessage := false
	for _, m := range snap.Messages {
		if m.Sender == SenderCustomer {
			hasCustomerMessage = true
			break
		}
	}
	if !hasCustomerMessage {
		return
	}

	if err := s.exporter.Export(snap); err != nil {
		slog.Warn("Failed to export transcript", "error", err)
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[:limit] + "..."
}
