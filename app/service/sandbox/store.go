package sandbox

import "sync"

// Store owns all state of the single simulated conversation: message and
// event sequences (append-only, insertion order is display order), the
// current phase and the captured slots. Everything lives in memory and is
// wiped wholesale on Initialize/Reset.
type Store struct {
	mu       sync.RWMutex
	mode     Mode
	phase    Phase
	messages []Message
	events   []TimelineEvent
	slots    Slots
}

func NewStore(mode Mode) *Store {
	store := &Store{}
	store.Initialize(mode)

	return store
}

// Initialize seeds the conversation from the mode's preset, resets the
// phase to greeting and clears the slots.
func (s *Store) Initialize(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := presetFor(mode)

	s.mode = mode
	s.phase = PhaseGreeting
	s.slots = Slots{}

	s.messages = make([]Message, 0, len(p.messages))
	for _, m := range p.messages {
		s.messages = append(s.messages, newMessage(m.text, m.sender))
	}

	s.events = make([]TimelineEvent, 0, len(p.events))
	for _, e := range p.events {
		s.events = append(s.events, newEvent(e.eventType, e.message, e.details))
	}
}

// Reset re-seeds the currently selected mode.
func (s *Store) Reset() {
	s.Initialize(s.Mode())
}

func (s *Store) AppendMessage(text string, sender Sender) Message {
	msg := newMessage(text, sender)

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	return msg
}

func (s *Store) AppendEvent(eventType EventType, message, details string) TimelineEvent {
	event := newEvent(eventType, message, details)

	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()

	return event
}

func (s *Store) SetPhase(phase Phase) {
	s.mu.Lock()
	s.phase = phase
	s.mu.Unlock()
}

// MergeSlots copies the non-empty fields of captured into the stored slots.
// Slots are never cleared individually, only on reset.
func (s *Store) MergeSlots(captured Slots) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if captured.Name != "" {
		s.slots.Name = captured.Name
	}
	if captured.Address != "" {
		s.slots.Address = captured.Address
	}
	if captured.Service != "" {
		s.slots.Service = captured.Service
	}
}

func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.mode
}

func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.phase
}

func (s *Store) Slots() Slots {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.slots
}

func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Message(nil), s.messages...)
}

func (s *Store) Events() []TimelineEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]TimelineEvent(nil), s.events...)
}

// Snapshot copies the full conversation state. The typing flag and
// suggestions are filled in by the service.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Mode:     s.mode,
		Phase:    s.phase,
		Messages: append([]Message(nil), s.messages...),
		Events:   append([]TimelineEvent(nil), s.events...),
		Slots:    s.slots,
	}
}
