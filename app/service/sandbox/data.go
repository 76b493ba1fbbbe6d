package sandbox

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderCustomer Sender = "customer"
	SenderAgent    Sender = "agent"
)

type EventType string

const (
	EventSMS      EventType = "sms"
	EventEmail    EventType = "email"
	EventRule     EventType = "rule"
	EventSchedule EventType = "schedule"
	EventTag      EventType = "tag"
)

// Phase is the current step within a mode's dialogue flow. Only new-lead
// walks the full linear chain; the other modes stay shallow.
type Phase string

const (
	PhaseGreeting          Phase = "greeting"
	PhaseCollectingName    Phase = "collecting_name"
	PhaseCollectingAddress Phase = "collecting_address"
	PhaseOfferingSlots     Phase = "offering_slots"
	PhaseConfirming        Phase = "confirming"
	PhaseRescheduleOptions Phase = "reschedule_options"
	PhaseReviewRequest     Phase = "review_request"
	PhaseUpsellPitch       Phase = "upsell_pitch"
	PhaseCompleted         Phase = "completed"
)

type Mode string

const (
	ModeFree           Mode = "free"
	ModeNewLead        Mode = "new-lead"
	ModeRainReschedule Mode = "rain-reschedule"
	ModeFollowUp       Mode = "follow-up"
	ModeUpsell         Mode = "upsell"
)

func AllModes() []Mode {
	return []Mode{ModeFree, ModeNewLead, ModeRainReschedule, ModeFollowUp, ModeUpsell}
}

func ParseMode(raw string) (Mode, error) {
	mode := Mode(raw)

	switch mode {
	case ModeFree, ModeNewLead, ModeRainReschedule, ModeFollowUp, ModeUpsell:
		return mode, nil
	}

	return "", fmt.Errorf("unknown mode %q", raw)
}

// Message is a single chat bubble, customer or agent side.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// TimelineEvent illustrates the backend automation action the real platform
// would perform at this point in the conversation.
type TimelineEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Slots holds the values collected during the new-lead intake flow.
type Slots struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Service string `json:"service,omitempty"`
}

// Snapshot is the full read model handed to the UI and the MCP tools.
type Snapshot struct {
	Mode        Mode            `json:"mode"`
	Phase       Phase           `json:"phase"`
	Messages    []Message       `json:"messages"`
	Events      []TimelineEvent `json:"events"`
	Slots       Slots           `json:"slots"`
	AgentTyping bool            `json:"agent_typing"`
	Suggestions []string        `json:"suggestions"`
}

func newMessage(text string, sender Sender) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
	}
}

func newEvent(eventType EventType, message, details string) TimelineEvent {
	return TimelineEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}
