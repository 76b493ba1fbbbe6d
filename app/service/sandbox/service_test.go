package sandbox

import (
	"strings"
	"testing"
	"time"

	"cleanmachine/app/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// immediateScheduler fires scheduled tasks synchronously.
type immediateScheduler struct{}

func (immediateScheduler) Schedule(_ time.Duration, fn func()) func() {
	fn()
	return func() {}
}

// manualScheduler holds tasks until fire is called.
type manualScheduler struct {
	fns []func()
}

func (m *manualScheduler) Schedule(_ time.Duration, fn func()) func() {
	m.fns = append(m.fns, fn)
	return func() {}
}

func (m *manualScheduler) fire() {
	fns := m.fns
	m.fns = nil

	for _, fn := range fns {
		fn()
	}
}

func testConfig(mode Mode) *config.Config {
	return &config.Config{
		Sandbox: config.Sandbox{
			Mode:            string(mode),
			ReplyDelayMs:    500,
			TypingMsPerChar: 30,
			TypingMaxMs:     800,
		},
	}
}

func TestInitializeSeedsPresets(t *testing.T) {
	for _, mode := range AllModes() {
		t.Run(string(mode), func(t *testing.T) {
			svc := NewService(testConfig(mode), &manualScheduler{}, nil)

			snap := svc.Snapshot()
			p := presetFor(mode)

			assert.Equal(t, mode, snap.Mode)
			assert.Equal(t, PhaseGreeting, snap.Phase)
			assert.Equal(t, Slots{}, snap.Slots)
			assert.False(t, snap.AgentTyping)
			assert.Equal(t, p.suggestions, snap.Suggestions)

			require.Len(t, snap.Messages, len(p.messages))
			for i, m := range p.messages {
				assert.Equal(t, m.text, snap.Messages[i].Text)
				assert.Equal(t, m.sender, snap.Messages[i].Sender)
				assert.NotEmpty(t, snap.Messages[i].ID)
			}

			require.Len(t, snap.Events, len(p.events))
			for i, e := range p.events {
				assert.Equal(t, e.eventType, snap.Events[i].Type)
				assert.Equal(t, e.message, snap.Events[i].Message)
			}
		})
	}
}

func TestCustomerMessageAppendedSynchronously(t *testing.T) {
	sched := &manualScheduler{}
	svc := NewService(testConfig(ModeFree), sched, nil)

	svc.ProcessMessage("hello there")

	snap := svc.Snapshot()
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, "hello there", snap.Messages[1].Text)
	assert.Equal(t, SenderCustomer, snap.Messages[1].Sender)
	assert.True(t, snap.AgentTyping)

	sched.fire()

	snap = svc.Snapshot()
	require.Len(t, snap.Messages, 3)
	assert.Equal(t, SenderAgent, snap.Messages[2].Sender)
	assert.False(t, snap.AgentTyping)
}

func TestNewLeadHappyPath(t *testing.T) {
	svc := NewService(testConfig(ModeNewLead), immediateScheduler{}, nil)

	for _, text := range []string{"Full detail", "John Smith", "123 Main St", "Tuesday"} {
		svc.ProcessMessage(text)
	}

	snap := svc.Snapshot()
	assert.Equal(t, PhaseCompleted, snap.Phase)
	assert.Equal(t, Slots{
		Name:    "John Smith",
		Address: "123 Main St",
		Service: "Full detail",
	}, snap.Slots)
	assert.GreaterOrEqual(t, len(snap.Events), 6)

	lastReply := snap.Messages[len(snap.Messages)-1]
	assert.Equal(t, SenderAgent, lastReply.Sender)
	assert.Contains(t, lastReply.Text, "Tuesday")
}

func TestNewLeadDefaultsToTuesday(t *testing.T) {
	svc := NewService(testConfig(ModeNewLead), immediateScheduler{}, nil)

	for _, text := range []string{"Interior only", "Jane", "5 Oak Ave", "whenever works"} {
		svc.ProcessMessage(text)
	}

	snap := svc.Snapshot()
	assert.Equal(t, PhaseCompleted, snap.Phase)

	lastReply := snap.Messages[len(snap.Messages)-1]
	assert.Contains(t, lastReply.Text, "Tuesday")
}

func TestRainRescheduleTwoStep(t *testing.T) {
	svc := NewService(testConfig(ModeRainReschedule), immediateScheduler{}, nil)

	svc.ProcessMessage("I need to reschedule")
	assert.NotEqual(t, PhaseCompleted, svc.Snapshot().Phase)
	assert.Equal(t, PhaseRescheduleOptions, svc.Snapshot().Phase)

	svc.ProcessMessage("Friday works for me")
	snap := svc.Snapshot()
	assert.Equal(t, PhaseCompleted, snap.Phase)

	lastReply := snap.Messages[len(snap.Messages)-1]
	assert.Contains(t, lastReply.Text, "Friday")
}

func TestFreePricingInquiry(t *testing.T) {
	svc := NewService(testConfig(ModeFree), immediateScheduler{}, nil)

	svc.ProcessMessage("How much does it cost?")

	snap := svc.Snapshot()

	lastReply := snap.Messages[len(snap.Messages)-1]
	assert.Equal(t, SenderAgent, lastReply.Sender)
	assert.Contains(t, lastReply.Text, "$149")

	var tagged bool
	for _, e := range snap.Events {
		if e.Type == EventTag && e.Message == "Pricing inquiry" {
			tagged = true
		}
	}
	assert.True(t, tagged, "expected a 'Pricing inquiry' tag event")
}

func TestResetRestoresPresets(t *testing.T) {
	svc := NewService(testConfig(ModeFree), immediateScheduler{}, nil)

	svc.ProcessMessage("I need a full detail")
	svc.ProcessMessage("How much does it cost?")
	require.Greater(t, len(svc.Snapshot().Messages), 1)

	svc.Reset()

	snap := svc.Snapshot()
	p := presetFor(ModeFree)

	assert.Equal(t, PhaseGreeting, snap.Phase)
	assert.Equal(t, Slots{}, snap.Slots)
	require.Len(t, snap.Messages, len(p.messages))
	assert.Equal(t, p.messages[0].text, snap.Messages[0].Text)
	assert.Len(t, snap.Events, len(p.events))
}

func TestResetCancelsPendingReply(t *testing.T) {
	sched := &manualScheduler{}
	svc := NewService(testConfig(ModeFree), sched, nil)

	svc.ProcessMessage("How much does it cost?")
	svc.Reset()

	// the timer fires after the reset; the reply must not leak into the
	// fresh conversation
	sched.fire()

	snap := svc.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, SenderAgent, snap.Messages[0].Sender)
	assert.Empty(t, snap.Events)
}

func TestUnmatchedInputLeavesPhaseUnchanged(t *testing.T) {
	svc := NewService(testConfig(ModeNewLead), immediateScheduler{}, nil)

	for _, text := range []string{"Full detail", "John Smith", "123 Main St", "Tuesday"} {
		svc.ProcessMessage(text)
	}
	require.Equal(t, PhaseCompleted, svc.Snapshot().Phase)

	before := svc.Snapshot()
	svc.ProcessMessage("xyzzy plugh")

	snap := svc.Snapshot()
	assert.Equal(t, PhaseCompleted, snap.Phase)
	// only the customer message was appended
	assert.Len(t, snap.Messages, len(before.Messages)+1)
	assert.Len(t, snap.Events, len(before.Events))
}

func TestModeSwitchDiscardsConversation(t *testing.T) {
	svc := NewService(testConfig(ModeFree), immediateScheduler{}, nil)

	svc.ProcessMessage("How much does it cost?")
	svc.Initialize(ModeUpsell)

	snap := svc.Snapshot()
	assert.Equal(t, ModeUpsell, snap.Mode)
	assert.Equal(t, PhaseGreeting, snap.Phase)
	assert.Len(t, snap.Messages, len(presetFor(ModeUpsell).messages))
}

func TestReplySummaryTruncated(t *testing.T) {
	svc := NewService(testConfig(ModeFree), immediateScheduler{}, nil)

	svc.ProcessMessage("How much does it cost?")

	snap := svc.Snapshot()

	var summary string
	for _, e := range snap.Events {
		if e.Type == EventSMS {
			summary = e.Message
		}
	}

	require.True(t, strings.HasPrefix(summary, "Auto-reply sent: "))
	body := strings.TrimSuffix(strings.TrimPrefix(summary, "Auto-reply sent: "), "...")
	assert.LessOrEqual(t, len(body), replySummaryLimit)
}

func TestTypingDuration(t *testing.T) {
	svc := NewService(testConfig(ModeFree), &manualScheduler{}, nil)

	assert.Equal(t, 60*time.Millisecond, svc.TypingDuration("hi"))
	assert.Equal(t, 800*time.Millisecond, svc.TypingDuration(strings.Repeat("a", 500)))
}
