package sandbox

type seedMessage struct {
	text   string
	sender Sender
}

type seedEvent struct {
	eventType EventType
	message   string
	details   string
}

// preset is the static seed a mode starts from: the opening messages, the
// automation events that already "happened" and the quick-reply chips.
type preset struct {
	messages    []seedMessage
	events      []seedEvent
	suggestions []string
}

var modePresets = map[Mode]preset{
	ModeFree: {
		messages: []seedMessage{
			{"Hi! Thanks for texting Clean Machine Auto Detailing. How can we help you today?", SenderAgent},
		},
		suggestions: []string{
			"I need a full detail",
			"How much does it cost?",
			"Are you available tomorrow?",
			"Where are you located?",
		},
	},
	ModeNewLead: {
		messages: []seedMessage{
			{"Hey! Thanks for reaching out to Clean Machine. What kind of service are you looking for?", SenderAgent},
		},
		events: []seedEvent{
			{EventTag, "New lead created", "Source: website chat widget"},
			{EventRule, "Lead intake automation started", ""},
		},
		suggestions: []string{
			"Full detail",
			"Interior only",
			"Exterior wash and wax",
		},
	},
	ModeRainReschedule: {
		messages: []seedMessage{
			{"Hi Sarah! Rain is forecast for tomorrow morning, so your 9 AM exterior detail may be affected. Want to reschedule, or should we keep your slot?", SenderAgent},
		},
		events: []seedEvent{
			{EventRule, "Weather trigger fired", "80% chance of rain tomorrow"},
			{EventSMS, "Weather alert sent to customer", ""},
		},
		suggestions: []string{
			"Let's reschedule",
			"Do you have an indoor option?",
			"Keep my appointment",
		},
	},
	ModeFollowUp: {
		messages: []seedMessage{
			{"Hi Mike! It's been six weeks since your last full detail. Ready to get that showroom shine back?", SenderAgent},
		},
		events: []seedEvent{
			{EventRule, "6-week follow-up automation fired", ""},
		},
		suggestions: []string{
			"Yes, book me in",
			"Any discounts right now?",
			"Tell me about maintenance plans",
		},
	},
	ModeUpsell: {
		messages: []seedMessage{
			{"Your full detail is finished and the car looks great! While it was in the bay we noticed the paint is a perfect candidate for ceramic coating. Want to hear more?", SenderAgent},
		},
		events: []seedEvent{
			{EventTag, "Service completed", "Full detail"},
			{EventRule, "Post-service upsell automation fired", ""},
		},
		suggestions: []string{
			"Tell me more",
			"How much is the membership?",
			"No thanks",
		},
	},
}

func presetFor(mode Mode) preset {
	return modePresets[mode]
}

// Suggestions returns the quick-reply chips for a mode.
func Suggestions(mode Mode) []string {
	return append([]string(nil), presetFor(mode).suggestions...)
}
