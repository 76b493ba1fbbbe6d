package sandbox

import (
	"fmt"
	"strings"

	"github.com/elliotchance/pie/v2"
)

// outcome is everything a matched rule produces: the agent reply, an
// optional phase transition, slot captures and the automation events that
// fire alongside the reply.
type outcome struct {
	reply  string
	phase  Phase // empty keeps the current phase
	slots  Slots // non-empty fields are merged into the captured slots
	events []seedEvent
}

// rule is one entry of a mode's ordered rule table. match runs against the
// lower-cased utterance; run receives the original (trimmed) text so slot
// captures keep the user's casing. First matching rule wins.
type rule struct {
	match func(text string, phase Phase, slots Slots) bool
	run   func(text string, slots Slots) outcome
}

func matchRule(mode Mode, lowered string, phase Phase, slots Slots) (rule, bool) {
	rules := modeRules[mode]

	idx := pie.FindFirstUsing(rules, func(r rule) bool {
		return r.match(lowered, phase, slots)
	})
	if idx < 0 {
		return rule{}, false
	}

	return rules[idx], true
}

func containsAny(text string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(text, sub) {
			return true
		}
	}

	return false
}

func keywords(subs ...string) func(string, Phase, Slots) bool {
	return func(text string, _ Phase, _ Slots) bool {
		return containsAny(text, subs...)
	}
}

func firstDay(text string, days []string, fallback string) string {
	text = strings.ToLower(text)

	for _, day := range days {
		if strings.Contains(text, day) {
			return day
		}
	}

	return fallback
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

var modeRules = map[Mode][]rule{
	ModeFree:           freeRules,
	ModeNewLead:        newLeadRules,
	ModeRainReschedule: rainRescheduleRules,
	ModeFollowUp:       followUpRules,
	ModeUpsell:         upsellRules,
}

// newLeadRules is a strictly linear intake machine: service -> name ->
// address -> slot pick. Each step is guarded by the phase plus the slot
// still being empty, so steps cannot be reached out of order.
var newLeadRules = []rule{
	{
		match: func(_ string, phase Phase, slots Slots) bool {
			return phase == PhaseGreeting && slots.Service == ""
		},
		run: func(text string, _ Slots) outcome {
			return outcome{
				reply: "Great choice! We can absolutely take care of that. What name should I put the booking under?",
				phase: PhaseCollectingName,
				slots: Slots{Service: text},
				events: []seedEvent{
					{EventTag, "Service interest captured", text},
				},
			}
		},
	},
	{
		match: func(_ string, phase Phase, slots Slots) bool {
			return phase == PhaseCollectingName && slots.Name == ""
		},
		run: func(text string, _ Slots) outcome {
			return outcome{
				reply: fmt.Sprintf("Thanks, %s! And what address should we come out to?", text),
				phase: PhaseCollectingAddress,
				slots: Slots{Name: text},
				events: []seedEvent{
					{EventTag, "Customer name captured", text},
				},
			}
		},
	},
	{
		match: func(_ string, phase Phase, slots Slots) bool {
			return phase == PhaseCollectingAddress && slots.Address == ""
		},
		run: func(text string, _ Slots) outcome {
			return outcome{
				reply: "Perfect, we come to you! We have mobile openings Tuesday, Wednesday and Thursday this week. Which day works best?",
				phase: PhaseOfferingSlots,
				slots: Slots{Address: text},
				events: []seedEvent{
					{EventRule, "Service area check passed", text},
					{EventSchedule, "Open slots pulled for this week", ""},
				},
			}
		},
	},
	{
		match: func(_ string, phase Phase, _ Slots) bool {
			return phase == PhaseOfferingSlots
		},
		run: func(text string, _ Slots) outcome {
			day := capitalize(firstDay(text, []string{"tuesday", "wednesday", "thursday"}, "tuesday"))

			return outcome{
				reply: fmt.Sprintf("You're booked for %s at 9 AM! We'll text a reminder the day before. See you then!", day),
				phase: PhaseCompleted,
				events: []seedEvent{
					{EventSchedule, "Appointment booked for " + day + " 9 AM", ""},
					{EventSchedule, "Reminder scheduled for the day before", ""},
					{EventTag, "Lead converted to booking", ""},
					{EventEmail, "Booking confirmation email sent", ""},
				},
			}
		},
	},
}

var rainRescheduleRules = []rule{
	{
		match: keywords("reschedule", "move", "change"),
		run: func(_ string, _ Slots) outcome {
			return outcome{
				reply: "No problem at all! We have openings Friday, Saturday or Monday. Which one works best for you?",
				phase: PhaseRescheduleOptions,
				events: []seedEvent{
					{EventRule, "Reschedule flow started", "Weather conflict"},
					{EventSchedule, "Original slot held pending reschedule", ""},
				},
			}
		},
	},
	{
		match: keywords("indoor", "garage"),
		run: func(_ string, _ Slots) outcome {
			return outcome{
				reply: "Good thinking! If you have garage access we can do the full service indoors, rain or shine. Want to keep your 9 AM with an indoor setup?",
				events: []seedEvent{
					{EventTag, "Indoor service requested", ""},
				},
			}
		},
	},
	{
		match: keywords("keep", "brave"),
		run: func(_ string, _ Slots) outcome {
			return outcome{
				reply: "You got it, we'll keep your 9 AM slot and watch the radar. If it turns really bad we'll call you first thing.",
				phase: PhaseCompleted,
				events: []seedEvent{
					{EventTag, "Appointment kept despite weather", ""},
					{EventRule, "Morning weather re-check scheduled", ""},
				},
			}
		},
	},
	{
		match: keywords("friday", "saturday", "monday"),
		run: func(text string, _ Slots) outcome {
			day := capitalize(firstDay(text, []string{"friday", "saturday", "monday"}, "friday"))

			return outcome{
				reply: fmt.Sprintf("Done! You're moved to %s at 9 AM and a fresh confirmation is on its way.", day),
				phase: PhaseCompleted,
				events: []seedEvent{
					{EventSchedule, "Appointment moved to " + day + " 9 AM", ""},
					{EventSMS, "Reschedule confirmation sent", ""},
					{EventTag, "Weather reschedule completed", ""},
				},
			}
		},
	},
}

var followUpRules = []rule{
	{
		match: keywords("yes", "sure", "book", "sounds good", "let's do it"),
		run: func(_ string, _ Slots) outcome {
			return outcome{
				reply: "Awesome! I have you down for Thursday at 10 AM, same package as last time. Confirmation is on its way!",
				events: []seedEvent{
					{EventEmail, "Booking confirmation sent", ""},
					{EventRule, "Repeat-customer booking automation fired", ""},
				},
			}
		},
	},
	{
		match: keywords("discount", "deal", "cheaper", "coupon"),
		run: func(_ string, _ Slots) outcome {
			return outcome{
				reply: "Since you're a returning customer I can take 15% off the full detail this month. Want me to lock that in?",
				events: []seedEvent{
					{EventEmail, "15% returning-customer offer sent", ""},
					{EventTag, "Price sensitive", ""},
				},
			}
		},
	},
	{
		match: keywords("maintenance", "membership", "plan"),
		run: func(_ string, _ Slots) outcome {
			return outcome{
				reply: "Our maintenance membership is $79/month: a full wash every two weeks plus 20% off any add-on service. Most members save money by the second visit.",
				events: []seedEvent{
					{EventEmail, "Maintenance plan brochure sent", ""},
					{EventTag, "Membership interest", ""},
				},
			}
		},
	},
}

var upsellRules = []rule{
	{
		match: keywords("ceramic", "coating", "tell me", "more"),
		run: func(_ string, _ Slots) outcome {
			return outcome{
				reply: "Ceramic coating bonds to the clear coat and protects the paint for two-plus years: water beads right off and washes take half the time. It runs $599 and includes a free maintenance wash.",
				events: []seedEvent{
					{EventEmail, "Ceramic coating info sheet sent", ""},
				},
			}
		},
	},
	{
		match: keywords("do it", "add", "yes", "sure"),
		run: func(_ string, _ Slots) outcome {
			return outcome{
				reply: "Excellent choice! We'll add the ceramic coating to your service and the updated invoice is on its way. Your car is going to love it.",
				phase: PhaseCompleted,
				events: []seedEvent{
					{EventSchedule, "Ceramic coating appointment added", ""},
					{EventTag, "Upsell accepted", ""},
					{EventEmail, "Updated invoice sent", ""},
				},
			}
		},
	},
	{
		match: keywords("membership", "how much", "price", "cost"),
		run: func(_ string, _ Slots) outcome {
			return outcome{
				reply: "The coating is $599 one-time, or $499 if you're on the $79/month maintenance membership. Members also get 20% off every add-on.",
				events: []seedEvent{
					{EventTag, "Upsell pricing inquiry", ""},
				},
			}
		},
	},
	{
		match: keywords("no", "not", "nah", "later"),
		run: func(_ string, _ Slots) outcome {
			return outcome{
				reply: "No worries at all! The offer stands whenever you're ready. Enjoy that fresh detail!",
				phase: PhaseCompleted,
				events: []seedEvent{
					{EventTag, "Upsell declined", ""},
					{EventRule, "30-day follow-up scheduled", ""},
				},
			}
		},
	},
}

var freeRules = []rule{
	{
		match: keywords("detail", "clean", "wash"),
		run: func(_ string, _ Slots) outcome {
			return outcome{
				reply: "We offer full details, interior-only and exterior packages, and we come to you! The full detail is our most popular. Want me to walk you through what's included?",
				events: []seedEvent{
					{EventTag, "Service inquiry", ""},
				},
			}
		},
	},
	{
		match: keywords("price", "cost", "much"),
		run: func(_ string, _ Slots) outcome {
			return outcome{
				reply: "Pricing depends on vehicle size: full details start at $149 for sedans and $189 for SUVs and trucks. Interior-only starts at $99.",
				events: []seedEvent{
					{EventTag, "Pricing inquiry", ""},
				},
			}
		},
	},
	{
		match: keywords("tomorrow", "available", "book", "appointment"),
		run: func(_ string, _ Slots) outcome {
			return outcome{
				reply: "We do have openings tomorrow! Morning slots go fast. Want me to pencil you in for 9 AM or 1 PM?",
				events: []seedEvent{
					{EventSchedule, "Availability check run", ""},
				},
			}
		},
	},
	{
		match: keywords("where", "location", "area"),
		run: func(_ string, _ Slots) outcome {
			return outcome{
				reply: "We're fully mobile: we bring water, power and everything else straight to your driveway, anywhere in the metro area.",
			}
		},
	},
	{
		// fallback, keeps free mode from going silent
		match: func(_ string, _ Phase, _ Slots) bool { return true },
		run: func(_ string, _ Slots) outcome {
			return outcome{
				reply: "Happy to help with that! Most folks ask about our packages, pricing or availability. What would you like to know?",
			}
		},
	},
}
