package alerting

import "time"

// Kind distinguishes the two notifications an episode produces.
type Kind string

const (
	KindFiring   Kind = "firing"
	KindResolved Kind = "resolved"
)

// Event is one alert state transition. A breach episode produces exactly
// one firing event and, when the value recovers, one resolved event
// carrying the same ID.
type Event struct {
	// ID identifies the episode; the firing and resolved events of one
	// breach share it.
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	RuleID    string    `json:"rule_id"`
	MetricKey string    `json:"metric_key"`
	Level     string    `json:"level"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`

	// Message is the pre-rendered one-line summary used when no template
	// applies and as the {message} placeholder.
	Message string `json:"message"`

	// Delivery routing copied from the rule so the dispatcher does not
	// need to resolve rules after a config reload swapped them.
	Actions  []string `json:"actions,omitempty"`
	Template string   `json:"template,omitempty"`
}

// Resolved reports whether this event closes an episode.
func (e Event) Resolved() bool {
	return e.Kind == KindResolved
}
