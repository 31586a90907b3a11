package notify

import (
	"strconv"
	"strings"

	"github.com/rileyhilliard/vitals/internal/alerting"
)

// Built-in template names. Each can be overridden per name in the
// config's templates section.
const (
	TemplateResolved = "resolved"
)

var builtinTemplates = map[string]string{
	"cpu_high":           "CPU usage is at {value}% (threshold: {threshold}%)",
	"memory_high":        "Memory usage is at {value}% (threshold: {threshold}%)",
	"disk_critical":      "Disk usage is at {value}% (threshold: {threshold}%)",
	"process_count_high": "Process count is {value} (threshold: {threshold})",
	"network_errors":     "Network errors at {value}/s (threshold: {threshold}/s)",
	TemplateResolved:     "Resolved: {message}",
}

// Templates resolves template names to bodies and renders them.
// Immutable once built; a config reload swaps the whole value.
type Templates struct {
	byName map[string]string
}

// NewTemplates merges overrides over the built-in set. Unknown names in
// overrides define new templates rules can reference.
func NewTemplates(overrides map[string]string) *Templates {
	merged := make(map[string]string, len(builtinTemplates)+len(overrides))
	for name, body := range builtinTemplates {
		merged[name] = body
	}
	for name, body := range overrides {
		merged[name] = body
	}
	return &Templates{byName: merged}
}

// Lookup returns the template body for name.
func (t *Templates) Lookup(name string) (string, bool) {
	body, ok := t.byName[name]
	return body, ok
}

// Render resolves the event's template and expands its placeholders.
// Resolution is two-level: the rule names a template, the template names
// placeholders. Resolved events always use the "resolved" template. A
// firing event with no (or an unknown) template name falls back to the
// event's pre-rendered message, so rendering never fails a dispatch.
func (t *Templates) Render(ev alerting.Event) string {
	name := ev.Template
	if ev.Resolved() {
		name = TemplateResolved
	}
	body, ok := t.byName[name]
	if !ok {
		return ev.Message
	}
	return Expand(body, Placeholders(ev))
}

// Placeholders builds the substitution set for one event.
func Placeholders(ev alerting.Event) map[string]string {
	return map[string]string{
		"value":     formatNumber(ev.Value),
		"threshold": formatNumber(ev.Threshold),
		"level":     ev.Level,
		"timestamp": ev.Timestamp.Format("2006-01-02 15:04:05"),
		"message":   ev.Message,
		"rule":      ev.RuleID,
		"metric":    ev.MetricKey,
	}
}

// Expand substitutes {name} placeholders from vars. Unknown placeholders
// expand to the empty string; an unterminated brace is copied verbatim.
func Expand(tmpl string, vars map[string]string) string {
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); {
		c := tmpl[i]
		if c != '{' {
			b.WriteByte(c)
			i++
			continue
		}
		end := strings.IndexByte(tmpl[i:], '}')
		if end < 0 {
			b.WriteString(tmpl[i:])
			break
		}
		name := tmpl[i+1 : i+end]
		b.WriteString(vars[name])
		i += end + 1
	}
	return b.String()
}

// formatNumber renders a float without a trailing ".0" so counts read as
// integers and percentages keep their precision.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
