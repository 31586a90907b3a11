package notify

import (
	"context"

	"github.com/rileyhilliard/vitals/internal/alerting"
	"github.com/rileyhilliard/vitals/internal/logger"
)

// LogNotifier writes alert events through the logger. It is always
// registered and exempt from rate limiting, so the log is the complete
// record of everything the engine emitted.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Name() string { return ChannelLog }

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	ev := msg.Event
	line := "alert %s rule=%s metric=%s level=%s value=%s threshold=%s msg=%q"
	args := []interface{}{
		ev.Kind, ev.RuleID, ev.MetricKey, ev.Level,
		formatNumber(ev.Value), formatNumber(ev.Threshold), msg.Body,
	}
	switch {
	case ev.Resolved() || ev.Level == alerting.LevelInfo:
		n.log.Info(line, args...)
	case ev.Level == alerting.LevelWarning:
		n.log.Warn(line, args...)
	default:
		n.log.Error(line, args...)
	}
	return nil
}

func (n *LogNotifier) Close() error { return nil }
