package doctor

import (
	"fmt"
	"net"
	"os/exec"
	"time"

	"github.com/rileyhilliard/vitals/internal/config"
)

// smtpProbeTimeout bounds the reachability dial; doctor should never hang
// on a firewalled port.
const smtpProbeTimeout = 3 * time.Second

// DesktopNotifyCheck verifies notify-send is installed when desktop
// notifications are enabled.
type DesktopNotifyCheck struct {
	Enabled bool
}

func (c *DesktopNotifyCheck) Name() string     { return "notify_send" }
func (c *DesktopNotifyCheck) Category() string { return "NOTIFICATIONS" }

func (c *DesktopNotifyCheck) Run() CheckResult {
	if !c.Enabled {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Desktop notifications disabled",
		}
	}

	path, err := exec.LookPath("notify-send")
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "notify-send not found",
			Suggestion: "Install libnotify (apt install libnotify-bin) or set notifications.desktop: false",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("notify-send found (%s)", path),
	}
}

func (c *DesktopNotifyCheck) Fix() error { return nil }

// SMTPReachableCheck dials the configured SMTP endpoint. Only reachability
// is probed; authentication problems still surface at delivery time.
type SMTPReachableCheck struct {
	Host string
	Port int
}

func (c *SMTPReachableCheck) Name() string     { return "smtp_reachable" }
func (c *SMTPReachableCheck) Category() string { return "NOTIFICATIONS" }

func (c *SMTPReachableCheck) Run() CheckResult {
	if c.Host == "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Email notifications not configured",
		}
	}

	addr := net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
	start := time.Now()
	conn, err := net.DialTimeout("tcp", addr, smtpProbeTimeout)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot reach SMTP server %s", addr),
			Suggestion: "Check notifications.email.host and port, and any firewall in between",
		}
	}
	_ = conn.Close()

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("SMTP server %s reachable (%dms)", addr, time.Since(start).Milliseconds()),
	}
}

func (c *SMTPReachableCheck) Fix() error { return nil }

// NewNotificationChecks creates the delivery channel checks from the
// loaded config.
func NewNotificationChecks(cfg *config.Config) []Check {
	return []Check{
		&DesktopNotifyCheck{Enabled: cfg.Notifications.Desktop},
		&SMTPReachableCheck{
			Host: cfg.Notifications.Email.Host,
			Port: cfg.Notifications.Email.Port,
		},
	}
}
