package cli

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/vitals/internal/config"
	"github.com/rileyhilliard/vitals/internal/ledger"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/notify"
	"github.com/stretchr/testify/assert"
)

func TestLedgerPath_StateDirOverride(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.StateDir = "/var/lib/vitals"

	assert.Equal(t, filepath.Join("/var/lib/vitals", "alerts.db"), ledgerPath(cfg))
}

func TestLedgerPath_DefaultLocation(t *testing.T) {
	cfg := config.DefaultConfig()

	got := ledgerPath(cfg)
	assert.Equal(t, ledger.DefaultPath(), got)
	assert.True(t, strings.HasSuffix(got, "alerts.db"))
}

func TestNotifyConfig_MapsNotificationsSection(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Notifications.Desktop = false
	cfg.Notifications.Timeout = 9 * time.Second
	cfg.Notifications.RateLimit = 3
	cfg.Notifications.Email = notify.EmailConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "vitals@example.com",
		To:   "ops@example.com",
	}
	cfg.Templates = map[string]string{"cpu_high": "cpu at {{.Value}}%"}

	nc := notifyConfig(cfg, logger.Noop())

	assert.False(t, nc.Desktop)
	assert.Equal(t, cfg.Notifications.Email, nc.Email)
	assert.Equal(t, cfg.Templates, nc.Templates)
	assert.Equal(t, 9*time.Second, nc.Timeout)
	assert.Equal(t, 3, nc.RatePerMinute)
}

func TestNotifyConfig_Defaults(t *testing.T) {
	cfg := config.DefaultConfig()

	nc := notifyConfig(cfg, logger.Noop())

	assert.True(t, nc.Desktop, "desktop channel defaults on")
	assert.False(t, nc.Email.Configured(), "email defaults off")
	assert.Equal(t, notify.DefaultTimeout, nc.Timeout)
	assert.Equal(t, notify.DefaultRatePerMinute, nc.RatePerMinute)
}
