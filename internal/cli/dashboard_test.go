package cli

import (
	"testing"
	"time"

	"github.com/rileyhilliard/vitals/internal/config"
	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFlagOverrides(t *testing.T) {
	tests := []struct {
		name         string
		interval     string
		history      int
		wantErr      bool
		wantInterval time.Duration
		wantHistory  int
	}{
		{
			name:         "no overrides keep config values",
			interval:     "",
			history:      0,
			wantInterval: 2 * time.Second,
			wantHistory:  300,
		},
		{
			name:         "valid interval",
			interval:     "5s",
			wantInterval: 5 * time.Second,
			wantHistory:  300,
		},
		{
			name:         "interval at the floor",
			interval:     "100ms",
			wantInterval: 100 * time.Millisecond,
			wantHistory:  300,
		},
		{
			name:     "interval below the floor",
			interval: "50ms",
			wantErr:  true,
		},
		{
			name:     "bare number is not a duration",
			interval: "5",
			wantErr:  true,
		},
		{
			name:     "interval not a duration",
			interval: "fast",
			wantErr:  true,
		},
		{
			name:    "negative history",
			history: -1,
			wantErr: true,
		},
		{
			name:         "positive history",
			history:      600,
			wantInterval: 2 * time.Second,
			wantHistory:  600,
		},
		{
			name:         "both overridden",
			interval:     "1m",
			history:      60,
			wantInterval: time.Minute,
			wantHistory:  60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			err := applyFlagOverrides(cfg, tt.interval, tt.history)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantInterval, cfg.Interval)
			assert.Equal(t, tt.wantHistory, cfg.History)
		})
	}
}
