package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "vitals", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)

	// Errors are rendered in the structured format; cobra's own usage
	// dump and error echo stay out of the way.
	assert.True(t, rootCmd.SilenceUsage)
	assert.True(t, rootCmd.SilenceErrors)
}

func TestRootCommand_HasConfigFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag, "root command should have --config flag")
	assert.Equal(t, "string", flag.Value.Type())
	assert.Equal(t, "", flag.DefValue, "config path should default to discovery order")
}

func TestRootCommand_DashboardFlags(t *testing.T) {
	interval := rootCmd.Flags().Lookup("interval")
	require.NotNil(t, interval, "root command should have --interval flag")
	assert.Equal(t, "", interval.DefValue, "empty means the config file value")

	history := rootCmd.Flags().Lookup("history")
	require.NotNil(t, history, "root command should have --history flag")
	assert.Equal(t, "0", history.DefValue, "zero means the config file value")
}

func TestConfig_ReturnsFlagValue(t *testing.T) {
	original := configFlag
	defer func() { configFlag = original }()

	configFlag = ""
	assert.Empty(t, Config())

	configFlag = "/etc/vitals/vitals.yaml"
	assert.Equal(t, "/etc/vitals/vitals.yaml", Config())
}
