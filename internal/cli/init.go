package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/rileyhilliard/vitals/internal/config"
	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/ui"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Overwrite      bool // Overwrite existing config without asking
	NonInteractive bool // Skip prompts, write the built-in defaults
}

// Init creates a new vitals.yaml configuration file.
func Init(opts InitOptions) error {
	configPath := filepath.Join(".", config.FileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.FileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()

	if !opts.NonInteractive {
		if err := runInitWizard(cfg); err != nil {
			return err
		}
	}

	if err := config.Write(configPath, cfg); err != nil {
		return err
	}

	fmt.Printf("%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Println("Next steps:")
	fmt.Println("  vitals           - Start the dashboard")
	fmt.Println("  vitals snapshot  - Take a one-shot sample")
	fmt.Println("  vitals doctor    - Check the environment")

	return nil
}

// initCommand adapts the command flags onto Init.
func initCommand(force, yes bool) error {
	return Init(InitOptions{
		Overwrite:      force,
		NonInteractive: yes,
	})
}

// runInitWizard collects settings interactively and applies them to cfg.
func runInitWizard(cfg *config.Config) error {
	// Start from the defaults.
	interval := "2s"
	families := []string{"cpu", "memory", "disk", "network", "processes"}
	desktop := true
	emailEnabled := false

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sampling interval").
				Description("How often metrics are collected").
				Options(
					huh.NewOption("1s — responsive, higher overhead", "1s"),
					huh.NewOption("2s — the default", "2s"),
					huh.NewOption("5s — relaxed", "5s"),
					huh.NewOption("10s — background monitoring", "10s"),
				).
				Value(&interval),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Metric families").
				Description("Space toggles, enter confirms; at least one is required").
				Options(
					huh.NewOption("CPU usage and load", "cpu").Selected(true),
					huh.NewOption("Memory and swap", "memory").Selected(true),
					huh.NewOption("Disk usage", "disk").Selected(true),
					huh.NewOption("Network throughput", "network").Selected(true),
					huh.NewOption("Per-process table", "processes").Selected(true),
				).
				Validate(func(selected []string) error {
					if len(selected) == 0 {
						return fmt.Errorf("select at least one metric family")
					}
					return nil
				}).
				Value(&families),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Desktop notifications?").
				Description("Firing alerts pop up via notify-send").
				Value(&desktop),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Email notifications?").
				Description("Rules with the email action deliver over SMTP").
				Value(&emailEnabled),
		),
	)
	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility, or run 'vitals init --yes' for defaults")
	}

	cfg.Interval, _ = time.ParseDuration(interval)
	cfg.Metrics = config.MetricsConfig{}
	for _, f := range families {
		switch f {
		case "cpu":
			cfg.Metrics.CPU = true
		case "memory":
			cfg.Metrics.Memory = true
		case "disk":
			cfg.Metrics.Disk = true
		case "network":
			cfg.Metrics.Network = true
		case "processes":
			cfg.Metrics.Processes = true
		}
	}
	cfg.Notifications.Desktop = desktop

	if emailEnabled {
		return emailForm(cfg)
	}
	return nil
}

// emailForm collects the SMTP settings when email delivery is enabled.
func emailForm(cfg *config.Config) error {
	host := ""
	port := "587"
	from := ""
	to := ""
	username := ""
	password := ""

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("SMTP host").
				Placeholder("smtp.example.com").
				Value(&host).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("SMTP host is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("SMTP port").
				Value(&port).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 || n > 65535 {
						return fmt.Errorf("port must be a number between 1 and 65535")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("From address").
				Placeholder("vitals@example.com").
				Value(&from).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("from address is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("To address").
				Placeholder("you@example.com").
				Value(&to).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("recipient is required")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("SMTP username (optional)").
				Value(&username),
			huh.NewInput().
				Title("SMTP password (optional)").
				EchoMode(huh.EchoModePassword).
				Value(&password),
		),
	)
	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility, or write vitals.yaml by hand")
	}

	cfg.Notifications.Email.Host = strings.TrimSpace(host)
	cfg.Notifications.Email.Port, _ = strconv.Atoi(strings.TrimSpace(port))
	cfg.Notifications.Email.From = strings.TrimSpace(from)
	cfg.Notifications.Email.To = strings.TrimSpace(to)
	cfg.Notifications.Email.Username = strings.TrimSpace(username)
	cfg.Notifications.Email.Password = strings.TrimSpace(password)
	return nil
}
