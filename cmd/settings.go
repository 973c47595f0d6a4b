package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/barff/cccs/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View or change cccs settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsIntervalCmd = &cobra.Command{
	Use:   "set-interval <minutes>",
	Short: "Set the scan interval (1-60 minutes)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", args[0], err)
		}
		return updateSettings(func(c *config.Config) { c.Monitor.IntervalMinutes = minutes })
	},
}

var settingsNotificationsCmd = &cobra.Command{
	Use:   "set-notifications <on|off>",
	Short: "Enable or disable desktop notifications",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := parseOnOff(args[0])
		if err != nil {
			return err
		}
		return updateSettings(func(c *config.Config) { c.Notifications.Enabled = enabled })
	},
}

var settingsLanguageCmd = &cobra.Command{
	Use:   "set-language <code>",
	Short: "Set the notification language (" + strings.Join(config.Languages, ", ") + ")",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang := args[0]
		if lang == "auto" {
			lang = ""
		}
		return updateSettings(func(c *config.Config) { c.Language = lang })
	},
}

var settingsAutoStartCmd = &cobra.Command{
	Use:   "set-auto-start <on|off>",
	Short: "Watch by default when cccs runs without a subcommand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := parseOnOff(args[0])
		if err != nil {
			return err
		}
		return updateSettings(func(c *config.Config) { c.Monitor.AutoStart = enabled })
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsIntervalCmd)
	settingsCmd.AddCommand(settingsNotificationsCmd)
	settingsCmd.AddCommand(settingsLanguageCmd)
	settingsCmd.AddCommand(settingsAutoStartCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	lang := cfg.Language
	if lang == "" {
		lang = "auto"
	}
	dir := cfg.Claude.Dir
	if dir == "" {
		dir = "auto-detect"
	}

	fmt.Printf("  Config file:   %s\n", config.Path(cfgFile))
	fmt.Printf("  Claude dir:    %s\n", dir)
	fmt.Printf("  Interval:      %d minutes\n", cfg.Monitor.IntervalMinutes)
	fmt.Printf("  Auto start:    %s\n", formatBool(cfg.Monitor.AutoStart))
	fmt.Printf("  FS events:     %s\n", formatBool(cfg.Monitor.FSNotify))
	fmt.Printf("  Notifications: %s\n", formatBool(cfg.Notifications.Enabled))
	fmt.Printf("  Language:      %s\n", lang)
	fmt.Printf("  Keep backups:  %d\n", cfg.Switch.KeepBackups)
	return nil
}

// updateSettings applies fn to the stored configuration and writes it back.
// Flag overrides from this invocation are not persisted.
func updateSettings(fn func(*config.Config)) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	fn(c)

	path := config.Path(cfgFile)
	if err := config.Save(path, c); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Printf("%s Settings saved to %s\n", color.GreenString("✓"), path)
	return nil
}
