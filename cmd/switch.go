package cmd

import (
	"context"
	"fmt"

	"github.com/barff/cccs/internal/notification"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var switchCmd = &cobra.Command{
	Use:   "switch <profile>",
	Short: "Activate a profile",
	Long: `Replace the active settings.json with the named profile.

The previous settings.json is kept as a timestamped backup. The switch is
atomic: on any failure the active configuration is left unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runSwitch,
}

func init() {
	rootCmd.AddCommand(switchCmd)
}

func runSwitch(cmd *cobra.Command, args []string) error {
	name := args[0]

	layout, err := resolveLayout()
	if err != nil {
		return err
	}

	announcer := notification.NewAnnouncer(nil, cfg.Notifications, cfg.Language)
	m := newMonitor(layout)

	if err := m.Activate(context.Background(), name); err != nil {
		announcer.SwitchFailed(name, err)
		return fmt.Errorf("failed to switch to %s: %w", name, err)
	}

	fmt.Printf("%s Switched to %s\n", color.GreenString("✓"), color.CyanString(name))
	announcer.Switched(name)
	return nil
}
