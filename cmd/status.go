package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active profile",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	layout, err := resolveLayout()
	if err != nil {
		return err
	}

	m := newMonitor(layout)
	report, err := m.ForceScan(context.Background())
	if err != nil {
		return fmt.Errorf("failed to scan profiles: %w", err)
	}

	active := color.YellowString("none")
	if name, ok := report.Active(); ok {
		active = color.GreenString(name)
	} else if report.ActiveErr != nil {
		active = color.RedString("unreadable")
	}

	fmt.Printf("  Directory:     %s\n", color.CyanString(report.Dir))
	fmt.Printf("  Active:        %s\n", active)
	fmt.Printf("  Profiles:      %d\n", report.Count())
	fmt.Printf("  Interval:      %d minutes\n", cfg.Monitor.IntervalMinutes)
	fmt.Printf("  Auto start:    %s\n", formatBool(cfg.Monitor.AutoStart))
	fmt.Printf("  Notifications: %s\n", formatBool(cfg.Notifications.Enabled))

	if report.ActiveErr != nil {
		fmt.Println()
		PrintError("%v", report.ActiveErr)
	}

	stats := m.Stats()
	PrintVerbose("Monitored files: %d, snapshots: %d", stats.MonitoredFiles, stats.Snapshots)
	return nil
}
