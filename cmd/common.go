package cmd

import (
	"fmt"
	"os"

	"github.com/barff/cccs/internal/claude"
	"github.com/barff/cccs/internal/monitor"
	"github.com/barff/cccs/internal/profile"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// resolveLayout locates the Claude Code directory and applies the configured naming
func resolveLayout() (profile.Layout, error) {
	dir, err := claude.NewDetector(cfg.Claude.SettingsFile).Detect(cfg.Claude.Dir)
	if err != nil {
		return profile.Layout{}, fmt.Errorf("failed to locate Claude Code directory: %w", err)
	}
	PrintVerbose("Using Claude Code directory: %s", dir)
	return cfg.Layout(dir), nil
}

// newMonitor builds a monitor wired to the loaded configuration
func newMonitor(layout profile.Layout, opts ...monitor.Option) *monitor.Monitor {
	switcher := profile.NewSwitcher(layout, profile.WithKeepBackups(cfg.Switch.KeepBackups))
	opts = append([]monitor.Option{
		monitor.WithVolatileField(cfg.Claude.VolatileField),
		monitor.WithSwitcher(switcher),
	}, opts...)
	return monitor.New(layout, opts...)
}

func newTable(headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

func formatStatus(s profile.Status) string {
	switch s {
	case profile.StatusFullMatch:
		return color.GreenString("active")
	case profile.StatusPartialMatch:
		return color.CyanString("active (model differs)")
	case profile.StatusNoMatch:
		return "-"
	default:
		return color.RedString("error")
	}
}

func formatBool(b bool) string {
	if b {
		return color.GreenString("on")
	}
	return color.YellowString("off")
}

// parseOnOff accepts on/off style arguments
func parseOnOff(arg string) (bool, error) {
	switch arg {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", arg)
}
