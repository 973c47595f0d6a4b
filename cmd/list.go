package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/barff/cccs/internal/monitor"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles and their status",
	Long: `List every profile in the Claude Code directory and how it relates
to the active settings.json.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listFormat, "format", "table", "Output format: table, json, yaml")
}

func runList(cmd *cobra.Command, args []string) error {
	layout, err := resolveLayout()
	if err != nil {
		return err
	}

	report, err := newMonitor(layout).ForceScan(context.Background())
	if err != nil {
		return fmt.Errorf("failed to scan profiles: %w", err)
	}

	switch listFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(report)
	case "table", "":
		return outputTable(report)
	default:
		return fmt.Errorf("unknown format %q (table, json, yaml)", listFormat)
	}
}

func outputTable(report monitor.Report) error {
	if report.ActiveErr != nil {
		PrintError("%v", report.ActiveErr)
	}

	if report.Count() == 0 {
		fmt.Printf("No profiles found in %s\n", report.Dir)
		fmt.Printf("Create one by copying settings.json to {name}%s\n", cfg.Claude.ProfileSuffix)
		return nil
	}

	table := newTable("PROFILE", "STATUS", "PATH")
	for _, e := range report.Entries {
		name := e.Name
		if !e.Selectable() {
			name = color.RedString(e.Name)
		}
		table.Append([]string{name, formatStatus(e.Status), e.Path})
	}
	table.Render()

	for _, e := range report.Entries {
		if e.Err != nil {
			PrintVerbose("%s: %v", e.Name, e.Err)
		}
	}
	return nil
}
