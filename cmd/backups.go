package cmd

import (
	"fmt"
	"strconv"

	"github.com/barff/cccs/internal/profile"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List settings.json backups taken before switches",
	Args:  cobra.NoArgs,
	RunE:  runBackups,
}

var backupsPrune bool

func init() {
	rootCmd.AddCommand(backupsCmd)

	backupsCmd.Flags().BoolVar(&backupsPrune, "prune", false, "remove backups beyond switch.keepBackups")
}

func runBackups(cmd *cobra.Command, args []string) error {
	layout, err := resolveLayout()
	if err != nil {
		return err
	}

	if backupsPrune {
		removed, err := profile.PruneBackups(layout, cfg.Switch.KeepBackups)
		if err != nil {
			return fmt.Errorf("failed to prune backups: %w", err)
		}
		fmt.Printf("%s Removed %d backups\n", color.GreenString("✓"), removed)
	}

	backups, err := profile.ListBackups(layout)
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Println("No backups found")
		return nil
	}

	table := newTable("TAKEN", "SIZE", "PATH")
	for _, b := range backups {
		table.Append([]string{
			b.TakenAt.Format("2006-01-02 15:04:05"),
			strconv.FormatInt(b.Size, 10),
			b.Path,
		})
	}
	table.Render()
	return nil
}
