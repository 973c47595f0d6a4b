package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/barff/cccs/internal/config"
	"github.com/barff/cccs/internal/monitor"
	"github.com/barff/cccs/internal/notification"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor the active profile in the foreground",
	Long: `Scan the Claude Code directory periodically and report when the
active profile changes, profiles appear or disappear, or settings.json
becomes unreadable.

Send SIGHUP to reload the configuration file. Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchInterval        int
	watchNoNotifications bool
	watchFSNotify        bool
	watchMetricsAddr     string
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().IntVar(&watchInterval, "interval", 0, "scan interval in minutes, 1-60 (default from config)")
	watchCmd.Flags().BoolVar(&watchNoNotifications, "no-notifications", false, "disable desktop notifications")
	watchCmd.Flags().BoolVar(&watchFSNotify, "fsnotify", false, "also rescan on filesystem events")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
}

func runWatch(cmd *cobra.Command, args []string) error {
	layout, err := resolveLayout()
	if err != nil {
		return err
	}

	interval := cfg.Monitor.IntervalMinutes
	if watchInterval != 0 {
		interval = watchInterval
	}
	if err := monitor.ValidateInterval(interval); err != nil {
		return err
	}

	notifyCfg := cfg.Notifications
	if watchNoNotifications {
		notifyCfg.Enabled = false
	}
	announcer := notification.NewAnnouncer(nil, notifyCfg, cfg.Language)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []monitor.Option{
		monitor.WithIntervalHook(func(minutes int) {
			log.Info().Int("minutes", minutes).Msg("Scan interval changed")
		}),
	}
	metricsAddr := cfg.Monitor.MetricsAddr
	if watchMetricsAddr != "" {
		metricsAddr = watchMetricsAddr
	}
	if metricsAddr != "" {
		opts = append(opts, monitor.WithMetrics(startMetricsServer(ctx, metricsAddr)))
	}
	m := newMonitor(layout, opts...)

	onChange := func(r monitor.Report) {
		for _, c := range announcer.OnReport(r) {
			printChange(r.At, c)
		}
	}

	fmt.Printf("Watching %s every %d minutes (Ctrl+C to stop)\n", color.CyanString(layout.Dir), interval)
	if err := m.Start(ctx, interval, onChange); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}
	defer m.Stop()

	if report, ok := m.Report(); ok {
		if name, active := report.Active(); active {
			fmt.Printf("Active profile: %s\n", color.GreenString(name))
		} else {
			fmt.Printf("Active profile: %s\n", color.YellowString("none"))
		}
	}

	if watchFSNotify || cfg.Monitor.FSNotify {
		w, err := monitor.NewWatcher(m, cfg.Monitor.Debounce)
		if err != nil {
			log.Warn().Err(err).Msg("Filesystem events unavailable, relying on periodic scans")
		} else {
			go w.Run(ctx)
		}
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			stats := m.Stats()
			fmt.Printf("\nStopped. %d files monitored, last pass %s\n",
				stats.MonitoredFiles, formatTime(stats.LastPass))
			return nil
		case <-hup:
			reloadWatch(m)
		}
	}
}

// reloadWatch applies a changed interval from the configuration file
func reloadWatch(m *monitor.Monitor) {
	c, err := config.Load(cfgFile)
	if err != nil {
		log.Error().Err(err).Msg("Failed to reload config")
		return
	}
	if watchInterval != 0 {
		return
	}
	if err := m.SetInterval(c.Monitor.IntervalMinutes); err != nil {
		log.Error().Err(err).Msg("Failed to apply interval")
		return
	}
	cfg.Monitor.IntervalMinutes = c.Monitor.IntervalMinutes
}

func printChange(at time.Time, c notification.Change) {
	stamp := at.Format("15:04:05")
	switch c.Kind {
	case notification.ActiveChanged:
		if c.Profile == "" {
			fmt.Printf("[%s] Active configuration no longer matches a profile\n", stamp)
		} else {
			fmt.Printf("[%s] Active profile: %s\n", stamp, color.GreenString(c.Profile))
		}
	case notification.ProfileAdded:
		fmt.Printf("[%s] Profile added: %s\n", stamp, color.CyanString(c.Profile))
	case notification.ProfileRemoved:
		fmt.Printf("[%s] Profile removed: %s\n", stamp, color.YellowString(c.Profile))
	case notification.ActiveUnreadable:
		fmt.Printf("[%s] %s\n", stamp, color.RedString("settings.json could not be read"))
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("15:04:05")
}
