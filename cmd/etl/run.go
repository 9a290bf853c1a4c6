package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/farxc/despesas-dw/internal/transparency"
	"github.com/spf13/cobra"
)

var (
	startYear    int
	endYear      int
	ensureSchema bool
	monitorEvery time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, normalize and load every month of the configured year range",
	RunE:  runETL,
}

func init() {
	runCmd.Flags().IntVar(&startYear, "start-year", 0, "first year to load (default: from config)")
	runCmd.Flags().IntVar(&endYear, "end-year", 0, "last year to load (default: from config, or the current year)")
	runCmd.Flags().BoolVar(&ensureSchema, "ensure-schema", true, "create missing warehouse tables before loading")
	runCmd.Flags().DurationVar(&monitorEvery, "monitor", 0, "sample memory and goroutines at this interval (0 disables)")
}

func runETL(cmd *cobra.Command, args []string) error {
	const component = "Main"
	startingTime := time.Now()

	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var monitor *MemoryMonitor
	if monitorEvery > 0 {
		monitor = NewMonitor()
		monitor.Start(monitorEvery, a.appLogger)
	}

	if ensureSchema {
		if err := a.storage.Schema.EnsureSchema(ctx); err != nil {
			a.appLogger.Error(component, "Schema check failed: error=%v", err)
			return err
		}
	}

	first, last := a.cfg.YearRange(time.Now())
	if startYear != 0 {
		first = startYear
	}
	if endYear != 0 {
		last = endYear
	}
	if last < first {
		return fmt.Errorf("end year %d is before start year %d", last, first)
	}

	report, err := transparency.NewOrchestrator(a.cfg, a.storage, a.appLogger).Run(ctx, first, last)
	if err != nil {
		a.appLogger.Error(component, "Run aborted: error=%v", err)
		return err
	}

	for _, o := range report.Outcomes {
		a.appLogger.Info(component, "Stage %s: status=%s inserted=%d skipped=%d", o.Stage, o.Status(), o.Inserted, o.Skipped)
	}

	if monitor != nil {
		stats := monitor.Stop()
		a.appLogger.Info(component, "Resource peaks: goroutines=%d memoryMB=%d", stats.PeakGoroutines, stats.PeakMemoryMB)
	}

	a.appLogger.Info(component, "Application completed: run=%s duration=%.2f seconds", report.RunID, time.Since(startingTime).Seconds())
	return nil
}
