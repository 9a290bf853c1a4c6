package transparency

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/farxc/despesas-dw/internal/config"
	"github.com/farxc/despesas-dw/internal/logger"
	"github.com/farxc/despesas-dw/internal/store"
	"github.com/farxc/despesas-dw/internal/transparency/downloader"
	"github.com/farxc/despesas-dw/internal/transparency/load"
	"github.com/farxc/despesas-dw/internal/transparency/normalize"
	"github.com/farxc/despesas-dw/internal/transparency/types"
	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
)

const StageFetch = "fetch"

// RunReport collects what one pipeline run did, stage by stage.
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Fetches    []downloader.FetchResult
	Outcomes   []load.Outcome
}

// Failed counts the stages that ended with an error, skipped stages
// included.
func (r RunReport) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// Outcome returns the outcome recorded for stage, if any.
func (r RunReport) Outcome(stage string) (load.Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Stage == stage {
			return o, true
		}
	}
	return load.Outcome{}, false
}

type Orchestrator struct {
	cfg       *config.Config
	storage   *store.Storage
	fetcher   *downloader.Fetcher
	appLogger *logger.Logger
}

func NewOrchestrator(cfg *config.Config, storage *store.Storage, appLogger *logger.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		storage:   storage,
		fetcher:   downloader.NewFetcher(cfg.DownloadDir, cfg.HTTPTimeout, appLogger),
		appLogger: appLogger,
	}
}

// Run executes one full incremental load for [startYear, endYear]. Stages
// run in order and never undo each other; a failing stage is recorded in the
// report and the run moves on. The error is reserved for a working
// directory that cannot be created or read.
func (o *Orchestrator) Run(ctx context.Context, startYear, endYear int) (RunReport, error) {
	const component = "Orchestrator"

	report := RunReport{RunID: uuid.NewString(), StartedAt: time.Now()}
	o.appLogger.Info(component, "Starting run: id=%s years=%d-%d dir=%s", report.RunID, startYear, endYear, o.cfg.DownloadDir)

	if err := os.MkdirAll(o.cfg.DownloadDir, os.ModePerm); err != nil {
		return report, fmt.Errorf("create working directory %s: %w", o.cfg.DownloadDir, err)
	}

	urls := downloader.PeriodURLs(o.cfg.BaseURL, startYear, endYear)
	report.Fetches = o.fetcher.FetchAll(ctx, urls)
	report.Outcomes = append(report.Outcomes, fetchOutcome(report.Fetches))

	df, err := normalize.ReadDir(o.cfg.DownloadDir, o.appLogger)
	if err != nil {
		return report, err
	}
	df = normalize.Sanitize(df)

	if df.Nrow() == 0 {
		o.appLogger.Warn(component, "No rows to load: id=%s", report.RunID)
		o.finish(ctx, &report)
		return report, nil
	}

	report.Outcomes = append(report.Outcomes, load.LoadTimeDimension(ctx, df, o.storage, o.appLogger))
	for _, d := range types.CodeDimensions {
		report.Outcomes = append(report.Outcomes, load.LoadDimension(ctx, df, d, o.storage, o.appLogger))
	}
	report.Outcomes = append(report.Outcomes, o.loadFacts(ctx, df))

	o.finish(ctx, &report)
	return report, nil
}

func (o *Orchestrator) loadFacts(ctx context.Context, df dataframe.DataFrame) load.Outcome {
	const component = "Orchestrator"

	timeRows, err := o.storage.Time.ListTime(ctx)
	if err != nil {
		o.appLogger.Error(component, "Failed to read time dimension: %v", err)
		return load.Outcome{Stage: load.StageFacts, Err: err}
	}

	resolved := load.ResolveTimeKeys(df, timeRows)
	delta, err := load.SelectFactDelta(ctx, resolved, o.cfg.FactDelta, o.storage, o.appLogger)
	if err != nil {
		o.appLogger.Error(component, "Failed to select fact delta: %v", err)
		return load.Outcome{Stage: load.StageFacts, Err: err}
	}

	if delta.Nrow() == 0 {
		o.appLogger.Info(component, "No new facts to load")
		return load.Outcome{Stage: load.StageFacts, Skipped: resolved.Nrow()}
	}

	outcome := load.LoadFacts(ctx, delta, o.storage, o.appLogger)
	outcome.Skipped += resolved.Nrow() - delta.Nrow()
	return outcome
}

func (o *Orchestrator) finish(ctx context.Context, report *RunReport) {
	const component = "Orchestrator"

	report.FinishedAt = time.Now()
	for _, outcome := range report.Outcomes {
		row := &store.RunOutcome{
			RunID:      report.RunID,
			Stage:      outcome.Stage,
			Inserted:   outcome.Inserted,
			Skipped:    outcome.Skipped,
			Status:     outcome.Status(),
			ExecutedAt: report.FinishedAt.UTC(),
		}
		if outcome.Err != nil {
			row.Error = outcome.Err.Error()
		}
		if err := o.storage.RunHistory.InsertRunOutcome(ctx, row); err != nil {
			o.appLogger.Warn(component, "Failed to record outcome: stage=%s error=%v", outcome.Stage, err)
		}
	}

	o.appLogger.Info(component, "Run finished: id=%s stages=%d failed=%d elapsed=%s",
		report.RunID, len(report.Outcomes), report.Failed(), report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
}

func fetchOutcome(results []downloader.FetchResult) load.Outcome {
	outcome := load.Outcome{Stage: StageFetch}
	failed := 0
	for _, r := range results {
		switch r.Status {
		case downloader.StatusDownloaded:
			outcome.Inserted++
		case downloader.StatusFailed:
			failed++
		default:
			outcome.Skipped++
		}
	}
	if failed > 0 {
		outcome.Err = fmt.Errorf("%d of %d periods failed to download", failed, len(results))
	}
	return outcome
}
