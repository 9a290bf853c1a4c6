package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const TableRunHistory = "etl_execucao"

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

type RunHistoryStore struct {
	db *sqlx.DB
	t  tables
}

func (rh *RunHistoryStore) InsertRunOutcome(ctx context.Context, outcome *RunOutcome) error {
	if outcome.ExecutedAt.IsZero() {
		outcome.ExecutedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`INSERT INTO %s (
		run_id,
		etapa,
		inseridos,
		ignorados,
		status,
		erro,
		executado_em
	) VALUES (
		:run_id,
		:etapa,
		:inseridos,
		:ignorados,
		:status,
		:erro,
		:executado_em
	)`, rh.t.name(TableRunHistory))

	if _, err := rh.db.NamedExecContext(ctx, query, outcome); err != nil {
		return fmt.Errorf("failed to insert run outcome: %w", err)
	}
	return nil
}

func (rh *RunHistoryStore) GetLatest(ctx context.Context, limit int) ([]RunOutcome, error) {
	query := rh.db.Rebind(fmt.Sprintf(`
	SELECT id, run_id, etapa, inseridos, ignorados, status, erro, executado_em
	FROM %s
	ORDER BY id DESC
	LIMIT ?`, rh.t.name(TableRunHistory)))

	var history []RunOutcome
	if err := rh.db.SelectContext(ctx, &history, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	return history, nil
}
