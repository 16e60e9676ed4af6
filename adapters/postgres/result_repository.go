package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"gorqa/app"
	"gorqa/domain/core"
	"gorqa/domain/rqa"
	apperrors "gorqa/internal/errors"
	"gorqa/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS rqa_results (
	run_id     TEXT NOT NULL,
	year       INT NOT NULL,
	grp        TEXT NOT NULL,
	days       INT NOT NULL,
	threshold  DOUBLE PRECISION NOT NULL,
	rr         DOUBLE PRECISION NOT NULL,
	det        DOUBLE PRECISION NOT NULL,
	lam        DOUBLE PRECISION NOT NULL,
	l          DOUBLE PRECISION NOT NULL,
	l_max      DOUBLE PRECISION NOT NULL,
	entr       DOUBLE PRECISION NOT NULL,
	tt         DOUBLE PRECISION NOT NULL,
	v_max      DOUBLE PRECISION NOT NULL,
	v_entr     DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, year, grp)
);

CREATE TABLE IF NOT EXISTS rqa_failures (
	run_id  TEXT NOT NULL,
	year    INT NOT NULL,
	kind    TEXT NOT NULL,
	message TEXT NOT NULL,
	PRIMARY KEY (run_id, year)
);`

// ResultRepositoryImpl implements ports.ResultRepository for PostgreSQL
type ResultRepositoryImpl struct {
	db *sqlx.DB
}

// NewResultRepository creates a new PostgreSQL result repository
func NewResultRepository(db *sqlx.DB) ports.ResultRepository {
	return &ResultRepositoryImpl{db: db}
}

// EnsureSchema creates the result tables if they do not exist
func EnsureSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return apperrors.Wrap(err, "failed to create result schema")
	}
	return nil
}

type resultRow struct {
	RunID     string    `db:"run_id"`
	Year      int       `db:"year"`
	Group     string    `db:"grp"`
	Days      int       `db:"days"`
	Threshold float64   `db:"threshold"`
	CreatedAt time.Time `db:"created_at"`
	rqa.Result
}

// SaveBatch stores the per-year results, group memberships and failures of
// one run.
func (r *ResultRepositoryImpl) SaveBatch(ctx context.Context, batch *app.BatchResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	const insertResult = `
		INSERT INTO rqa_results (run_id, year, grp, days, threshold,
			rr, det, lam, l, l_max, entr, tt, v_max, v_entr, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	for _, group := range []app.GroupSummary{batch.Treatment, batch.Control} {
		for _, year := range group.Years {
			analysis := batch.Years[year]
			res := analysis.Result
			if _, err := tx.ExecContext(ctx, insertResult,
				batch.RunID.String(), year, group.Name, analysis.Days, analysis.Threshold,
				res.RR, res.DET, res.LAM, res.L, res.LMax, res.ENTR, res.TT, res.VMax, res.VEntr,
				batch.CreatedAt.Time(),
			); err != nil {
				return apperrors.Wrapf(err, "failed to insert result for year %d", year)
			}
		}
	}

	for _, failure := range batch.Failures {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO rqa_failures (run_id, year, kind, message)
			VALUES ($1, $2, $3, $4)`,
			batch.RunID.String(), failure.Year, failure.Kind, failure.Message,
		); err != nil {
			return apperrors.Wrapf(err, "failed to insert failure for year %d", failure.Year)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, "failed to commit batch")
	}
	return nil
}

// GetBatch reconstructs a stored run. Group means are recomputed from the
// stored per-year metrics.
func (r *ResultRepositoryImpl) GetBatch(ctx context.Context, runID core.RunID) (*app.BatchResult, error) {
	var rows []resultRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT run_id, year, grp, days, threshold,
			rr, det, lam, l, l_max, entr, tt, v_max, v_entr, created_at
		FROM rqa_results
		WHERE run_id = $1
		ORDER BY year`, runID.String())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load batch results")
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFound("run")
	}

	batch := &app.BatchResult{
		RunID: runID,
		Years: make(map[int]*app.YearAnalysis),
	}
	groupYears := map[string][]int{}
	for _, row := range rows {
		batch.CreatedAt = core.NewTimestamp(row.CreatedAt)
		batch.Years[row.Year] = &app.YearAnalysis{
			Year:      row.Year,
			Days:      row.Days,
			Threshold: row.Threshold,
			Result:    row.Result,
		}
		groupYears[row.Group] = append(groupYears[row.Group], row.Year)
	}
	batch.Treatment = app.SummarizeGroup("treatment", groupYears["treatment"], batch.Years)
	batch.Control = app.SummarizeGroup("control", groupYears["control"], batch.Years)

	var failures []app.YearFailure
	err = r.db.SelectContext(ctx, &failures, `
		SELECT year, kind, message FROM rqa_failures
		WHERE run_id = $1
		ORDER BY year`, runID.String())
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Wrap(err, "failed to load batch failures")
	}
	batch.Failures = failures

	return batch, nil
}

// ListRuns returns the most recent run IDs, newest first.
func (r *ResultRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]core.RunID, error) {
	if limit <= 0 {
		limit = 50
	}
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `
		SELECT run_id FROM rqa_results
		GROUP BY run_id
		ORDER BY MAX(created_at) DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list runs")
	}

	runs := make([]core.RunID, len(ids))
	for i, id := range ids {
		runs[i] = core.RunID(id)
	}
	return runs, nil
}
