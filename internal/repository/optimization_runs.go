package repository

import (
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

const optimizationRunColumns = `
	id, status, parameters, selected_lot_ids, covered_weight, existing_weight, total_weight,
	fitness_trace, generations, stop_reason, error_message, requested_by, created_at, started_at,
	finished_at, version
`

func optimizationRunDst(run *domain.OptimizationRun) []any {
	return []any{
		&run.ID,
		&run.Status,
		asJSONB(&run.Parameters),
		asJSONB(&run.SelectedLotIDs),
		&run.CoveredWeight,
		&run.ExistingWeight,
		&run.TotalWeight,
		asJSONB(&run.FitnessTrace),
		&run.Generations,
		&run.StopReason,
		&run.ErrorMessage,
		&run.RequestedBy,
		&run.CreatedAt,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Version,
	}
}

// CreateOptimizationRun 新建的任务处于 pending 状态，等待 worker 领取
func (r *Repository) CreateOptimizationRun(run *domain.OptimizationRun) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO optimization_runs (status, parameters, requested_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	run.Status = domain.OptimizationRunPending
	args := []any{run.Status, asJSONB(&run.Parameters), run.RequestedBy}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&run.ID, &run.CreatedAt, &run.Version)
}

func (r *Repository) GetOptimizationRunByID(id int64) (*domain.OptimizationRun, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	run := &domain.OptimizationRun{}
	query := `SELECT ` + optimizationRunColumns + ` FROM optimization_runs WHERE id = $1`
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(optimizationRunDst(run)...); err != nil {
		return nil, err
	}

	return run, nil
}

func (r *Repository) GetAllOptimizationRuns() ([]*domain.OptimizationRun, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + optimizationRunColumns + ` FROM optimization_runs ORDER BY id DESC`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*domain.OptimizationRun, 0)
	for rows.Next() {
		run := &domain.OptimizationRun{}
		if err := rows.Scan(optimizationRunDst(run)...); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// MarkOptimizationRunRunning 只有 pending 状态的任务可以被领取
// 任务已被领取（例如消息被重复投递）时返回 sql.ErrNoRows
func (r *Repository) MarkOptimizationRunRunning(run *domain.OptimizationRun) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE optimization_runs
		SET status = $1, started_at = NOW(), version = version + 1
		WHERE id = $2 AND status = $3
		RETURNING started_at, version
	`

	args := []any{domain.OptimizationRunRunning, run.ID, domain.OptimizationRunPending}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&run.StartedAt, &run.Version); err != nil {
		return err
	}

	run.Status = domain.OptimizationRunRunning
	return nil
}

func (r *Repository) CompleteOptimizationRun(run *domain.OptimizationRun) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE optimization_runs
		SET
			status = $1,
			selected_lot_ids = $2,
			covered_weight = $3,
			existing_weight = $4,
			total_weight = $5,
			fitness_trace = $6,
			generations = $7,
			stop_reason = $8,
			finished_at = NOW(),
			version = version + 1
		WHERE id = $9 AND status = $10
		RETURNING finished_at, version
	`

	args := []any{
		domain.OptimizationRunSucceeded,
		asJSONB(&run.SelectedLotIDs),
		run.CoveredWeight,
		run.ExistingWeight,
		run.TotalWeight,
		asJSONB(&run.FitnessTrace),
		run.Generations,
		run.StopReason,
		run.ID,
		domain.OptimizationRunRunning,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&run.FinishedAt, &run.Version); err != nil {
		return err
	}

	run.Status = domain.OptimizationRunSucceeded
	return nil
}

func (r *Repository) FailOptimizationRun(run *domain.OptimizationRun, reason string) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE optimization_runs
		SET status = $1, error_message = $2, finished_at = NOW(), version = version + 1
		WHERE id = $3 AND status IN ($4, $5)
		RETURNING finished_at, version
	`

	args := []any{domain.OptimizationRunFailed, reason, run.ID, domain.OptimizationRunPending, domain.OptimizationRunRunning}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&run.FinishedAt, &run.Version); err != nil {
		return err
	}

	run.Status = domain.OptimizationRunFailed
	run.ErrorMessage = reason
	return nil
}

// CountActiveOptimizationRuns 统计某个用户尚未结束的任务数量
func (r *Repository) CountActiveOptimizationRuns(userID int64) (int, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	var count int
	query := `SELECT COUNT(*) FROM optimization_runs WHERE requested_by = $1 AND status IN ($2, $3)`
	if err := r.dbpool.QueryRowContext(ctx, query, userID, domain.OptimizationRunPending, domain.OptimizationRunRunning).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}
