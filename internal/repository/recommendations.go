package repository

import (
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

const recommendationColumns = `id, name, latitude, longitude, score, factors, notes, optimization_run_id, created_at, updated_at, version`

func recommendationDst(rec *domain.Recommendation) []any {
	return []any{
		&rec.ID,
		&rec.Name,
		&rec.Latitude,
		&rec.Longitude,
		&rec.Score,
		asJSONB(&rec.Factors),
		&rec.Notes,
		&rec.OptimizationRunID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.Version,
	}
}

const insertRecommendation = `
	INSERT INTO recommendations (name, latitude, longitude, score, factors, notes, optimization_run_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at, updated_at, version
`

func recommendationArgs(rec *domain.Recommendation) []any {
	if rec.Factors == nil {
		rec.Factors = []string{}
	}
	return []any{rec.Name, rec.Latitude, rec.Longitude, rec.Score, asJSONB(&rec.Factors), rec.Notes, rec.OptimizationRunID}
}

func (r *Repository) CreateRecommendation(rec *domain.Recommendation) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	dst := []any{&rec.ID, &rec.CreatedAt, &rec.UpdatedAt, &rec.Version}
	return r.dbpool.QueryRowContext(ctx, insertRecommendation, recommendationArgs(rec)...).Scan(dst...)
}

// CreateRecommendations 一次优化任务产生的推荐点要么全部写入，要么全部不写入
func (r *Repository) CreateRecommendations(recs []*domain.Recommendation) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, rec := range recs {
		dst := []any{&rec.ID, &rec.CreatedAt, &rec.UpdatedAt, &rec.Version}
		if err := tx.QueryRowContext(ctx, insertRecommendation, recommendationArgs(rec)...).Scan(dst...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetRecommendationByID(id int64) (*domain.Recommendation, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rec := &domain.Recommendation{}
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE id = $1`
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(recommendationDst(rec)...); err != nil {
		return nil, err
	}

	return rec, nil
}

// GetAllRecommendations 按得分从高到低返回
func (r *Repository) GetAllRecommendations() ([]*domain.Recommendation, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + recommendationColumns + ` FROM recommendations ORDER BY score DESC, id`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := make([]*domain.Recommendation, 0)
	for rows.Next() {
		rec := &domain.Recommendation{}
		if err := rows.Scan(recommendationDst(rec)...); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}

func (r *Repository) UpdateRecommendation(rec *domain.Recommendation) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE recommendations
		SET
			name = $1,
			latitude = $2,
			longitude = $3,
			score = $4,
			factors = $5,
			notes = $6,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING updated_at, version
	`

	if rec.Factors == nil {
		rec.Factors = []string{}
	}
	args := []any{rec.Name, rec.Latitude, rec.Longitude, rec.Score, asJSONB(&rec.Factors), rec.Notes, rec.ID, rec.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&rec.UpdatedAt, &rec.Version)
}

func (r *Repository) DeleteRecommendation(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `DELETE FROM recommendations WHERE id = $1`, id)
	return err
}
