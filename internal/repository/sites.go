package repository

import (
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

const siteColumns = `id, name, code, latitude, longitude, type, description, image_url, created_at, version`

func siteDst(s *domain.Site) []any {
	return []any{&s.ID, &s.Name, &s.Code, &s.Latitude, &s.Longitude, &s.Type, &s.Description, &s.ImageURL, &s.CreatedAt, &s.Version}
}

func (r *Repository) CreateSite(s *domain.Site) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO sites (name, code, latitude, longitude, type, description, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`

	args := []any{s.Name, s.Code, s.Latitude, s.Longitude, s.Type, s.Description, s.ImageURL}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.Version)
}

func (r *Repository) GetSiteByID(id int64) (*domain.Site, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	s := &domain.Site{}
	query := `SELECT ` + siteColumns + ` FROM sites WHERE id = $1`
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(siteDst(s)...); err != nil {
		return nil, err
	}

	return s, nil
}

func (r *Repository) GetAllSites() ([]*domain.Site, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, `SELECT `+siteColumns+` FROM sites ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sites := make([]*domain.Site, 0)
	for rows.Next() {
		s := &domain.Site{}
		if err := rows.Scan(siteDst(s)...); err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sites, nil
}

func (r *Repository) UpdateSite(s *domain.Site) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE sites
		SET
			name = $1,
			code = $2,
			latitude = $3,
			longitude = $4,
			type = $5,
			description = $6,
			image_url = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version
	`

	args := []any{s.Name, s.Code, s.Latitude, s.Longitude, s.Type, s.Description, s.ImageURL, s.ID, s.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&s.Version)
}

func (r *Repository) DeleteSite(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `DELETE FROM sites WHERE id = $1`, id)
	return err
}
