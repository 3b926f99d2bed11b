package repository

import (
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

func (r *Repository) CreateCommunity(c *domain.Community) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO communities (name, latitude, longitude, population)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	return r.dbpool.QueryRowContext(ctx, query, c.Name, c.Latitude, c.Longitude, c.Population).Scan(&c.ID, &c.CreatedAt)
}

func (r *Repository) GetAllCommunities() ([]*domain.Community, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, name, latitude, longitude, population, created_at
		FROM communities ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	communities := make([]*domain.Community, 0)
	for rows.Next() {
		c := &domain.Community{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Latitude, &c.Longitude, &c.Population, &c.CreatedAt); err != nil {
			return nil, err
		}
		communities = append(communities, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return communities, nil
}

// ImportCommunities 人口格网数据量较大，统一放在一个事务里插入
func (r *Repository) ImportCommunities(communities []*domain.Community) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO communities (name, latitude, longitude, population)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range communities {
		if err := stmt.QueryRowContext(ctx, c.Name, c.Latitude, c.Longitude, c.Population).Scan(&c.ID, &c.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}
