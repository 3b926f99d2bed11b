package repository

import (
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

const parkingLotColumns = `id, name, code, latitude, longitude, capacity, available_spaces, address, phone, created_at, version`

func parkingLotDst(p *domain.ParkingLot) []any {
	return []any{&p.ID, &p.Name, &p.Code, &p.Latitude, &p.Longitude, &p.Capacity, &p.AvailableSpaces, &p.Address, &p.Phone, &p.CreatedAt, &p.Version}
}

func (r *Repository) CreateParkingLot(p *domain.ParkingLot) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO parking_lots (name, code, latitude, longitude, capacity, available_spaces, address, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	args := []any{p.Name, p.Code, p.Latitude, p.Longitude, p.Capacity, p.AvailableSpaces, p.Address, p.Phone}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.Version)
}

func (r *Repository) GetParkingLotByID(id int64) (*domain.ParkingLot, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + parkingLotColumns + ` FROM parking_lots WHERE id = $1`

	p := &domain.ParkingLot{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(parkingLotDst(p)...); err != nil {
		return nil, err
	}

	return p, nil
}

// GetAllParkingLots 按 id 升序返回，优化任务中候选设施的下标与这个顺序一一对应
func (r *Repository) GetAllParkingLots() ([]*domain.ParkingLot, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + parkingLotColumns + ` FROM parking_lots ORDER BY id`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lots := make([]*domain.ParkingLot, 0)
	for rows.Next() {
		p := &domain.ParkingLot{}
		if err := rows.Scan(parkingLotDst(p)...); err != nil {
			return nil, err
		}
		lots = append(lots, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lots, nil
}

func (r *Repository) UpdateParkingLot(p *domain.ParkingLot) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE parking_lots
		SET
			name = $1,
			code = $2,
			latitude = $3,
			longitude = $4,
			capacity = $5,
			available_spaces = $6,
			address = $7,
			phone = $8,
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING version
	`

	args := []any{p.Name, p.Code, p.Latitude, p.Longitude, p.Capacity, p.AvailableSpaces, p.Address, p.Phone, p.ID, p.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&p.Version)
}

func (r *Repository) DeleteParkingLot(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `DELETE FROM parking_lots WHERE id = $1`, id)
	return err
}

func (r *Repository) ImportParkingLots(lots []*domain.ParkingLot) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO parking_lots (name, code, latitude, longitude, capacity, available_spaces, address, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`
	for _, p := range lots {
		args := []any{p.Name, p.Code, p.Latitude, p.Longitude, p.Capacity, p.AvailableSpaces, p.Address, p.Phone}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.Version); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) CountParkingLots() (int, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	var count int
	if err := r.dbpool.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_lots`).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}
