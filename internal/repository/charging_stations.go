package repository

import (
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

const chargingStationColumns = `id, name, code, latitude, longitude, type, address, phone, created_at, version`

func chargingStationDst(s *domain.ChargingStation) []any {
	return []any{&s.ID, &s.Name, &s.Code, &s.Latitude, &s.Longitude, &s.Type, &s.Address, &s.Phone, &s.CreatedAt, &s.Version}
}

func (r *Repository) CreateChargingStation(s *domain.ChargingStation) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO charging_stations (name, code, latitude, longitude, type, address, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`

	args := []any{s.Name, s.Code, s.Latitude, s.Longitude, s.Type, s.Address, s.Phone}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.Version)
}

func (r *Repository) GetChargingStationByID(id int64) (*domain.ChargingStation, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + chargingStationColumns + ` FROM charging_stations WHERE id = $1`

	s := &domain.ChargingStation{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(chargingStationDst(s)...); err != nil {
		return nil, err
	}

	return s, nil
}

func (r *Repository) GetAllChargingStations() ([]*domain.ChargingStation, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + chargingStationColumns + ` FROM charging_stations ORDER BY id`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stations := make([]*domain.ChargingStation, 0)
	for rows.Next() {
		s := &domain.ChargingStation{}
		if err := rows.Scan(chargingStationDst(s)...); err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stations, nil
}

func (r *Repository) UpdateChargingStation(s *domain.ChargingStation) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE charging_stations
		SET name = $1, code = $2, latitude = $3, longitude = $4, type = $5, address = $6, phone = $7, version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version
	`

	args := []any{s.Name, s.Code, s.Latitude, s.Longitude, s.Type, s.Address, s.Phone, s.ID, s.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&s.Version)
}

func (r *Repository) DeleteChargingStation(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `DELETE FROM charging_stations WHERE id = $1`, id)
	return err
}

// ImportChargingStations 在同一个事务中批量插入现有充电站
func (r *Repository) ImportChargingStations(stations []*domain.ChargingStation) error {
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
		INSERT INTO charging_stations (name, code, latitude, longitude, type, address, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`
	for _, s := range stations {
		args := []any{s.Name, s.Code, s.Latitude, s.Longitude, s.Type, s.Address, s.Phone}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.Version); err != nil {
			return err
		}
	}

	return tx.Commit()
}
