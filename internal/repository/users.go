package repository

import (
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

const userColumns = `id, username, password_hash, full_name, email, role, is_active, created_at, version`

func userDst(u *domain.User) []any {
	return []any{&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt, &u.Version}
}

// getUser column 只会是本文件中的常量，不接受外部输入
func (r *Repository) getUser(column string, value any) (*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	user := &domain.User{}
	if err := r.dbpool.QueryRowContext(ctx, query, value).Scan(userDst(user)...); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) GetUserByID(id int64) (*domain.User, error) {
	return r.getUser("id", id)
}

func (r *Repository) GetUserByUsername(username string) (*domain.User, error) {
	return r.getUser("username", username)
}

func (r *Repository) GetAllUsers() ([]*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		if err := rows.Scan(userDst(user)...); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *Repository) CreateUser(user *domain.User) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO users (username, password_hash, full_name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, version
	`

	args := []any{user.Username, user.PasswordHash, user.FullName, user.Email, user.Role}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.Version)
}

// UpdateUser 使用 version 做乐观锁，版本不一致时返回 sql.ErrNoRows
func (r *Repository) UpdateUser(user *domain.User) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE users
		SET password_hash = $1, full_name = $2, email = $3, role = $4, is_active = $5, version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	args := []any{user.PasswordHash, user.FullName, user.Email, user.Role, user.IsActive, user.ID, user.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.Version)
}

func (r *Repository) DeleteUser(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *Repository) CheckEmailIfExists(email string) (bool, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	exists := false
	err := r.dbpool.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}
