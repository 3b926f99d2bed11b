package handler

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// constraintMessages 唯一约束名称到提示信息的映射
var constraintMessages = map[string]string{
	"users_username_key":         "用户名已存在",
	"users_email_key":            "邮箱已存在",
	"charging_stations_code_key": "充电站编码已存在",
	"parking_lots_code_key":      "停车场编码已存在",
	"sites_code_key":             "站点编码已存在",
}

func constraintMessage(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	msg, ok := constraintMessages[pgErr.ConstraintName]
	return msg, ok
}
