package repository

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonb 将切片、结构体等以 JSONB 列的形式读写
type jsonb[T any] struct {
	v *T
}

func asJSONB[T any](v *T) jsonb[T] {
	return jsonb[T]{v: v}
}

func (j jsonb[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j jsonb[T]) Scan(src any) error {
	switch src := src.(type) {
	case nil:
		var zero T
		*j.v = zero
		return nil
	case []byte:
		return json.Unmarshal(src, j.v)
	case string:
		return json.Unmarshal([]byte(src), j.v)
	default:
		return fmt.Errorf("无法将 %T 解析为 JSONB", src)
	}
}
