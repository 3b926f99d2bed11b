package progress

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store 在 redis 中保存运行中的优化任务每一代的最优适应度
type Store struct {
	rdb     *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

func NewStore(rdb *redis.Client, ttl, timeout time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl, timeout: timeout}
}

func TraceKey(runID int64) string {
	return fmt.Sprintf("optimization_run_%d_trace", runID)
}

// Append 追加一代的最优适应度并刷新过期时间
func (s *Store) Append(ctx context.Context, runID int64, best float64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := TraceKey(runID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, strconv.FormatFloat(best, 'g', -1, 64))
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

// Trace 返回目前为止记录的全部适应度，任务不存在或已过期时返回空切片
func (s *Store) Trace(ctx context.Context, runID int64) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.rdb.LRange(ctx, TraceKey(runID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	return parseTrace(raw)
}

func (s *Store) Clear(ctx context.Context, runID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.rdb.Del(ctx, TraceKey(runID)).Err()
}

func parseTrace(raw []string) ([]float64, error) {
	trace := make([]float64, len(raw))
	for i, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("第 %d 代的适应度 %q 无法解析: %w", i, v, err)
		}
		trace[i] = f
	}
	return trace, nil
}
