package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/config"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/coverage"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/optimizer"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/progress"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/repository"
)

// Worker 消费优化任务队列中的消息并执行选址优化
type Worker struct {
	cfg     *config.Config
	repo    *repository.Repository
	store   *progress.Store
	channel *amqp.Channel
	logger  *slog.Logger
}

func New(cfg *config.Config, repo *repository.Repository, store *progress.Store, ch *amqp.Channel, logger *slog.Logger) *Worker {
	return &Worker{cfg: cfg, repo: repo, store: store, channel: ch, logger: logger}
}

// Handle 处理一条任务消息，返回错误时调用方应当将消息重新入队
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	var job domain.OptimizationJob
	if err := json.Unmarshal(body, &job); err != nil {
		// 无法解析的消息重试也没有意义
		w.logger.Error("任务消息反序列化失败", "error", err)
		return nil
	}

	logger := w.logger.With("jobID", job.JobID, "runID", job.RunID)

	run, err := w.repo.GetOptimizationRunByID(job.RunID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Warn("优化任务不存在，忽略该消息")
			return nil
		}
		return err
	}

	if err := w.repo.MarkOptimizationRunRunning(run); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// 重复投递的消息，任务已经被处理过
			logger.Warn("优化任务不处于等待状态，忽略该消息", "status", run.Status)
			return nil
		}
		return err
	}

	metrics.OptimizationRunsInFlight.Inc()
	defer metrics.OptimizationRunsInFlight.Dec()
	start := time.Now()

	logger.Info("开始执行优化任务", "parameters", run.Parameters)
	recs, runErr := w.execute(ctx, run, logger)

	status := domain.OptimizationRunSucceeded
	if runErr != nil {
		status = domain.OptimizationRunFailed
		logger.Error("优化任务执行失败", "error", runErr)
		if err := w.repo.FailOptimizationRun(run, runErr.Error()); err != nil {
			logger.Error("无法将优化任务标记为失败", "error", err)
		}
	} else if err := w.repo.CompleteOptimizationRun(run); err != nil {
		// 任务已经处于运行状态，重新入队也无法再次执行，只能标记为失败
		status = domain.OptimizationRunFailed
		recs = nil
		logger.Error("无法保存优化结果", "error", err)
		if err := w.repo.FailOptimizationRun(run, "保存优化结果失败"); err != nil {
			logger.Error("无法将优化任务标记为失败", "error", err)
		}
	} else {
		recs = saveRecommendations(w.repo, recs, logger)
		logger.Info("优化任务执行完成", "selected", run.SelectedLotIDs, "coveredWeight", run.CoveredWeight, "generations", run.Generations)
	}

	metrics.OptimizationRuns.WithLabelValues(string(status)).Inc()
	metrics.OptimizationDuration.WithLabelValues(string(status)).Observe(time.Since(start).Seconds())

	// 结果已经落库，redis 中的进度不再需要
	if err := w.store.Clear(context.Background(), run.ID); err != nil {
		logger.Warn("无法清理优化进度", "error", err)
	}

	if err := w.notify(run, recs); err != nil {
		logger.Error("无法投递任务完成通知", "error", err)
	}
	return nil
}

func (w *Worker) execute(ctx context.Context, run *domain.OptimizationRun, logger *slog.Logger) ([]*domain.Recommendation, error) {
	communities, err := w.repo.GetAllCommunities()
	if err != nil {
		return nil, fmt.Errorf("读取社区数据失败: %w", err)
	}
	stations, err := w.repo.GetAllChargingStations()
	if err != nil {
		return nil, fmt.Errorf("读取充电站数据失败: %w", err)
	}
	lots, err := w.repo.GetAllParkingLots()
	if err != nil {
		return nil, fmt.Errorf("读取停车场数据失败: %w", err)
	}

	demand, existing, candidates := toInputs(communities, stations, lots)
	m, err := coverage.Build(demand, existing, candidates, run.Parameters.CoverRadius)
	if err != nil {
		return nil, err
	}

	opt, err := optimizer.New(m, optimizer.FromDomain(run.Parameters))
	if err != nil {
		return nil, err
	}
	opt.SetLogger(logger)
	opt.OnGeneration(func(generation int, best float64) {
		metrics.ObserveGeneration(best)
		if err := w.store.Append(ctx, run.ID, best); err != nil {
			logger.Warn("无法写入优化进度", "generation", generation, "error", err)
		}
	})

	res, err := opt.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("优化被中断: %w", err)
	}

	if err := applyResult(run, res, lots); err != nil {
		return nil, err
	}
	return buildRecommendations(run.ID, res, lots, m), nil
}

func (w *Worker) notify(run *domain.OptimizationRun, recs []*domain.Recommendation) error {
	user, err := w.repo.GetUserByID(run.RequestedBy)
	if err != nil {
		return err
	}

	body, err := json.Marshal(domain.MailMessage{
		Type: "optimization_finished",
		To:   user.Email,
		Data: finishedMailData(user, run, recs),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(w.cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return w.channel.PublishWithContext(ctx, "", w.cfg.RabbitMQ.EmailQueue, true, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Body:         body,
	})
}
