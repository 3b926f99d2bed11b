package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/config"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/progress"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/repository"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/worker"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", "error", err)
		return
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer pingCancel()
	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 连接 redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	store := progress.NewStore(rdb,
		time.Duration(cfg.Redis.ProgressTTL)*time.Second,
		time.Duration(cfg.Redis.OperationTimeout)*time.Second,
	)

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", "error", err)
		return
	}
	defer ch.Close()

	for _, queue := range []string{cfg.RabbitMQ.OptimizationQueue, cfg.RabbitMQ.EmailQueue} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			logger.Error("无法声明队列", "queue", queue, "error", err)
			return
		}
	}

	// 优化任务占用 CPU 较多，每次只取一条
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error("无法设置预取数量", "error", err)
		return
	}

	msgs, err := ch.Consume(cfg.RabbitMQ.OptimizationQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Error("无法消费消息", "error", err)
		return
	}

	/**********************************************
	 * 启动指标服务
	 **********************************************/
	metrics.RegisterDefault()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{
		Addr:     fmt.Sprintf(":%s", cfg.Metrics.Port),
		Handler:  mux,
		ErrorLog: slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	go func() {
		logger.Info("正在启动指标服务...", "port", cfg.Metrics.Port)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("无法启动指标服务", "error", err)
		}
	}()

	/**********************************************
	 * 处理优化任务
	 **********************************************/
	w := worker.New(cfg, repo, store, ch, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("消息通道已关闭")
					return
				}
				logger.Info("收到优化任务", "messageID", msg.MessageId)
				if err := w.Handle(ctx, msg.Body); err != nil {
					logger.Error("优化任务处理失败，重新入队", "error", err)
					_ = msg.Nack(false, true)
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("等待优化任务...（按 CTRL+C 退出）")
	<-sigChan

	logger.Info("正在关闭 optimization worker...")
	cancel()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭指标服务失败", "error", err)
	}
	logger.Info("optimization worker 已成功关闭")
}
