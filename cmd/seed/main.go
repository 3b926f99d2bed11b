package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/config"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/dataset"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/repository"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/seed"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var communities, stations, lots int
	var radius float64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机规划员, 2: 导入 xlsx 数据, 3: 插入随机演示数据)")
	flag.IntVar(&n, "n", 0, "要插入的规划员数量，默认使用 SEED_USER_COUNT")
	flag.IntVar(&communities, "communities", 200, "随机社区数量")
	flag.IntVar(&stations, "stations", 10, "随机充电站数量")
	flag.IntVar(&lots, "lots", 50, "随机停车场数量")
	flag.Float64Var(&radius, "radius", 15, "随机数据距离市中心的最大距离（公里）")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n == 0 {
			n = cfg.Seed.User.Count
		}
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomPlanner(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("无法生成随机规划员", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("无法插入用户", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入规划员成功", slog.Int("count", cnt))
	case 2:
		if err := seed.ImportDatasets(repo, dataset.SourcesFromConfig(cfg)); err != nil {
			slog.Error("导入数据失败", "error", err)
			os.Exit(1)
		}
	case 3:
		if communities <= 0 || stations < 0 || lots <= 0 || radius <= 0 {
			slog.Error("请输入合法的演示数据规模")
			return
		}
		if err := seed.RandomDemo(repo, communities, stations, lots, radius); err != nil {
			slog.Error("插入演示数据失败", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("指定的操作非法")
	}
}
