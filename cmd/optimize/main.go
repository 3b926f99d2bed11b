package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/config"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/coverage"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/dataset"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/optimizer"
)

func main() {
	var paramsFile, out string
	var logEvery int
	var demandPath, existingPath, candidatePath string
	var overrides domain.OptimizationParameters

	flag.StringVar(&paramsFile, "params", "", "YAML 格式的参数文件")
	flag.StringVar(&out, "out", "", "把结果导出为 xlsx 文件")
	flag.IntVar(&logEvery, "log-every", 10, "每隔多少代输出一次进度")
	flag.StringVar(&demandPath, "demand", "", "人口分布数据文件")
	flag.StringVar(&existingPath, "existing", "", "现有充电站数据文件")
	flag.StringVar(&candidatePath, "candidates", "", "候选停车场数据文件")
	flag.IntVar(&overrides.PopulationSize, "pop", 0, "种群规模")
	flag.IntVar(&overrides.SelectCount, "p", 0, "新建充电站数量")
	flag.IntVar(&overrides.MaxGenerations, "gen", 0, "最大迭代代数")
	flag.Float64Var(&overrides.CoverRadius, "radius", 0, "覆盖半径（公里）")
	flag.Float64Var(&overrides.MutationRate, "mutpb", 0, "变异概率")
	flag.Float64Var(&overrides.CrossoverRate, "cxpb", 0, "交叉概率")
	flag.Float64Var(&overrides.MutationScale, "scale", 0, "高斯变异的标准差")
	flag.IntVar(&overrides.TournamentSize, "tournament", 0, "锦标赛规模")
	flag.IntVar(&overrides.EliteCount, "elite", 0, "保留的精英个体数量")
	flag.Uint64Var(&overrides.Seed, "seed", 0, "随机数种子")
	flag.IntVar(&overrides.Parallelism, "parallel", 0, "并行计算适应度的协程数量")
	flag.IntVar(&overrides.TimeBudgetSeconds, "time-budget", 0, "运行时间上限（秒），0 表示不限制")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger, paramsFile, out, logEvery, demandPath, existingPath, candidatePath, overrides); err != nil {
		logger.Error("选址优化失败", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, paramsFile, out string, logEvery int, demandPath, existingPath, candidatePath string, overrides domain.OptimizationParameters) error {
	cfg, err := config.LoadOfflineConfig()
	if err != nil {
		return fmt.Errorf("无法读取配置: %w", err)
	}

	params, err := loadParameters(paramsFile, cfg.OptimizationDefaults())
	if err != nil {
		return err
	}
	params = applyFlags(params, overrides, setFlags())

	sources := dataset.SourcesFromConfig(cfg)
	if demandPath != "" {
		sources.Demand.Path = demandPath
	}
	if existingPath != "" {
		sources.Existing.Path = existingPath
	}
	if candidatePath != "" {
		sources.Candidate.Path = candidatePath
	}

	data, err := sources.Load()
	if err != nil {
		return err
	}
	logger.Info("数据读取完成", "demand", len(data.Demand), "existing", len(data.Existing), "candidates", len(data.Candidates))

	m, err := coverage.Build(data.Demand, dataset.Facilities(data.Existing), dataset.Facilities(data.Candidates), params.CoverRadius)
	if err != nil {
		return err
	}

	opt, err := optimizer.New(m, optimizer.FromDomain(params))
	if err != nil {
		return err
	}
	opt.SetLogger(logger)
	opt.OnGeneration(func(generation int, best float64) {
		if logEvery > 0 && (generation+1)%logEvery == 0 {
			logger.Info("迭代进度", "generation", generation+1, "best", best)
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := opt.Run(ctx)
	if err != nil {
		if res != nil {
			// 被中断时仍然输出目前为止的最优解
			report(os.Stdout, logger, res, data.Candidates, m)
		}
		return err
	}
	report(os.Stdout, logger, res, data.Candidates, m)

	if out != "" {
		if err := dataset.WriteResult(out, res, data.Candidates); err != nil {
			return fmt.Errorf("导出结果失败: %w", err)
		}
		logger.Info("结果已导出", "path", out)
	}
	return nil
}

// report 输出选中的候选设施：名次、下标、名称、经纬度、单独新增覆盖的人口
func report(w io.Writer, logger *slog.Logger, res *optimizer.Result, candidates []dataset.NamedFacility, m *coverage.Matrix) {
	logger.Info("优化结束",
		"stopReason", res.StopReason,
		"generations", res.Generations,
		"coveredWeight", res.CoveredWeight,
		"existingWeight", res.ExistingWeight,
		"newWeight", res.NewWeight,
		"totalWeight", res.TotalWeight,
	)
	for rank, idx := range res.Selected {
		c := candidates[idx]
		fmt.Fprintf(w, "%d\t%d\t%s\t%.6f\t%.6f\t%.0f\n", rank+1, idx, c.Name, c.Location.Lng, c.Location.Lat, m.Gain(idx))
	}
}

func setFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}
