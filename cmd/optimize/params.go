package main

import (
	"fmt"
	"os"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// loadParameters 用 YAML 文件覆盖默认参数，文件中没有出现的字段保持默认值
func loadParameters(path string, defaults domain.OptimizationParameters) (domain.OptimizationParameters, error) {
	if path == "" {
		return defaults, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return defaults, fmt.Errorf("无法读取参数文件: %w", err)
	}

	params := defaults
	if err := yaml.Unmarshal(raw, &params); err != nil {
		return defaults, fmt.Errorf("无法解析参数文件: %w", err)
	}
	return params, nil
}

// applyFlags 命令行中显式给出的参数优先级最高
func applyFlags(params, flags domain.OptimizationParameters, set map[string]bool) domain.OptimizationParameters {
	if set["pop"] {
		params.PopulationSize = flags.PopulationSize
	}
	if set["p"] {
		params.SelectCount = flags.SelectCount
	}
	if set["gen"] {
		params.MaxGenerations = flags.MaxGenerations
	}
	if set["radius"] {
		params.CoverRadius = flags.CoverRadius
	}
	if set["mutpb"] {
		params.MutationRate = flags.MutationRate
	}
	if set["cxpb"] {
		params.CrossoverRate = flags.CrossoverRate
	}
	if set["scale"] {
		params.MutationScale = flags.MutationScale
	}
	if set["tournament"] {
		params.TournamentSize = flags.TournamentSize
	}
	if set["elite"] {
		params.EliteCount = flags.EliteCount
	}
	if set["seed"] {
		params.Seed = flags.Seed
	}
	if set["parallel"] {
		params.Parallelism = flags.Parallelism
	}
	if set["time-budget"] {
		params.TimeBudgetSeconds = flags.TimeBudgetSeconds
	}
	return params
}
