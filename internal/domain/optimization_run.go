package domain

import "time"

type OptimizationRunStatus string

const (
	OptimizationRunPending   OptimizationRunStatus = "pending"
	OptimizationRunRunning   OptimizationRunStatus = "running"
	OptimizationRunSucceeded OptimizationRunStatus = "succeeded"
	OptimizationRunFailed    OptimizationRunStatus = "failed"
)

// OptimizationParameters 一次选址优化的全部参数
type OptimizationParameters struct {
	PopulationSize    int     `json:"populationSize" yaml:"populationSize" validate:"required,min=1"`
	SelectCount       int     `json:"selectCount" yaml:"selectCount" validate:"required,min=1"`
	MutationRate      float64 `json:"mutationRate" yaml:"mutationRate" validate:"min=0,max=1"`
	MutationScale     float64 `json:"mutationScale" yaml:"mutationScale" validate:"gt=0"`
	CrossoverRate     float64 `json:"crossoverRate" yaml:"crossoverRate" validate:"min=0,max=1"`
	MaxGenerations    int     `json:"maxGenerations" yaml:"maxGenerations" validate:"required,min=1"`
	CoverRadius       float64 `json:"coverRadius" yaml:"coverRadius" validate:"gt=0"`
	TournamentSize    int     `json:"tournamentSize" yaml:"tournamentSize" validate:"min=0"`
	EliteCount        int     `json:"eliteCount" yaml:"eliteCount" validate:"min=0"`
	Seed              uint64  `json:"seed" yaml:"seed"`
	Parallelism       int     `json:"parallelism" yaml:"parallelism" validate:"min=0"`
	TimeBudgetSeconds int     `json:"timeBudgetSeconds" yaml:"timeBudgetSeconds" validate:"min=0"`
}

type OptimizationRun struct {
	ID             int64                  `json:"id"`
	Status         OptimizationRunStatus  `json:"status"`
	Parameters     OptimizationParameters `json:"parameters"`
	SelectedLotIDs []int64                `json:"selectedLotIDs"`
	CoveredWeight  float64                `json:"coveredWeight"`
	ExistingWeight float64                `json:"existingWeight"`
	TotalWeight    float64                `json:"totalWeight"`
	FitnessTrace   []float64              `json:"fitnessTrace"`
	Generations    int                    `json:"generations"`
	StopReason     string                 `json:"stopReason"`
	ErrorMessage   string                 `json:"errorMessage"`
	RequestedBy    int64                  `json:"requestedBy"`
	CreatedAt      time.Time              `json:"createdAt"`
	StartedAt      *time.Time             `json:"startedAt"`
	FinishedAt     *time.Time             `json:"finishedAt"`
	Version        int32                  `json:"-"`
}

// OptimizationJob 投递到消息队列中的优化任务
type OptimizationJob struct {
	JobID string `json:"jobID"`
	RunID int64  `json:"runID"`
}
