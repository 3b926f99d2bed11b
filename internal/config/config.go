package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
		FullName string `env:"FULL_NAME" envDefault:"管理员"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"1209600"` // 14 天
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD" envDefault:"planner123"`
			Count    int    `env:"COUNT" envDefault:"10"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN" envDefault:"example.com"`
		SMTP       struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN               string `env:"DSN,required"`
		PublishTimeout    int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
		OptimizationQueue string `env:"OPTIMIZATION_QUEUE" envDefault:"optimization_queue"`
		EmailQueue        string `env:"EMAIL_QUEUE" envDefault:"email_queue"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host             string `env:"HOST" envDefault:"localhost"`
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD"`
		ConnectTimeout   int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"10"`
		ProgressTTL      int    `env:"PROGRESS_TTL" envDefault:"86400"` // 1 天
	} `envPrefix:"REDIS_"`
	OTP struct {
		Expiration int `env:"EXPIRATION" envDefault:"900"` // 15 分钟
	} `envPrefix:"OTP_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
	Optimizer struct {
		PopulationSize    int     `env:"POP_SIZE" envDefault:"100"`
		SelectCount       int     `env:"SELECT_COUNT" envDefault:"20"`
		MutationRate      float64 `env:"MUTATION_RATE" envDefault:"0.1"`
		MutationScale     float64 `env:"MUTATION_SCALE" envDefault:"0.1"`
		CrossoverRate     float64 `env:"CROSSOVER_RATE" envDefault:"0.8"`
		MaxGenerations    int     `env:"GEN_MAX" envDefault:"200"`
		CoverRadius       float64 `env:"COVER_RADIUS" envDefault:"5"` // 公里
		TournamentSize    int     `env:"TOURNAMENT_SIZE" envDefault:"3"`
		Parallelism       int     `env:"PARALLELISM" envDefault:"1"`
		TimeBudgetSeconds int     `env:"TIME_BUDGET" envDefault:"0"`
	} `envPrefix:"OPTIMIZER_"`
	Dataset struct {
		Demand struct {
			Path   string `env:"PATH" envDefault:"data/南京市人口分布.xlsx"`
			Lng    string `env:"LNG_COLUMN" envDefault:"POINT_X"`
			Lat    string `env:"LAT_COLUMN" envDefault:"POINT_Y"`
			Weight string `env:"WEIGHT_COLUMN" envDefault:"P041221"`
		} `envPrefix:"DEMAND_"`
		Existing struct {
			Path string `env:"PATH" envDefault:"data/南京市充电桩.xlsx"`
			Lng  string `env:"LNG_COLUMN" envDefault:"lng"`
			Lat  string `env:"LAT_COLUMN" envDefault:"lat"`
			Name string `env:"NAME_COLUMN" envDefault:"name"`
		} `envPrefix:"EXISTING_"`
		Candidate struct {
			Path string `env:"PATH" envDefault:"data/南京市停车场.xlsx"`
			Lng  string `env:"LNG_COLUMN" envDefault:"x"`
			Lat  string `env:"LAT_COLUMN" envDefault:"y"`
			Name string `env:"NAME_COLUMN" envDefault:"name"`
		} `envPrefix:"CANDIDATE_"`
	} `envPrefix:"DATASET_"`
	Metrics struct {
		Port string `env:"PORT" envDefault:"9100"`
	} `envPrefix:"METRICS_"`
	RateLimit struct {
		OptimizationPerMinute float64 `env:"OPTIMIZATION_PER_MINUTE" envDefault:"6"`
		OptimizationBurst     int     `env:"OPTIMIZATION_BURST" envDefault:"2"`
		MaxActiveRuns         int     `env:"MAX_ACTIVE_RUNS" envDefault:"2"` // 每个用户同时排队或运行的任务上限
	} `envPrefix:"RATE_LIMIT_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}

// LoadOfflineConfig 只读取离线优化需要的配置，不要求数据库等服务的必填项
func LoadOfflineConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(&cfg.Optimizer, env.Options{Prefix: "OPTIMIZER_"}); err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(&cfg.Dataset, env.Options{Prefix: "DATASET_"}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OptimizationDefaults 将环境变量中的优化参数默认值转换为领域对象
func (c *Config) OptimizationDefaults() domain.OptimizationParameters {
	o := c.Optimizer
	return domain.OptimizationParameters{
		PopulationSize:    o.PopulationSize,
		SelectCount:       o.SelectCount,
		MutationRate:      o.MutationRate,
		MutationScale:     o.MutationScale,
		CrossoverRate:     o.CrossoverRate,
		MaxGenerations:    o.MaxGenerations,
		CoverRadius:       o.CoverRadius,
		TournamentSize:    o.TournamentSize,
		Parallelism:       o.Parallelism,
		TimeBudgetSeconds: o.TimeBudgetSeconds,
	}
}
