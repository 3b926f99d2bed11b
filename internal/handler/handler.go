package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/config"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/progress"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	channel     *amqp.Channel
	redisClient *redis.Client
	progress    *progress.Store
	limiter     *userLimiter

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, ch *amqp.Channel, rdb *redis.Client, store *progress.Store) (*Handler, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		channel:     ch,
		redisClient: rdb,
		progress:    store,
		limiter:     newUserLimiter(cfg.RateLimit.OptimizationPerMinute, cfg.RateLimit.OptimizationBurst),

		Mux: chi.NewRouter(),
	}, nil
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, err
	}
	return validate, trans, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	adminOnly := h.RequiredRole([]domain.Role{domain.RoleAdmin})
	planners := h.RequiredRole([]domain.Role{domain.RolePlanner, domain.RoleAdmin})

	h.Mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(adminOnly).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(adminOnly).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(adminOnly).Delete("/", h.DeleteUser)
				r.With(adminOnly).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/communities", func(r chi.Router) {
			r.Get("/", h.GetAllCommunities)
			r.With(adminOnly).Post("/", h.CreateCommunity)
		})

		r.Route("/charging-stations", func(r chi.Router) {
			r.Get("/", h.GetAllChargingStations)
			r.With(adminOnly).Post("/", h.CreateChargingStation)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.chargingStation)
				r.Get("/", h.GetChargingStation)
				r.With(adminOnly).Patch("/", h.UpdateChargingStation)
				r.With(adminOnly).Delete("/", h.DeleteChargingStation)
			})
		})

		r.Route("/parking-lots", func(r chi.Router) {
			r.Get("/", h.GetAllParkingLots)
			r.With(adminOnly).Post("/", h.CreateParkingLot)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.parkingLot)
				r.Get("/", h.GetParkingLot)
				r.With(adminOnly).Patch("/", h.UpdateParkingLot)
				r.With(adminOnly).Delete("/", h.DeleteParkingLot)
			})
		})

		r.Route("/sites", func(r chi.Router) {
			r.Get("/", h.GetAllSites)
			r.With(adminOnly).Post("/", h.CreateSite)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.site)
				r.Get("/", h.GetSite)
				r.With(adminOnly).Patch("/", h.UpdateSite)
				r.With(adminOnly).Delete("/", h.DeleteSite)
			})
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/", h.GetAllRecommendations)
			r.With(planners).Post("/", h.CreateRecommendation)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.recommendation)
				r.Get("/", h.GetRecommendation)
				r.With(planners).Patch("/", h.UpdateRecommendation)
				r.With(adminOnly).Delete("/", h.DeleteRecommendation)
			})
		})

		r.Route("/optimization-runs", func(r chi.Router) {
			r.Get("/", h.GetAllOptimizationRuns)
			r.With(planners, h.rateLimit).Post("/", h.CreateOptimizationRun)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.optimizationRun)
				r.Get("/", h.GetOptimizationRun)
				r.Get("/progress", h.GetOptimizationRunProgress)
			})
		})
	})
}
