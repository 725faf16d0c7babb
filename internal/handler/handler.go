package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/roster"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/utils"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	service     *roster.Service
	translator  ut.Translator
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, svc *roster.Service, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	// 班次时间使用 "15:04" 格式的本地时间字符串
	if err := validate.RegisterValidation("wallclock", func(fl validator.FieldLevel) bool {
		return utils.IsValidWallClock(fl.Field().String())
	}); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		service:     svc,
		translator:  trans,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo) // 排班需要查看其他员工的基本信息
			r.Get("/{id}", h.GetUserInfo)
		})

		r.Route("/venues", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateVenue)
			r.Get("/", h.GetAllVenues)
			r.Get("/{id}/chains", h.ListVenueChains)
		})

		r.Route("/rosters", func(r chi.Router) {
			r.Use(h.myInfo)
			r.With(h.requireManager).Post("/", h.CreateRoster)
			r.Get("/", h.ListRosters)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.rosterInfo)
				r.Get("/", h.GetRoster)
				r.Get("/adjacent", h.GetAdjacentRoster)
				r.Group(func(r chi.Router) {
					r.Use(h.requireVenueScope)
					r.Patch("/", h.UpdateRosterInfo)
					r.Delete("/", h.DeleteRoster)

					r.Post("/finalize", h.FinalizeRoster)
					r.Post("/publish", h.PublishRoster)
					r.Post("/revert", h.RevertRosterToDraft)

					r.Route("/shifts", func(r chi.Router) {
						r.Post("/", h.AddShift)
						r.Post("/bulk", h.BulkAddShifts)
						r.Post("/recheck", h.RecheckConflicts)
						r.Route("/{shiftID}", func(r chi.Router) {
							r.Use(h.shiftInfo)
							r.Patch("/", h.UpdateShift)
							r.Delete("/", h.DeleteShift)
						})
					})

					r.Post("/versions", h.CreateNewVersion)
					r.Post("/restore", h.RestoreVersion)
					r.Get("/history", h.GetRosterHistory)
					r.Get("/rollback-points", h.GetRollbackPoints)
					r.Post("/rollback", h.RollbackToVersion)
					r.Post("/merge/preview", h.PreviewMerge)
					r.Post("/merge/apply", h.ApplyMerge)
				})
				r.Get("/shifts", h.GetRosterShifts)
				r.Get("/unmatched-staff", h.GetUnmatchedStaff)
				r.Get("/chain", h.GetChainForRoster)
				r.Get("/snapshot", h.GetLatestSnapshot)
				r.Get("/compare/{otherID}", h.CompareVersions)
			})
		})

		r.Route("/chains/{chainID}", func(r chi.Router) {
			r.Get("/", h.GetChain)
			r.Get("/history", h.GetChainHistory)
		})

		r.Route("/extractions", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Use(h.requireManager)
			r.Post("/", h.CreateExtractionSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", h.GetExtractionSession)
				r.Post("/confirm", h.ConfirmExtractionSession)
				r.Delete("/", h.CancelExtractionSession)
			})
		})

		r.Route("/admin/integrity", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Get("/", h.DiagnoseChains)
			r.Post("/repair", h.RepairChains)
		})
	})
}
