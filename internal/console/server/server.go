package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/xela07ax/manageros-console/internal/console/handler"
	"github.com/xela07ax/manageros-console/internal/infra"
	"github.com/xela07ax/manageros-console/internal/infra/auth"
	"go.uber.org/zap"
)

type ConsoleServer struct {
	router *chi.Mux
	logger *zap.Logger
	cfg    *infra.Config

	// Интерфейс для проверки токенов (RS256)
	// Реализуется через embedding BaseValidator в AuthService
	authValidator auth.TokenValidator

	// Обработчики бизнес-доменов
	authHandler       *handler.AuthHandler       // /auth/token
	ruleHandler       *handler.RuleHandler       // /v1/rules
	exceptionHandler  *handler.ExceptionHandler  // /v1/exceptions
	evaluationHandler *handler.EvaluationHandler // /v1/evaluation
	dashHandler       *handler.DashboardHandler  // /api/v1/dashboard
}

// NewConsoleServer инициализирует сервер админки со всеми зависимостями
func NewConsoleServer(
	cfg *infra.Config,
	logger *zap.Logger,
	authValidator auth.TokenValidator,
	authH *handler.AuthHandler,
	ruleH *handler.RuleHandler,
	exceptionH *handler.ExceptionHandler,
	evaluationH *handler.EvaluationHandler,
	dashH *handler.DashboardHandler,
) *ConsoleServer {
	s := &ConsoleServer{
		router:            chi.NewRouter(),
		logger:            logger.Named("console-api"),
		cfg:               cfg,
		authValidator:     authValidator,
		authHandler:       authH,
		ruleHandler:       ruleH,
		exceptionHandler:  exceptionH,
		evaluationHandler: evaluationH,
		dashHandler:       dashH,
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ (Открыты для всех) ---
	r.Group(func(r chi.Router) {
		// Логин должен быть доступен без токена
		r.Post("/auth/token", s.authHandler.Login)

		// Healthcheck для мониторинга
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (Требуют RS256 токен) ---
	r.Group(func(r chi.Router) {
		// Подключаем универсальный Middleware только для этой группы
		r.Use(auth.NewMiddleware(s.authValidator, s.logger))

		// Dashboard & Stats
		r.Get("/api/v1/dashboard/stats", s.dashHandler.GetStats)

		// Толеранс-правила (пороговые политики организации)
		r.Route("/v1/rules", func(r chi.Router) {
			r.Get("/", s.ruleHandler.List)    // Все правила организации
			r.Post("/", s.ruleHandler.Create) // Создание (admin/owner)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.ruleHandler.Get)           // Детали правила
				r.Put("/", s.ruleHandler.Update)        // Частичное обновление (тип иммутабелен)
				r.Post("/toggle", s.ruleHandler.Toggle) // Вкл/выкл без пересохранения конфига
				r.Delete("/", s.ruleHandler.Delete)     // Жесткое удаление
			})
		})

		// Леджер нарушений и его жизненный цикл
		r.Route("/v1/exceptions", func(r chi.Router) {
			r.Get("/", s.exceptionHandler.List) // Фильтры ?status=&severity=
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.exceptionHandler.GetDetails)
				r.Post("/acknowledge", s.exceptionHandler.Acknowledge)
				r.Post("/ignore", s.exceptionHandler.Ignore)
				r.Post("/resolve", s.exceptionHandler.Resolve)
			})
		})

		// Ручной запуск проверки правил (admin/owner, rate limited)
		r.Post("/v1/evaluation/run", s.evaluationHandler.Run)
	})
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
