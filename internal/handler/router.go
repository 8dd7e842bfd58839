package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/bookstore/internal/metrics"
	"github.com/hitoshi/bookstore/internal/middleware"
	"github.com/hitoshi/bookstore/internal/role"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	UserResolver      middleware.UserResolver
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter

	// 運用
	HealthChecker   HealthChecker
	Metrics         *metrics.Collector
	MetricsGatherer prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 店舗設定・カタログ
	SettingsService SettingsServiceInterface
	CatalogService  CatalogServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → Logging → SecurityHeaders → Metrics → CORS → CSRF → Session → RateLimit(General)
//
// ロールによるアクセス制御はルートグループごとのGuardで行う。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// nilの*metrics.Collectorをインターフェースに入れないよう分岐する
	var recorder MetricsRecorder
	var observer middleware.GuardObserver
	if deps.Metrics != nil {
		recorder = deps.Metrics
		observer = deps.Metrics
	}

	r := chi.NewRouter()
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.CSRFConfig.CookieSecure))
	if deps.Metrics != nil {
		r.Use(metrics.NewHTTPMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	// --- 運用エンドポイント（CSRF・セッション不要） ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, recorder)
	settingsHandler := NewSettingsHandler(deps.SettingsService, recorder)
	catalogHandler := NewCatalogHandler(deps.CatalogService, recorder)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(middleware.NewSessionMiddleware(deps.UserResolver))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

		// 認証ルート（登録・ログイン・リセットはIP単位のレート制限を追加）
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(deps.RateLimiter.AuthMiddleware())
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.Post("/password/forgot", authHandler.ForgotPassword)
				r.Post("/password/reset", authHandler.ResetPassword)
			})
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})

		// 公開API
		r.Get("/api/categories", catalogHandler.ListCategories)
		r.Get("/api/books/search", catalogHandler.SearchBooks)
		r.Get("/api/quote", settingsHandler.Quote)

		// ログインユーザー
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewGuardMiddleware("", observer))
			r.Put("/api/users/me/password", authHandler.ChangePassword)
		})

		// 管理画面: スタッフまたは管理者
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewGuardFuncMiddleware(role.IsStaffOrAdmin, observer))
			r.Get("/api/admin/dashboard", DashboardHandler)
		})

		// 店舗設定: 管理者のみ
		r.Route("/api/admin/settings", func(r chi.Router) {
			r.Use(middleware.NewGuardMiddleware(role.Admin, observer))
			r.Get("/", settingsHandler.GetSettings)
			r.Put("/", settingsHandler.UpdateSettings)
		})
	})

	return r
}
