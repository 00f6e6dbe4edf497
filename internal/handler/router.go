package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/shopwithme/internal/middleware"
)

// HealthChecker はヘルスチェックで疎通確認する依存（通常はDB）を抽象化する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Authoriser        middleware.TokenAuthoriser
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// サービス
	AuthService    AuthServiceInterface
	AccountService AccountServiceInterface
	ListService    ListServiceInterface
	ItemService    ItemServiceInterface

	// 運用系（省略可）
	Logger          *slog.Logger
	MetricsRecorder middleware.HTTPMetricsRecorder
	HealthChecker   HealthChecker
	MetricsHandler  http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RecoveryMiddleware → CORSMiddleware → SecurityHeadersMiddleware
//	→ (LoggingMiddleware → MetricsMiddleware) → AuthoriseMiddleware
//	→ RateLimitMiddleware(GeneralMiddleware)
//
// 認証ルートとプロフィールルートは認可ミドルウェアの外に配置する。
// ログインには接続元IPでキーした専用レート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// panicリカバリを最上位に適用し、続けてCORSとセキュリティヘッダーを全ルートに効かせる
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}

	authHandler := NewAuthHandler(deps.AuthService)
	accountHandler := NewAccountHandler(deps.AccountService)
	listHandler := NewListHandler(deps.ListService)
	itemHandler := NewItemHandler(deps.ItemService)

	// --- 認可不要のルート ---

	// ヘルスチェック。DBへの疎通が取れない場合は503を返す。
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		status := "ok"
		code := http.StatusOK
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(req.Context()); err != nil {
				status = "unavailable"
				code = http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	})

	// Prometheusメトリクス
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// モバイル認証
	r.Route("/api/auth", func(r chi.Router) {
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/facebook/mobile", authHandler.FacebookMobileLogin)
		r.Post("/logout", authHandler.Logout)
	})

	// プロフィール管理とリスト管理
	// chiは同一階層で異なるワイルドカード名を許さないため、パラメータ名はuserIdに統一する。
	r.Route("/api/profiles", func(r chi.Router) {
		r.Post("/", accountHandler.CreateAccount)

		r.Route("/{userId}", func(r chi.Router) {
			r.Get("/", accountHandler.GetAccount)
			r.Put("/", accountHandler.UpdateAccount)
			r.Delete("/", accountHandler.DeleteAccount)

			// --- 認可が必要なルート ---
			// ミドルウェアスタック: Authorise → RateLimit(General)
			r.Route("/lists", func(r chi.Router) {
				r.Use(middleware.NewAuthoriseMiddleware(deps.Authoriser))
				r.Use(deps.RateLimiter.GeneralMiddleware())

				r.Post("/", listHandler.CreateList)
				r.Get("/", listHandler.GetLists)

				r.Route("/{listId}", func(r chi.Router) {
					// リストIDの位置にテンプレートIDを渡すとテンプレートからの複製になる
					r.Post("/", listHandler.CreateListFromTemplate)
					r.Get("/", listHandler.GetList)
					r.Put("/", listHandler.UpdateList)
					r.Delete("/", listHandler.DeleteList)

					// 項目管理
					r.Post("/item", itemHandler.AddItem)
					r.Route("/item/{itemId}", func(r chi.Router) {
						r.Put("/", itemHandler.UpdateItem)
						r.Delete("/", itemHandler.DeleteItem)
						r.Put("/crossout", itemHandler.CrossoutItem)
					})
				})
			})
		})
	})

	return r
}
