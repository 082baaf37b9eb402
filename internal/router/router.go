package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/user/vidora/internal/handler"
	"github.com/user/vidora/internal/middleware"
	"github.com/user/vidora/internal/model"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler, rdb *redis.Client) {
	registerValidators()

	secret := h.Config.AppSecret
	sessions := h.Repos.Session

	// 健康检查
	r.GET("/health", h.Health)

	// ==================== 认证 ====================
	auth := r.Group("/auth")
	{
		auth.POST("/register", middleware.RateLimit(rdb, 10, time.Minute), h.Register)
		auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/forgot-password", middleware.RateLimit(rdb, 5, time.Minute), h.ForgotPassword)
		auth.POST("/reset-password", middleware.RateLimit(rdb, 5, time.Minute), h.ResetPassword)
	}

	authed := r.Group("/auth")
	authed.Use(middleware.RequireAuth(secret, sessions))
	{
		authed.GET("/me", h.Me)
		authed.PUT("/profile", h.UpdateProfile)
		authed.PUT("/password", h.ChangePassword)
		authed.GET("/sessions", h.ListSessions)
		authed.DELETE("/sessions/:id", h.RevokeSession)
		authed.DELETE("/sessions/others", h.RevokeOtherSessions)
	}

	// ==================== 目录（公开）====================
	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(secret, sessions))
	{
		api.GET("/movies", h.ListMovies)
		api.GET("/movies/:id", h.GetMovie)
		api.GET("/movies/:id/similar", h.SimilarMovies)
		api.GET("/series", h.ListSeries)
		api.GET("/series/:id", h.GetSeries)
		api.GET("/episodes/:id/videos", h.GetEpisodeVideos)
		api.GET("/videos/:id", h.GetVideo)
		api.GET("/genres", h.ListGenres)
		api.GET("/categories", h.ListCategories)
		api.GET("/search", h.Search)
	}

	// ==================== 用户互动（需要登录）====================
	user := r.Group("/api")
	user.Use(middleware.RequireAuth(secret, sessions))
	{
		user.POST("/likes/:type/:id", h.AddLike)
		user.DELETE("/likes/:type/:id", h.RemoveLike)
		user.GET("/likes", h.ListLikes)

		user.POST("/watchlist/:type/:id", h.AddToWatchlist)
		user.DELETE("/watchlist/:type/:id", h.RemoveFromWatchlist)
		user.GET("/watchlist", h.ListWatchlist)

		user.POST("/history/sync", h.SyncHistory)
		user.GET("/history", h.ListHistory)
		user.DELETE("/history/:id", h.DeleteHistory)
	}

	// ==================== 管理后台 ====================
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuth(secret, sessions))
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/stats", h.AdminStats)

		// 用户管理
		admin.GET("/users", h.AdminListUsers)
		admin.PUT("/users/:id/role", h.AdminUpdateUserRole)
		admin.PUT("/users/:id/active", h.AdminUpdateUserActive)
		admin.DELETE("/users/:id", h.AdminDeleteUser)

		// 密码重置令牌管理
		admin.GET("/password-resets", h.AdminListPasswordResets)
		admin.POST("/password-resets/:id/activate", h.AdminActivatePasswordReset)
		admin.POST("/password-resets/cleanup", h.AdminCleanupPasswordResets)

		// 目录管理
		admin.POST("/import/movie", h.AdminImportMovie)
		admin.POST("/import/series", h.AdminImportSeries)
		admin.POST("/movies/:id/enrich", h.AdminEnrichMovie)
		admin.PUT("/movies/:id/category", h.AdminSetMovieCategory)
		admin.PUT("/movies/:id/embedding", h.AdminSetMovieEmbedding)
		admin.DELETE("/movies/:id", h.AdminDeleteMovie)
		admin.DELETE("/series/:id", h.AdminDeleteSeries)
		admin.POST("/videos", h.AdminCreateVideo)
		admin.DELETE("/videos/:id", h.AdminDeleteVideo)
		admin.POST("/categories", h.AdminCreateCategory)
		admin.PUT("/categories/:id", h.AdminUpdateCategory)
		admin.DELETE("/categories/:id", h.AdminDeleteCategory)
	}
}

// registerValidators 注册自定义校验规则
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("mediatype", func(fl validator.FieldLevel) bool {
			t := fl.Field().String()
			return t == model.MediaTypeMovie || t == model.MediaTypeSeries
		})
	}
}
