package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/vidora/internal/config"
	"github.com/user/vidora/internal/middleware"
	"github.com/user/vidora/internal/model"
	"github.com/user/vidora/internal/repository"
	"github.com/user/vidora/internal/service"
	"github.com/user/vidora/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Repos   *repository.Repositories
	Config  *config.Config
	TMDB    *service.TMDBService
	Scraper *service.IMDbScraper

	// 目录列表查询结果缓存
	movieCache  *utils.ListCache[listResult[*model.Movie]]
	seriesCache *utils.ListCache[listResult[*model.Series]]
}

// listResult 列表接口的分页返回结构
type listResult[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	// 创建 TMDB 导入服务与 IMDb 补采器
	tmdb := service.NewTMDBService(repos, cfg)
	scraper := service.NewIMDbScraper(repos.Movie)

	return &Handler{
		Repos:       repos,
		Config:      cfg,
		TMDB:        tmdb,
		Scraper:     scraper,
		movieCache:  utils.NewListCache[listResult[*model.Movie]](1000, 5*time.Minute),
		seriesCache: utils.NewListCache[listResult[*model.Series]](1000, 5*time.Minute),
	}
}

// setAuthCookies 下发双令牌 Cookie（HttpOnly + SameSite=Strict，生产环境加 Secure）
func (h *Handler) setAuthCookies(c *gin.Context, authToken, sessionToken string) {
	maxAge := int(h.Config.SessionExpiry.Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AuthCookie, authToken, maxAge, "/", "", h.Config.IsProduction(), true)
	c.SetCookie(middleware.SessionCookie, sessionToken, maxAge, "/", "", h.Config.IsProduction(), true)
}

// clearAuthCookies 清除双令牌 Cookie
func (h *Handler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", h.Config.IsProduction(), true)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.Config.IsProduction(), true)
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
