package handler

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pgvector/pgvector-go"
	"github.com/user/vidora/internal/middleware"
	"github.com/user/vidora/internal/model"
	"github.com/user/vidora/internal/utils"
)

// ==================== 管理后台 ====================

// AdminStats 后台统计（缓存一分钟，避免每次刷新都全表 count）
func (h *Handler) AdminStats(c *gin.Context) {
	if cached, ok := utils.CacheGet("admin:stats"); ok {
		utils.Success(c, cached)
		return
	}

	userCount, _ := h.Repos.User.Count()
	movieCount, _ := h.Repos.Movie.Count()
	seriesCount, _ := h.Repos.Series.Count()
	sessionCount, _ := h.Repos.Session.CountAll()

	stats := gin.H{
		"users":    userCount,
		"movies":   movieCount,
		"series":   seriesCount,
		"sessions": sessionCount,
	}
	utils.CacheSet("admin:stats", stats, time.Minute)
	utils.Success(c, stats)
}

// AdminListUsers 用户列表
func (h *Handler) AdminListUsers(c *gin.Context) {
	users, err := h.Repos.User.ListAll()
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, users)
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

// AdminUpdateUserRole 修改用户角色
func (h *Handler) AdminUpdateUserRole(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	if err := h.Repos.User.UpdateRole(id, req.Role); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, nil)
}

type updateActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// AdminUpdateUserActive 启用/停用账号，停用同时踢掉全部会话
func (h *Handler) AdminUpdateUserActive(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	var req updateActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	if err := h.Repos.User.UpdateActive(id, *req.Active); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if !*req.Active {
		if _, err := h.Repos.Session.DeleteOthers(id, 0); err != nil {
			log.Printf("[Admin] 停用账号后清理会话失败: %v", err)
		}
	}
	utils.Success(c, nil)
}

// AdminDeleteUser 删除用户
func (h *Handler) AdminDeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}
	if id == middleware.GetUserID(c) {
		utils.BadRequest(c, "不能删除自己的账号")
		return
	}

	if err := h.Repos.User.Delete(id); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.CacheDelete("admin:stats")
	utils.Success(c, nil)
}

// ==================== 目录管理 ====================

type importRequest struct {
	TmdbID int `json:"tmdb_id" binding:"required"`
}

// AdminImportMovie 从 TMDB 导入电影
func (h *Handler) AdminImportMovie(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	movie, err := h.TMDB.ImportMovie(req.TmdbID)
	if err != nil {
		log.Printf("[Admin] TMDB 电影导入失败 (%d): %v", req.TmdbID, err)
		utils.InternalServerError(c, "导入失败: "+err.Error())
		return
	}

	// TMDB 缺失的评分/时长从 IMDb 异步补采
	if movie.IMDbID != "" {
		h.Scraper.EnrichAsync(movie.ID)
	}

	h.movieCache.Clear()
	utils.Success(c, movie)
}

// AdminImportSeries 从 TMDB 导入剧集（含季和集）
func (h *Handler) AdminImportSeries(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	series, err := h.TMDB.ImportSeries(req.TmdbID)
	if err != nil {
		log.Printf("[Admin] TMDB 剧集导入失败 (%d): %v", req.TmdbID, err)
		utils.InternalServerError(c, "导入失败: "+err.Error())
		return
	}

	h.seriesCache.Clear()
	utils.Success(c, series)
}

// AdminEnrichMovie 从 IMDb 补采电影元数据
func (h *Handler) AdminEnrichMovie(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	movie, err := h.Scraper.Enrich(id)
	if err != nil {
		utils.InternalServerError(c, "补采失败: "+err.Error())
		return
	}
	h.movieCache.Clear()
	utils.Success(c, movie)
}

// AdminDeleteMovie 删除电影
func (h *Handler) AdminDeleteMovie(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	if err := h.Repos.Movie.Delete(id); err != nil {
		utils.InternalServerError(c, "删除失败")
		return
	}
	h.movieCache.Clear()
	utils.Success(c, nil)
}

// AdminDeleteSeries 删除剧集
func (h *Handler) AdminDeleteSeries(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	if err := h.Repos.Series.Delete(id); err != nil {
		utils.InternalServerError(c, "删除失败")
		return
	}
	h.seriesCache.Clear()
	utils.Success(c, nil)
}

type createVideoRequest struct {
	MovieID   *int   `json:"movie_id"`
	EpisodeID *int   `json:"episode_id"`
	Source    string `json:"source" binding:"required"`
	Quality   string `json:"quality"`
	URL       string `json:"url" binding:"required,url"`
}

// AdminCreateVideo 添加播放源
func (h *Handler) AdminCreateVideo(c *gin.Context) {
	var req createVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	video := &model.Video{
		MovieID:   req.MovieID,
		EpisodeID: req.EpisodeID,
		Source:    req.Source,
		Quality:   req.Quality,
		URL:       req.URL,
		CreatedAt: time.Now(),
	}
	if err := h.Repos.Video.Create(video); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	utils.Success(c, video)
}

// AdminDeleteVideo 删除播放源
func (h *Handler) AdminDeleteVideo(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	video, err := h.Repos.Video.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if video == nil {
		utils.NotFound(c, "播放源不存在")
		return
	}

	if err := h.Repos.Video.Delete(id); err != nil {
		utils.InternalServerError(c, "删除失败")
		return
	}
	utils.Success(c, nil)
}

type setCategoryRequest struct {
	CategoryID *int `json:"category_id"`
}

// AdminSetMovieCategory 设置影片所属栏目
func (h *Handler) AdminSetMovieCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	var req setCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	movie, err := h.Repos.Movie.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if movie == nil {
		utils.NotFound(c, "电影不存在")
		return
	}

	if err := h.Repos.Movie.SetCategory(id, req.CategoryID); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	h.movieCache.Clear()
	utils.Success(c, nil)
}

type setEmbeddingRequest struct {
	Embedding []float32 `json:"embedding" binding:"required,len=768"`
}

// AdminSetMovieEmbedding 回填离线计算的影片向量
func (h *Handler) AdminSetMovieEmbedding(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	var req setEmbeddingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	movie, err := h.Repos.Movie.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if movie == nil {
		utils.NotFound(c, "电影不存在")
		return
	}

	if err := h.Repos.Movie.UpdateEmbedding(id, pgvector.NewVector(req.Embedding)); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, nil)
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

// AdminCreateCategory 创建分类
func (h *Handler) AdminCreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	existing, err := h.Repos.Category.FindBySlug(req.Slug)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if existing != nil {
		utils.Conflict(c, "分类标识已存在")
		return
	}

	category := &model.Category{Name: req.Name, Slug: req.Slug, CreatedAt: time.Now()}
	if err := h.Repos.Category.Create(category); err != nil {
		utils.InternalServerError(c, "创建失败: "+err.Error())
		return
	}
	utils.Success(c, category)
}

// AdminUpdateCategory 更新分类
func (h *Handler) AdminUpdateCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	category := &model.Category{ID: id, Name: req.Name, Slug: req.Slug}
	if err := h.Repos.Category.Update(category); err != nil {
		utils.InternalServerError(c, "更新失败")
		return
	}
	utils.Success(c, category)
}

// AdminDeleteCategory 删除分类
func (h *Handler) AdminDeleteCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	if err := h.Repos.Category.Delete(id); err != nil {
		utils.InternalServerError(c, "删除失败")
		return
	}
	utils.Success(c, nil)
}
