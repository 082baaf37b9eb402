package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/vidora/internal/middleware"
	"github.com/user/vidora/internal/model"
	"github.com/user/vidora/internal/repository"
	"github.com/user/vidora/internal/utils"
)

// ==================== 目录查询 ====================

// parseListQuery 从查询串解析列表参数
func parseListQuery(c *gin.Context) repository.ListQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return repository.ListQuery{
		Genre:    c.Query("genre"),
		Year:     c.Query("year"),
		Category: c.Query("category"),
		Country:  c.Query("country"),
		Keyword:  c.Query("q"),
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	}
}

// ListMovies 电影列表（过滤/排序/分页，结果进 LRU 缓存）
func (h *Handler) ListMovies(c *gin.Context) {
	q := parseListQuery(c)
	q.Normalize()

	key := q.CacheKey("movies")
	if cached, ok := h.movieCache.Get(key); ok {
		utils.Success(c, cached)
		return
	}

	movies, total, err := h.Repos.Movie.List(q)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	res := listResult[*model.Movie]{Items: movies, Total: total, Page: q.Page, PageSize: q.PageSize}
	h.movieCache.Set(key, res)
	utils.Success(c, res)
}

// GetMovie 电影详情（含播放源、点赞数，登录用户附带点赞/想看状态）
func (h *Handler) GetMovie(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
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

	videos, _ := h.Repos.Video.ListByMovie(id)
	likeCount, _ := h.Repos.Like.CountByMedia(model.MediaTypeMovie, id)

	liked, inWatchlist := false, false
	if userID := middleware.GetUserID(c); userID > 0 {
		liked, _ = h.Repos.Like.IsLiked(userID, model.MediaTypeMovie, id)
		inWatchlist, _ = h.Repos.Watchlist.Contains(userID, model.MediaTypeMovie, id)
	}

	utils.Success(c, gin.H{
		"movie":        movie,
		"videos":       videos,
		"like_count":   likeCount,
		"liked":        liked,
		"in_watchlist": inWatchlist,
	})
}

// SimilarMovies 相似影片推荐
func (h *Handler) SimilarMovies(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	movies, err := h.Repos.Movie.FindSimilar(id, 12)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if movies == nil {
		movies = []*model.Movie{}
	}

	utils.Success(c, movies)
}

// ListSeries 剧集列表
func (h *Handler) ListSeries(c *gin.Context) {
	q := parseListQuery(c)
	q.Normalize()

	key := q.CacheKey("series")
	if cached, ok := h.seriesCache.Get(key); ok {
		utils.Success(c, cached)
		return
	}

	series, total, err := h.Repos.Series.List(q)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	res := listResult[*model.Series]{Items: series, Total: total, Page: q.Page, PageSize: q.PageSize}
	h.seriesCache.Set(key, res)
	utils.Success(c, res)
}

// GetSeries 剧集详情（含季和集，登录用户附带点赞/想看状态）
func (h *Handler) GetSeries(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	series, err := h.Repos.Series.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if series == nil {
		utils.NotFound(c, "剧集不存在")
		return
	}

	likeCount, _ := h.Repos.Like.CountByMedia(model.MediaTypeSeries, id)

	liked, inWatchlist := false, false
	if userID := middleware.GetUserID(c); userID > 0 {
		liked, _ = h.Repos.Like.IsLiked(userID, model.MediaTypeSeries, id)
		inWatchlist, _ = h.Repos.Watchlist.Contains(userID, model.MediaTypeSeries, id)
	}

	utils.Success(c, gin.H{
		"series":       series,
		"like_count":   likeCount,
		"liked":        liked,
		"in_watchlist": inWatchlist,
	})
}

// GetEpisodeVideos 单集播放源
func (h *Handler) GetEpisodeVideos(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	episode, err := h.Repos.Series.FindEpisode(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if episode == nil {
		utils.NotFound(c, "剧集不存在")
		return
	}

	utils.Success(c, episode.Videos)
}

// GetVideo 播放源详情
func (h *Handler) GetVideo(c *gin.Context) {
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

	utils.Success(c, video)
}

// ListGenres 类型列表
func (h *Handler) ListGenres(c *gin.Context) {
	genres, err := h.Repos.Genre.ListAll()
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, genres)
}

// ListCategories 分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.Repos.Category.ListAll()
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, categories)
}

// Search 全站搜索（电影 + 剧集）
func (h *Handler) Search(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		utils.BadRequest(c, "请输入搜索关键词")
		return
	}

	q := repository.ListQuery{Keyword: keyword, Sort: "rating", PageSize: 10}
	movies, _, err := h.Repos.Movie.List(q)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	series, _, err := h.Repos.Series.List(q)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, gin.H{
		"movies": movies,
		"series": series,
	})
}
