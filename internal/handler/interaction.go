package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/vidora/internal/middleware"
	"github.com/user/vidora/internal/model"
	"github.com/user/vidora/internal/utils"
)

// mediaRef 点赞/想看接口的路径参数
type mediaRef struct {
	Type string `uri:"type" binding:"required,mediatype"`
	ID   int    `uri:"id" binding:"required"`
}

// ==================== 点赞 ====================

// AddLike 点赞
func (h *Handler) AddLike(c *gin.Context) {
	var ref mediaRef
	if err := c.ShouldBindUri(&ref); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	if err := h.Repos.Like.Add(middleware.GetUserID(c), ref.Type, ref.ID); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, nil)
}

// RemoveLike 取消点赞
func (h *Handler) RemoveLike(c *gin.Context) {
	var ref mediaRef
	if err := c.ShouldBindUri(&ref); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	if err := h.Repos.Like.Remove(middleware.GetUserID(c), ref.Type, ref.ID); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, nil)
}

// ListLikes 当前用户点赞列表（填充影片信息）
func (h *Handler) ListLikes(c *gin.Context) {
	userID := middleware.GetUserID(c)
	likes, err := h.Repos.Like.ListByUser(userID, 50, 0)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	h.attachLikeMedia(likes)
	utils.Success(c, likes)
}

// attachLikeMedia 批量填充点赞条目的影片/剧集信息
func (h *Handler) attachLikeMedia(likes []*model.Like) {
	var movieIDs, seriesIDs []int
	for _, l := range likes {
		switch l.MediaType {
		case model.MediaTypeMovie:
			movieIDs = append(movieIDs, l.MediaID)
		case model.MediaTypeSeries:
			seriesIDs = append(seriesIDs, l.MediaID)
		}
	}

	movies, _ := h.Repos.Movie.FindByIDs(movieIDs)
	series, _ := h.Repos.Series.FindByIDs(seriesIDs)
	for _, l := range likes {
		switch l.MediaType {
		case model.MediaTypeMovie:
			l.Movie = movies[l.MediaID]
		case model.MediaTypeSeries:
			l.Series = series[l.MediaID]
		}
	}
}

// ==================== 想看清单 ====================

// AddToWatchlist 加入想看清单
func (h *Handler) AddToWatchlist(c *gin.Context) {
	var ref mediaRef
	if err := c.ShouldBindUri(&ref); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	if err := h.Repos.Watchlist.Add(middleware.GetUserID(c), ref.Type, ref.ID); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, nil)
}

// RemoveFromWatchlist 从想看清单移除
func (h *Handler) RemoveFromWatchlist(c *gin.Context) {
	var ref mediaRef
	if err := c.ShouldBindUri(&ref); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	if err := h.Repos.Watchlist.Remove(middleware.GetUserID(c), ref.Type, ref.ID); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, nil)
}

// ListWatchlist 当前用户想看清单（填充影片信息）
func (h *Handler) ListWatchlist(c *gin.Context) {
	userID := middleware.GetUserID(c)
	entries, err := h.Repos.Watchlist.ListByUser(userID, 50, 0)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	var movieIDs, seriesIDs []int
	for _, e := range entries {
		switch e.MediaType {
		case model.MediaTypeMovie:
			movieIDs = append(movieIDs, e.MediaID)
		case model.MediaTypeSeries:
			seriesIDs = append(seriesIDs, e.MediaID)
		}
	}
	movies, _ := h.Repos.Movie.FindByIDs(movieIDs)
	series, _ := h.Repos.Series.FindByIDs(seriesIDs)
	for _, e := range entries {
		switch e.MediaType {
		case model.MediaTypeMovie:
			e.Movie = movies[e.MediaID]
		case model.MediaTypeSeries:
			e.Series = series[e.MediaID]
		}
	}

	utils.Success(c, entries)
}

// ==================== 观影历史 ====================

type historySyncItem struct {
	MediaType string  `json:"media_type" binding:"required,mediatype"`
	MediaID   int     `json:"media_id" binding:"required"`
	EpisodeID int     `json:"episode_id"`
	Title     string  `json:"title"`
	Poster    string  `json:"poster"`
	Progress  int     `json:"progress" binding:"min=0,max=100"`
	LastTime  float64 `json:"last_time"`
	Duration  float64 `json:"duration"`
	Source    string  `json:"source"`
	WatchedAt int64   `json:"watched_at"` // Unix 秒，0 则取服务器时间
}

type historySyncRequest struct {
	Items []historySyncItem `json:"items" binding:"required,dive"`
}

// SyncHistory 批量上报观影进度（同键记录覆盖更新）
func (h *Handler) SyncHistory(c *gin.Context) {
	var req historySyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	userID := middleware.GetUserID(c)
	for _, item := range req.Items {
		record := &model.WatchHistory{
			UserID:    userID,
			MediaType: item.MediaType,
			MediaID:   item.MediaID,
			EpisodeID: item.EpisodeID,
			Title:     item.Title,
			Poster:    item.Poster,
			Progress:  item.Progress,
			LastTime:  item.LastTime,
			Duration:  item.Duration,
			Source:    item.Source,
		}
		if item.WatchedAt > 0 {
			record.WatchedAt = time.Unix(item.WatchedAt, 0)
		}
		if err := h.Repos.History.Upsert(record); err != nil {
			utils.InternalServerError(c, "")
			return
		}
	}

	utils.Success(c, gin.H{"synced": len(req.Items)})
}

// ListHistory 观影历史（分页，最近观看在前）。
// 带 after 参数（Unix 秒）时返回该时间点之后的全部记录，供多端增量拉取。
func (h *Handler) ListHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if afterStr := c.Query("after"); afterStr != "" {
		after, err := strconv.ParseInt(afterStr, 10, 64)
		if err != nil {
			utils.BadRequest(c, "无效的时间戳")
			return
		}
		histories, err := h.Repos.History.GetAfter(userID, time.Unix(after, 0))
		if err != nil {
			utils.InternalServerError(c, "")
			return
		}
		utils.Success(c, gin.H{"items": histories, "total": len(histories)})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize := 20

	histories, err := h.Repos.History.ListByUser(userID, pageSize, (page-1)*pageSize)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	total, _ := h.Repos.History.CountByUser(userID)

	utils.Success(c, gin.H{
		"items": histories,
		"total": total,
		"page":  page,
	})
}

// DeleteHistory 删除观影记录
func (h *Handler) DeleteHistory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	if err := h.Repos.History.Delete(middleware.GetUserID(c), id); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, nil)
}
