package handler_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/user/vidora/internal/model"
	"github.com/user/vidora/internal/repository"
)

func seedMovie(t *testing.T, repos *repository.Repositories, tmdbID int, title string) *model.Movie {
	t.Helper()
	movie := &model.Movie{TmdbID: tmdbID, Title: title, Year: "2021", Rating: 8.0}
	if err := repos.Movie.Upsert(movie, nil); err != nil {
		t.Fatalf("写入电影失败: %v", err)
	}
	return movie
}

func TestLikeEndpoints(t *testing.T) {
	r, repos := newTestApp(t)
	cookies := registerUser(t, r, "a@test.com", "secret123")
	movie := seedMovie(t, repos, 100, "甲")

	// 未登录拒绝
	if w := request(r, "POST", "/api/likes/movie/"+strconv.Itoa(movie.ID), nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("未登录点赞应 401，实际: %d", w.Code)
	}

	// 非法媒体类型被校验器拦下
	if w := request(r, "POST", "/api/likes/book/1", cookies); w.Code != http.StatusBadRequest {
		t.Fatalf("非法类型应 400，实际: %d", w.Code)
	}

	if w := request(r, "POST", "/api/likes/movie/"+strconv.Itoa(movie.ID), cookies); w.Code != http.StatusOK {
		t.Fatalf("点赞失败: %d", w.Code)
	}

	// 详情页带点赞状态和计数
	w := request(r, "GET", "/api/movies/"+strconv.Itoa(movie.ID), cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("查询详情失败: %d", w.Code)
	}
	var detail struct {
		Data struct {
			Liked       bool  `json:"liked"`
			InWatchlist bool  `json:"in_watchlist"`
			LikeCount   int64 `json:"like_count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if !detail.Data.Liked || detail.Data.LikeCount != 1 {
		t.Fatalf("详情应标记已点赞且计数为 1: %s", w.Body.String())
	}
	if detail.Data.InWatchlist {
		t.Fatal("未加入想看清单不应标记 in_watchlist")
	}

	// 未登录访问详情不带个人状态
	w = request(r, "GET", "/api/movies/"+strconv.Itoa(movie.ID), nil)
	detail.Data.Liked = false
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if detail.Data.Liked {
		t.Fatal("未登录不应标记已点赞")
	}

	// 列表带影片信息
	w = request(r, "GET", "/api/likes", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("查询失败: %d", w.Code)
	}
	var resp struct {
		Data []struct {
			MediaID int `json:"media_id"`
			Movie   *struct {
				Title string `json:"title"`
			} `json:"movie"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Movie == nil || resp.Data[0].Movie.Title != "甲" {
		t.Fatalf("点赞列表应填充影片信息: %s", w.Body.String())
	}

	if w := request(r, "DELETE", "/api/likes/movie/"+strconv.Itoa(movie.ID), cookies); w.Code != http.StatusOK {
		t.Fatalf("取消点赞失败: %d", w.Code)
	}
	liked, _ := repos.Like.IsLiked(1, model.MediaTypeMovie, movie.ID)
	if liked {
		t.Fatal("取消后不应保留点赞")
	}
}

func TestHistorySyncEndpoint(t *testing.T) {
	r, _ := newTestApp(t)
	cookies := registerUser(t, r, "a@test.com", "secret123")

	body := gin.H{"items": []gin.H{
		{"media_type": "movie", "media_id": 10, "title": "甲", "progress": 30, "last_time": 1800.0, "duration": 6000.0},
		{"media_type": "series", "media_id": 20, "episode_id": 5, "title": "乙 第5集", "progress": 10},
	}}
	w := postJSON(r, "/api/history/sync", body, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("上报失败: %d %s", w.Code, w.Body.String())
	}

	// 同一条目再次上报覆盖进度
	body = gin.H{"items": []gin.H{
		{"media_type": "movie", "media_id": 10, "title": "甲", "progress": 90},
	}}
	if w := postJSON(r, "/api/history/sync", body, cookies); w.Code != http.StatusOK {
		t.Fatalf("二次上报失败: %d", w.Code)
	}

	w = request(r, "GET", "/api/history", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("查询失败: %d", w.Code)
	}
	var resp struct {
		Data struct {
			Items []struct {
				MediaID  int `json:"media_id"`
				Progress int `json:"progress"`
			} `json:"items"`
			Total int `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if resp.Data.Total != 2 {
		t.Fatalf("应有 2 条记录，实际: %d", resp.Data.Total)
	}
	for _, item := range resp.Data.Items {
		if item.MediaID == 10 && item.Progress != 90 {
			t.Fatalf("进度应被覆盖为 90，实际: %d", item.Progress)
		}
	}

	// 进度超出范围被校验拦下
	body = gin.H{"items": []gin.H{
		{"media_type": "movie", "media_id": 10, "progress": 150},
	}}
	if w := postJSON(r, "/api/history/sync", body, cookies); w.Code != http.StatusBadRequest {
		t.Fatalf("非法进度应 400，实际: %d", w.Code)
	}
}

func TestMovieListEndpoint(t *testing.T) {
	r, repos := newTestApp(t)

	seedMovie(t, repos, 100, "甲")
	seedMovie(t, repos, 101, "乙")

	w := request(r, "GET", "/api/movies?page_size=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("查询失败: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			Items    []json.RawMessage `json:"items"`
			Total    int               `json:"total"`
			Page     int               `json:"page"`
			PageSize int               `json:"page_size"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if resp.Data.Total != 2 || len(resp.Data.Items) != 1 || resp.Data.PageSize != 1 {
		t.Fatalf("分页结果错误: %s", w.Body.String())
	}

	// 详情与 404
	if w := request(r, "GET", "/api/movies/99999", nil); w.Code != http.StatusNotFound {
		t.Fatalf("不存在的电影应 404，实际: %d", w.Code)
	}
}
