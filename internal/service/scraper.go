package service

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/vidora/internal/model"
	"github.com/user/vidora/internal/repository"
	"github.com/user/vidora/internal/utils"
)

// IMDbScraper IMDb 元数据补采器
// TMDB 偶尔缺评分或简介，从 IMDb 详情页补齐
type IMDbScraper struct {
	movieRepo *repository.MovieRepository
	client    *utils.HTTPClient
}

func NewIMDbScraper(movieRepo *repository.MovieRepository) *IMDbScraper {
	return &IMDbScraper{
		movieRepo: movieRepo,
		client:    utils.NewHTTPClient(15 * time.Second),
	}
}

// imdbLD IMDb 页面内嵌的 JSON-LD 结构
type imdbLD struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	AggregateRating struct {
		RatingValue json.Number `json:"ratingValue"`
	} `json:"aggregateRating"`
	Duration string `json:"duration"` // ISO 8601，如 PT2H22M
}

// Enrich 抓取 IMDb 详情页，补全电影缺失字段并落库
func (s *IMDbScraper) Enrich(movieID int) (*model.Movie, error) {
	movie, err := s.movieRepo.FindByID(movieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, fmt.Errorf("电影不存在: %d", movieID)
	}
	if movie.IMDbID == "" {
		return movie, fmt.Errorf("缺少 IMDb ID，无法补采")
	}

	ld, err := s.fetchPage(movie.IMDbID)
	if err != nil {
		return movie, err
	}

	changed := false
	if movie.Rating == 0 {
		if rating, err := ld.AggregateRating.RatingValue.Float64(); err == nil && rating > 0 {
			movie.Rating = rating
			changed = true
		}
	}
	if movie.Summary == "" && ld.Description != "" {
		movie.Summary = ld.Description
		changed = true
	}
	if movie.Duration == 0 {
		if minutes := parseISODuration(ld.Duration); minutes > 0 {
			movie.Duration = minutes
			changed = true
		}
	}

	if changed {
		if err := s.movieRepo.Upsert(movie, movie.Genres); err != nil {
			return movie, fmt.Errorf("保存补采结果失败: %w", err)
		}
	}
	return movie, nil
}

// EnrichAsync 异步补采，失败只记日志
func (s *IMDbScraper) EnrichAsync(movieID int) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[IMDb] 异步补采发生恐慌 (MovieID: %d): %v", movieID, r)
			}
		}()

		// 增加随机延迟，避免请求过频
		time.Sleep(time.Duration(200+(time.Now().UnixNano()%800)) * time.Millisecond)

		if _, err := s.Enrich(movieID); err != nil {
			log.Printf("[IMDb] 异步补采失败 (MovieID: %d): %v", movieID, err)
		}
	}()
}

func (s *IMDbScraper) fetchPage(imdbID string) (*imdbLD, error) {
	resp, err := s.client.Get(fmt.Sprintf("https://www.imdb.com/title/%s/", imdbID))
	if err != nil {
		return nil, fmt.Errorf("请求 IMDb 失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("请求返回状态码: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("解析 HTML 失败: %w", err)
	}

	// JSON-LD 通常最稳定
	var ld imdbLD
	found := false
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if err := json.Unmarshal([]byte(sel.Text()), &ld); err == nil && ld.Name != "" {
			found = true
			return false
		}
		return true
	})
	if !found {
		return nil, fmt.Errorf("页面未找到 JSON-LD 数据")
	}
	return &ld, nil
}

// parseISODuration 解析 ISO 8601 时长为分钟数，如 PT2H22M -> 142
func parseISODuration(d string) int {
	if !strings.HasPrefix(d, "PT") {
		return 0
	}
	d = strings.TrimPrefix(d, "PT")
	minutes := 0
	if idx := strings.Index(d, "H"); idx > 0 {
		if h, err := strconv.Atoi(d[:idx]); err == nil {
			minutes += h * 60
		}
		d = d[idx+1:]
	}
	if idx := strings.Index(d, "M"); idx > 0 {
		if m, err := strconv.Atoi(d[:idx]); err == nil {
			minutes += m
		}
	}
	return minutes
}
