package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/user/vidora/internal/config"
	"github.com/user/vidora/internal/model"
	"github.com/user/vidora/internal/repository"
	"github.com/user/vidora/internal/utils"
	"golang.org/x/sync/singleflight"
)

// TMDBService TMDB 元数据导入服务
type TMDBService struct {
	repos  *repository.Repositories
	config *config.Config
	client *utils.HTTPClient
	group  singleflight.Group
}

func NewTMDBService(repos *repository.Repositories, cfg *config.Config) *TMDBService {
	return &TMDBService{
		repos:  repos,
		config: cfg,
		client: utils.NewHTTPClient(15 * time.Second),
	}
}

// ==================== 电影导入 ====================

// ImportMovie 从 TMDB 导入电影并落库
func (s *TMDBService) ImportMovie(tmdbID int) (*model.Movie, error) {
	// 使用 singleflight 避免并发重复导入
	val, err, _ := s.group.Do(fmt.Sprintf("movie:%d", tmdbID), func() (interface{}, error) {
		return s.importMovieInternal(tmdbID)
	})
	if err != nil {
		return nil, err
	}
	return val.(*model.Movie), nil
}

func (s *TMDBService) importMovieInternal(tmdbID int) (*model.Movie, error) {
	var details tmdbMovieDetails
	url := fmt.Sprintf("%s/movie/%d?api_key=%s&language=zh-CN", s.config.TMDBBaseURL, tmdbID, s.config.TMDBApiKey)
	if err := s.client.GetJSON(url, &details); err != nil {
		return nil, fmt.Errorf("获取 TMDB 电影详情失败: %w", err)
	}

	genres, err := s.syncGenres(details.Genres)
	if err != nil {
		return nil, err
	}

	movie := &model.Movie{
		TmdbID:        details.ID,
		Title:         details.Title,
		OriginalTitle: details.OriginalTitle,
		Year:          yearOf(details.ReleaseDate),
		Poster:        s.imageURL("w500", details.PosterPath),
		Backdrop:      s.imageURL("w1280", details.BackdropPath),
		Rating:        details.VoteAverage,
		Countries:     countryNames(details.ProductionCountries),
		Summary:       details.Overview,
		Duration:      details.Runtime,
		IMDbID:        details.IMDbID,
	}
	movie.EmbeddingContent = buildEmbeddingContent(movie.Title, movie.OriginalTitle, movie.Summary, genres)

	if err := s.repos.Movie.Upsert(movie, genres); err != nil {
		return nil, fmt.Errorf("保存电影失败: %w", err)
	}
	return s.repos.Movie.FindByTmdbID(details.ID)
}

// ==================== 剧集导入 ====================

// ImportSeries 从 TMDB 导入剧集（含全部季和集）
func (s *TMDBService) ImportSeries(tmdbID int) (*model.Series, error) {
	val, err, _ := s.group.Do(fmt.Sprintf("series:%d", tmdbID), func() (interface{}, error) {
		return s.importSeriesInternal(tmdbID)
	})
	if err != nil {
		return nil, err
	}
	return val.(*model.Series), nil
}

func (s *TMDBService) importSeriesInternal(tmdbID int) (*model.Series, error) {
	var details tmdbSeriesDetails
	url := fmt.Sprintf("%s/tv/%d?api_key=%s&language=zh-CN", s.config.TMDBBaseURL, tmdbID, s.config.TMDBApiKey)
	if err := s.client.GetJSON(url, &details); err != nil {
		return nil, fmt.Errorf("获取 TMDB 剧集详情失败: %w", err)
	}

	genres, err := s.syncGenres(details.Genres)
	if err != nil {
		return nil, err
	}

	series := &model.Series{
		TmdbID:        details.ID,
		Title:         details.Name,
		OriginalTitle: details.OriginalName,
		Year:          yearOf(details.FirstAirDate),
		Poster:        s.imageURL("w500", details.PosterPath),
		Backdrop:      s.imageURL("w1280", details.BackdropPath),
		Rating:        details.VoteAverage,
		Countries:     countryNames(details.ProductionCountries),
		Summary:       details.Overview,
		Status:        seriesStatus(details.Status),
	}

	if err := s.repos.Series.Upsert(series, genres); err != nil {
		return nil, fmt.Errorf("保存剧集失败: %w", err)
	}
	saved, err := s.repos.Series.FindByTmdbID(details.ID)
	if err != nil || saved == nil {
		return nil, fmt.Errorf("读取已保存剧集失败: %w", err)
	}

	// 逐季拉取分集信息
	for _, seasonMeta := range details.Seasons {
		if seasonMeta.SeasonNumber == 0 {
			continue // 跳过特别篇
		}
		if err := s.importSeason(saved.ID, tmdbID, seasonMeta.SeasonNumber); err != nil {
			log.Printf("[TMDB] 导入第 %d 季失败 (TmdbID: %d): %v", seasonMeta.SeasonNumber, tmdbID, err)
		}
	}

	return s.repos.Series.FindByID(saved.ID)
}

func (s *TMDBService) importSeason(seriesID, tmdbID, number int) error {
	var details tmdbSeasonDetails
	url := fmt.Sprintf("%s/tv/%d/season/%d?api_key=%s&language=zh-CN", s.config.TMDBBaseURL, tmdbID, number, s.config.TMDBApiKey)
	if err := s.client.GetJSON(url, &details); err != nil {
		return err
	}

	season := &model.Season{
		SeriesID: seriesID,
		Number:   details.SeasonNumber,
		Title:    details.Name,
		Poster:   s.imageURL("w500", details.PosterPath),
		AirDate:  details.AirDate,
	}
	if err := s.repos.Series.UpsertSeason(season); err != nil {
		return err
	}

	for _, ep := range details.Episodes {
		episode := &model.Episode{
			SeasonID: season.ID,
			Number:   ep.EpisodeNumber,
			Title:    ep.Name,
			Overview: ep.Overview,
			Still:    s.imageURL("w300", ep.StillPath),
			Runtime:  ep.Runtime,
		}
		if err := s.repos.Series.UpsertEpisode(episode); err != nil {
			return err
		}
	}
	return nil
}

// syncGenres 同步类型标签，返回带数据库 ID 的列表
func (s *TMDBService) syncGenres(raw []tmdbGenre) ([]model.Genre, error) {
	genres := make([]model.Genre, 0, len(raw))
	for _, g := range raw {
		genres = append(genres, model.Genre{TmdbID: g.ID, Name: g.Name})
	}
	synced, err := s.repos.Genre.UpsertAll(genres)
	if err != nil {
		return nil, fmt.Errorf("同步类型标签失败: %w", err)
	}
	return synced, nil
}

func (s *TMDBService) imageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", s.config.TMDBImageURL, size, path)
}

// ==================== TMDB 响应结构 ====================

type tmdbGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type tmdbCountry struct {
	Name string `json:"name"`
}

type tmdbMovieDetails struct {
	ID                  int           `json:"id"`
	Title               string        `json:"title"`
	OriginalTitle       string        `json:"original_title"`
	Overview            string        `json:"overview"`
	ReleaseDate         string        `json:"release_date"`
	Runtime             int           `json:"runtime"`
	PosterPath          string        `json:"poster_path"`
	BackdropPath        string        `json:"backdrop_path"`
	VoteAverage         float64       `json:"vote_average"`
	IMDbID              string        `json:"imdb_id"`
	Genres              []tmdbGenre   `json:"genres"`
	ProductionCountries []tmdbCountry `json:"production_countries"`
}

type tmdbSeriesDetails struct {
	ID                  int           `json:"id"`
	Name                string        `json:"name"`
	OriginalName        string        `json:"original_name"`
	Overview            string        `json:"overview"`
	FirstAirDate        string        `json:"first_air_date"`
	Status              string        `json:"status"`
	PosterPath          string        `json:"poster_path"`
	BackdropPath        string        `json:"backdrop_path"`
	VoteAverage         float64       `json:"vote_average"`
	Genres              []tmdbGenre   `json:"genres"`
	ProductionCountries []tmdbCountry `json:"production_countries"`
	Seasons             []struct {
		SeasonNumber int `json:"season_number"`
	} `json:"seasons"`
}

type tmdbSeasonDetails struct {
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	PosterPath   string `json:"poster_path"`
	AirDate      string `json:"air_date"`
	Episodes     []struct {
		EpisodeNumber int    `json:"episode_number"`
		Name          string `json:"name"`
		Overview      string `json:"overview"`
		StillPath     string `json:"still_path"`
		Runtime       int    `json:"runtime"`
	} `json:"episodes"`
}

func yearOf(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}

func countryNames(countries []tmdbCountry) []string {
	names := make([]string, 0, len(countries))
	for _, c := range countries {
		names = append(names, c.Name)
	}
	return names
}

func seriesStatus(status string) string {
	switch status {
	case "Ended", "Canceled":
		return "已完结"
	default:
		return "连载中"
	}
}

func buildEmbeddingContent(title, original, summary string, genres []model.Genre) string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	parts := []string{title}
	if original != "" && original != title {
		parts = append(parts, original)
	}
	if len(names) > 0 {
		parts = append(parts, strings.Join(names, "/"))
	}
	if summary != "" {
		parts = append(parts, summary)
	}
	return strings.Join(parts, "\n")
}
