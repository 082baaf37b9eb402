package repository

import (
	"testing"

	"github.com/user/vidora/internal/model"
	"gorm.io/gorm"
)

func seedMovies(t *testing.T, db *gorm.DB) *MovieRepository {
	t.Helper()
	movies := NewMovieRepository(db)
	genres := NewGenreRepository(db)

	action, err := genres.UpsertAll([]model.Genre{{TmdbID: 28, Name: "动作"}})
	if err != nil {
		t.Fatalf("创建类型失败: %v", err)
	}
	drama, err := genres.UpsertAll([]model.Genre{{TmdbID: 18, Name: "剧情"}})
	if err != nil {
		t.Fatalf("创建类型失败: %v", err)
	}

	seed := []struct {
		movie  model.Movie
		genres []model.Genre
	}{
		{model.Movie{TmdbID: 100, Title: "甲", Year: "2020", Rating: 8.5}, action},
		{model.Movie{TmdbID: 101, Title: "乙", Year: "2021", Rating: 7.0}, drama},
		{model.Movie{TmdbID: 102, Title: "丙", Year: "2021", Rating: 9.1}, action},
	}
	for i := range seed {
		if err := movies.Upsert(&seed[i].movie, seed[i].genres); err != nil {
			t.Fatalf("写入电影失败: %v", err)
		}
	}
	return movies
}

func TestMovieListFilters(t *testing.T) {
	movies := seedMovies(t, testDB(t))

	// 按类型
	items, total, err := movies.List(ListQuery{Genre: "动作"})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("动作片应有 2 部，实际 total=%d len=%d", total, len(items))
	}

	// 按年份
	_, total, err = movies.List(ListQuery{Year: "2021"})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 2 {
		t.Fatalf("2021 年应有 2 部，实际: %d", total)
	}

	// 类型 + 年份组合
	items, total, err = movies.List(ListQuery{Genre: "动作", Year: "2021"})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 1 || items[0].Title != "丙" {
		t.Fatalf("组合过滤结果错误: total=%d", total)
	}
}

func TestMovieListSortAndPagination(t *testing.T) {
	movies := seedMovies(t, testDB(t))

	items, total, err := movies.List(ListQuery{Sort: "rating", PageSize: 2})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 3 {
		t.Fatalf("总数应为 3，实际: %d", total)
	}
	if len(items) != 2 || items[0].Title != "丙" || items[1].Title != "甲" {
		t.Fatalf("评分排序第一页错误: %+v", items)
	}

	items, _, err = movies.List(ListQuery{Sort: "rating", PageSize: 2, Page: 2})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(items) != 1 || items[0].Title != "乙" {
		t.Fatalf("评分排序第二页错误: %+v", items)
	}
}

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{Page: -3, PageSize: 999, Sort: "id; DROP TABLE movies"}
	q.Normalize()
	if q.Page != 1 || q.PageSize != 50 || q.Sort != "updated" {
		t.Fatalf("归一化结果错误: %+v", q)
	}

	q = ListQuery{}
	q.Normalize()
	if q.Page != 1 || q.PageSize != 20 || q.Sort != "updated" {
		t.Fatalf("默认值错误: %+v", q)
	}
}

func TestMovieUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	movies := seedMovies(t, db)

	update := model.Movie{TmdbID: 100, Title: "甲（重制版）", Year: "2020", Rating: 8.8}
	if err := movies.Upsert(&update, nil); err != nil {
		t.Fatalf("二次写入失败: %v", err)
	}
	if update.ID == 0 {
		t.Fatal("冲突更新后应回填 ID")
	}

	count, _ := movies.Count()
	if count != 3 {
		t.Fatalf("重复写入不应新增记录，总数: %d", count)
	}

	found, err := movies.FindByTmdbID(100)
	if err != nil || found == nil {
		t.Fatalf("查找失败: %v", err)
	}
	if found.Title != "甲（重制版）" || found.Rating != 8.8 {
		t.Fatalf("字段未更新: %+v", found)
	}
	// 未传类型时保留原有关联
	if len(found.Genres) != 1 {
		t.Fatalf("类型关联应保留，实际: %d", len(found.Genres))
	}
}

func TestMovieFindByIDs(t *testing.T) {
	movies := seedMovies(t, testDB(t))

	m, err := movies.FindByTmdbID(101)
	if err != nil || m == nil {
		t.Fatalf("查找失败: %v", err)
	}

	res, err := movies.FindByIDs([]int{m.ID, 99999})
	if err != nil {
		t.Fatalf("批量查找失败: %v", err)
	}
	if len(res) != 1 || res[m.ID].Title != "乙" {
		t.Fatalf("批量查找结果错误: %+v", res)
	}

	empty, err := movies.FindByIDs(nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("空入参应返回空表: %v", err)
	}
}
