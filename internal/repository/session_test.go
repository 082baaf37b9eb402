package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/user/vidora/internal/model"
	"github.com/user/vidora/internal/utils"
)

var testMeta = utils.ClientMeta{Device: "desktop", Browser: "Chrome", OS: "Linux"}

func TestSessionCreateLimit(t *testing.T) {
	repo := NewSessionRepository(testDB(t))

	for i := 0; i < 4; i++ {
		if _, err := repo.Create(1, testMeta, "1.2.3.4", time.Hour); err != nil {
			t.Fatalf("第 %d 个会话创建失败: %v", i+1, err)
		}
	}

	if _, err := repo.Create(1, testMeta, "1.2.3.4", time.Hour); !errors.Is(err, ErrSessionLimit) {
		t.Fatalf("第 5 个会话应返回 ErrSessionLimit，实际: %v", err)
	}

	// 不同用户不受影响
	if _, err := repo.Create(2, testMeta, "1.2.3.4", time.Hour); err != nil {
		t.Fatalf("其他用户创建会话失败: %v", err)
	}
}

func TestSessionLimitIgnoresExpired(t *testing.T) {
	db := testDB(t)
	repo := NewSessionRepository(db)

	var first *model.Session
	for i := 0; i < 4; i++ {
		s, err := repo.Create(1, testMeta, "1.2.3.4", time.Hour)
		if err != nil {
			t.Fatalf("创建会话失败: %v", err)
		}
		if i == 0 {
			first = s
		}
	}

	// 把第一个会话标记为已过期
	if err := db.Model(&model.Session{}).Where("id = ?", first.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("更新过期时间失败: %v", err)
	}

	if _, err := repo.Create(1, testMeta, "1.2.3.4", time.Hour); err != nil {
		t.Fatalf("有过期会话时应允许创建，实际: %v", err)
	}

	count, err := repo.CountActive(1)
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	if count != 4 {
		t.Fatalf("未过期会话数应为 4，实际: %d", count)
	}
}

func TestSessionFindByToken(t *testing.T) {
	db := testDB(t)
	repo := NewSessionRepository(db)

	s, err := repo.Create(1, testMeta, "1.2.3.4", time.Hour)
	if err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}

	found, err := repo.FindByToken(s.Token)
	if err != nil || found == nil {
		t.Fatalf("应能找到会话: %v", err)
	}
	if found.UserID != 1 {
		t.Fatalf("会话归属错误: %d", found.UserID)
	}

	// 过期后查不到
	if err := db.Model(&model.Session{}).Where("id = ?", s.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("更新过期时间失败: %v", err)
	}
	found, err = repo.FindByToken(s.Token)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if found != nil {
		t.Fatal("过期会话不应被查到")
	}
}

func TestSessionDeleteScopedToUser(t *testing.T) {
	repo := NewSessionRepository(testDB(t))

	s, err := repo.Create(1, testMeta, "1.2.3.4", time.Hour)
	if err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}

	// 其他用户删不掉
	rows, err := repo.Delete(2, s.ID)
	if err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if rows != 0 {
		t.Fatalf("跨用户删除应影响 0 行，实际: %d", rows)
	}

	rows, err = repo.Delete(1, s.ID)
	if err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if rows != 1 {
		t.Fatalf("本人删除应影响 1 行，实际: %d", rows)
	}
}

func TestSessionDeleteOthers(t *testing.T) {
	repo := NewSessionRepository(testDB(t))

	var current *model.Session
	for i := 0; i < 3; i++ {
		s, err := repo.Create(1, testMeta, "1.2.3.4", time.Hour)
		if err != nil {
			t.Fatalf("创建会话失败: %v", err)
		}
		current = s
	}

	deleted, err := repo.DeleteOthers(1, current.ID)
	if err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("应删除 2 个会话，实际: %d", deleted)
	}

	// 当前会话仍然有效
	found, err := repo.FindByToken(current.Token)
	if err != nil || found == nil {
		t.Fatalf("当前会话不应被删除: %v", err)
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	db := testDB(t)
	repo := NewSessionRepository(db)

	s1, _ := repo.Create(1, testMeta, "1.2.3.4", time.Hour)
	s2, _ := repo.Create(1, testMeta, "1.2.3.4", time.Hour)
	if err := db.Model(&model.Session{}).Where("id = ?", s1.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("更新过期时间失败: %v", err)
	}

	deleted, err := repo.DeleteExpired()
	if err != nil {
		t.Fatalf("清理失败: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("应清理 1 个会话，实际: %d", deleted)
	}

	if found, _ := repo.FindByToken(s2.Token); found == nil {
		t.Fatal("未过期会话不应被清理")
	}
}
