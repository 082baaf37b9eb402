package handler_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/user/vidora/internal/model"
	"github.com/user/vidora/internal/repository"
)

// makeAdmin 通过仓库直接创建管理员并登录
func makeAdmin(t *testing.T, r *gin.Engine, repos *repository.Repositories) []*http.Cookie {
	t.Helper()
	admin, err := repos.User.Create("admin@test.com", "admin", "admin123")
	if err != nil {
		t.Fatalf("创建管理员失败: %v", err)
	}
	if err := repos.User.UpdateRole(admin.ID, "admin"); err != nil {
		t.Fatalf("设置角色失败: %v", err)
	}
	w := postJSON(r, "/auth/login", gin.H{"email": "admin@test.com", "password": "admin123"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("管理员登录失败: %d", w.Code)
	}
	return authCookies(t, w)
}

func TestPasswordResetFlow(t *testing.T) {
	r, repos := newTestApp(t)

	userCookies := registerUser(t, r, "a@test.com", "oldpass123")
	postJSON(r, "/auth/logout", nil, userCookies)

	// 申请重置：存在与不存在的邮箱返回完全一致
	w1 := postJSON(r, "/auth/forgot-password", gin.H{"email": "a@test.com"}, nil)
	w2 := postJSON(r, "/auth/forgot-password", gin.H{"email": "nobody@test.com"}, nil)
	if w1.Code != http.StatusOK || w2.Code != http.StatusOK {
		t.Fatalf("申请重置应 200，实际: %d / %d", w1.Code, w2.Code)
	}
	if decodeResponse(t, w1).Message != decodeResponse(t, w2).Message {
		t.Fatal("响应不应暴露邮箱是否存在")
	}

	// 只有存在的邮箱真正落了令牌
	resets, err := repos.PasswordReset.ListAll()
	if err != nil {
		t.Fatalf("查询令牌失败: %v", err)
	}
	if len(resets) != 1 || resets[0].Email != "a@test.com" {
		t.Fatalf("应只有 1 条重置申请: %+v", resets)
	}
	reset := resets[0]

	// 未激活时无法消费
	w := postJSON(r, "/auth/reset-password",
		gin.H{"token": reset.Token, "password": "newpass123"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("未激活令牌应 400，实际: %d", w.Code)
	}

	// 管理员激活
	adminCookies := makeAdmin(t, r, repos)
	w = postJSON(r, "/admin/password-resets/"+strconv.Itoa(reset.ID)+"/activate", nil, adminCookies)
	if w.Code != http.StatusOK {
		t.Fatalf("激活失败: %d %s", w.Code, w.Body.String())
	}
	data := decodeResponse(t, w).Data.(map[string]interface{})
	if data["reset_url"] == "" || data["expires_at"] == nil {
		t.Fatalf("激活响应应包含重置链接和有效期: %+v", data)
	}

	// 消费令牌
	w = postJSON(r, "/auth/reset-password",
		gin.H{"token": reset.Token, "password": "newpass123"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("重置失败: %d %s", w.Code, w.Body.String())
	}

	// 新密码可登录，旧密码不行
	w = postJSON(r, "/auth/login", gin.H{"email": "a@test.com", "password": "newpass123"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("新密码登录失败: %d", w.Code)
	}
	w = postJSON(r, "/auth/login", gin.H{"email": "a@test.com", "password": "oldpass123"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("旧密码应失效: %d", w.Code)
	}

	// 令牌单次有效
	w = postJSON(r, "/auth/reset-password",
		gin.H{"token": reset.Token, "password": "another123"}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("重复消费应 409，实际: %d", w.Code)
	}
}

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	r, repos := newTestApp(t)

	userCookies := registerUser(t, r, "a@test.com", "secret123")

	if w := request(r, "GET", "/admin/password-resets", userCookies); w.Code != http.StatusForbidden {
		t.Fatalf("普通用户应 403，实际: %d", w.Code)
	}
	if w := request(r, "GET", "/admin/password-resets", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("未登录应 401，实际: %d", w.Code)
	}

	adminCookies := makeAdmin(t, r, repos)
	if w := request(r, "GET", "/admin/password-resets", adminCookies); w.Code != http.StatusOK {
		t.Fatalf("管理员应放行，实际: %d", w.Code)
	}
}

func TestAdminCleanupPasswordResets(t *testing.T) {
	r, repos := newTestApp(t)

	registerUser(t, r, "a@test.com", "secret123")
	reset, err := repos.PasswordReset.Create("a@test.com")
	if err != nil {
		t.Fatalf("创建令牌失败: %v", err)
	}
	// 标记为已使用
	if err := repos.DB.Model(&model.PasswordReset{}).Where("id = ?", reset.ID).
		Update("used", true).Error; err != nil {
		t.Fatalf("标记失败: %v", err)
	}

	adminCookies := makeAdmin(t, r, repos)

	w := postJSON(r, "/admin/password-resets/cleanup?mode=used", nil, adminCookies)
	if w.Code != http.StatusOK {
		t.Fatalf("清理失败: %d %s", w.Code, w.Body.String())
	}
	data := decodeResponse(t, w).Data.(map[string]interface{})
	if data["deleted"].(float64) != 1 {
		t.Fatalf("应清理 1 条: %+v", data)
	}

	// 未知模式
	w = postJSON(r, "/admin/password-resets/cleanup?mode=bogus", nil, adminCookies)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("未知模式应 400，实际: %d", w.Code)
	}
}
