package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/user/vidora/internal/repository"
	"github.com/user/vidora/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func testSessions(t *testing.T) *repository.SessionRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return repository.NewSessionRepository(db)
}

func testRouter(sessions *repository.SessionRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireAuth(testSecret, sessions), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	r.GET("/admin", RequireAuth(testSecret, sessions), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doRequest(r *gin.Engine, path, authToken, sessionToken string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if authToken != "" {
		req.AddCookie(&http.Cookie{Name: AuthCookie, Value: authToken})
	}
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionToken})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifyToken(t *testing.T) {
	token, err := GenerateToken(7, "a@test.com", "user", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("生成令牌失败: %v", err)
	}

	claims, err := VerifyToken(token, testSecret)
	if err != nil {
		t.Fatalf("校验失败: %v", err)
	}
	if claims.UserID != 7 || claims.Email != "a@test.com" || claims.Role != "user" {
		t.Fatalf("声明内容错误: %+v", claims)
	}

	if _, err := VerifyToken(token, "wrong-secret"); err == nil {
		t.Fatal("错误密钥应校验失败")
	}

	expired, _ := GenerateToken(7, "a@test.com", "user", testSecret, -time.Minute)
	if _, err := VerifyToken(expired, testSecret); err == nil {
		t.Fatal("过期令牌应校验失败")
	}
}

func TestRequireAuthBothTokens(t *testing.T) {
	sessions := testSessions(t)
	r := testRouter(sessions)

	session, err := sessions.Create(7, utils.ClientMeta{}, "1.2.3.4", time.Hour)
	if err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}
	authToken, _ := GenerateToken(7, "a@test.com", "user", testSecret, time.Hour)

	// 两个令牌齐全
	if w := doRequest(r, "/protected", authToken, session.Token); w.Code != http.StatusOK {
		t.Fatalf("双令牌请求应放行，实际: %d", w.Code)
	}

	// 缺任一令牌都拒绝
	if w := doRequest(r, "/protected", authToken, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("缺会话令牌应 401，实际: %d", w.Code)
	}
	if w := doRequest(r, "/protected", "", session.Token); w.Code != http.StatusUnauthorized {
		t.Fatalf("缺身份令牌应 401，实际: %d", w.Code)
	}

	// 会话令牌伪造
	if w := doRequest(r, "/protected", authToken, "forged-token"); w.Code != http.StatusUnauthorized {
		t.Fatalf("伪造会话令牌应 401，实际: %d", w.Code)
	}
}

func TestRequireAuthUserMismatch(t *testing.T) {
	sessions := testSessions(t)
	r := testRouter(sessions)

	// 会话属于用户 7，JWT 却是用户 8
	session, err := sessions.Create(7, utils.ClientMeta{}, "1.2.3.4", time.Hour)
	if err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}
	otherToken, _ := GenerateToken(8, "b@test.com", "user", testSecret, time.Hour)

	if w := doRequest(r, "/protected", otherToken, session.Token); w.Code != http.StatusUnauthorized {
		t.Fatalf("令牌归属不一致应 401，实际: %d", w.Code)
	}
}

func TestRequireAuthRevokedSession(t *testing.T) {
	sessions := testSessions(t)
	r := testRouter(sessions)

	session, err := sessions.Create(7, utils.ClientMeta{}, "1.2.3.4", time.Hour)
	if err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}
	authToken, _ := GenerateToken(7, "a@test.com", "user", testSecret, time.Hour)

	if err := sessions.DeleteByToken(session.Token); err != nil {
		t.Fatalf("删除会话失败: %v", err)
	}

	// JWT 仍然有效，但会话已被吊销
	if w := doRequest(r, "/protected", authToken, session.Token); w.Code != http.StatusUnauthorized {
		t.Fatalf("已吊销会话应 401，实际: %d", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	sessions := testSessions(t)
	r := testRouter(sessions)

	session, err := sessions.Create(7, utils.ClientMeta{}, "1.2.3.4", time.Hour)
	if err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}

	userToken, _ := GenerateToken(7, "a@test.com", "user", testSecret, time.Hour)
	if w := doRequest(r, "/admin", userToken, session.Token); w.Code != http.StatusForbidden {
		t.Fatalf("普通用户访问后台应 403，实际: %d", w.Code)
	}

	adminToken, _ := GenerateToken(7, "a@test.com", "admin", testSecret, time.Hour)
	if w := doRequest(r, "/admin", adminToken, session.Token); w.Code != http.StatusOK {
		t.Fatalf("管理员访问后台应放行，实际: %d", w.Code)
	}
}

func TestBearerHeaderFallback(t *testing.T) {
	sessions := testSessions(t)
	r := testRouter(sessions)

	session, err := sessions.Create(7, utils.ClientMeta{}, "1.2.3.4", time.Hour)
	if err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}
	authToken, _ := GenerateToken(7, "a@test.com", "user", testSecret, time.Hour)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+authToken)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.Token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Bearer 头应可替代 Cookie，实际: %d", w.Code)
	}
}
