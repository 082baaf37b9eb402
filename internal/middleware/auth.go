package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/user/vidora/internal/model"
	"github.com/user/vidora/internal/repository"
	"github.com/user/vidora/internal/utils"
)

// Cookie 名称
const (
	AuthCookie    = "auth-token"    // JWT 身份令牌
	SessionCookie = "session-token" // 服务端会话的不透明令牌
)

// Claims JWT 声明
type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken 生成 JWT 身份令牌
func GenerateToken(userID int, email, role, jwtSecret string, expiry time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// VerifyToken 校验并解析 JWT，是产出 Claims 的唯一入口
func VerifyToken(tokenString, jwtSecret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// RequireAuth 必须登录中间件。
// 同时要求 JWT 身份令牌和会话令牌：JWT 校验通过、会话行存在未过期、
// 且两者指向同一用户。任何一步失败都返回一样的 401，不泄露失败原因
func RequireAuth(jwtSecret string, sessions *repository.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, session := authenticate(c, jwtSecret, sessions)
		if claims == nil || session == nil {
			utils.Unauthorized(c, "")
			c.Abort()
			return
		}

		// 将用户信息存入上下文
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Set("session_id", session.ID)
		c.Set("session_token", session.Token)

		// 顺手更新最后活跃时间，失败不影响请求
		_ = sessions.Touch(session.ID)

		c.Next()
	}
}

// OptionalAuth 可选登录中间件（不强制要求登录）
func OptionalAuth(jwtSecret string, sessions *repository.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, session := authenticate(c, jwtSecret, sessions); claims != nil && session != nil {
			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("role", claims.Role)
			c.Set("session_id", session.ID)
			c.Set("session_token", session.Token)
			_ = sessions.Touch(session.ID)
		}
		c.Next()
	}
}

// RequireAdmin 管理员权限中间件
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role != "admin" {
			utils.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

// authenticate 提取并核对双令牌，失败一律返回 (nil, nil)
func authenticate(c *gin.Context, jwtSecret string, sessions *repository.SessionRepository) (*Claims, *model.Session) {
	tokenString := extractAuthToken(c)
	sessionToken, err := c.Cookie(SessionCookie)
	if tokenString == "" || err != nil || sessionToken == "" {
		return nil, nil
	}

	claims, err := VerifyToken(tokenString, jwtSecret)
	if err != nil {
		return nil, nil
	}

	session, err := sessions.FindByToken(sessionToken)
	if err != nil || session == nil {
		return nil, nil
	}

	// 身份令牌与会话必须属于同一用户
	if session.UserID != claims.UserID {
		return nil, nil
	}

	return claims, session
}

// extractAuthToken 从 Cookie 或 Header 中提取 JWT
func extractAuthToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AuthCookie); err == nil {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// GetUserID 从上下文获取用户 ID（未登录返回 0）
func GetUserID(c *gin.Context) int {
	if userID, exists := c.Get("user_id"); exists {
		return userID.(int)
	}
	return 0
}

// GetSessionID 从上下文获取当前会话 ID（未登录返回 0）
func GetSessionID(c *gin.Context) int {
	if sessionID, exists := c.Get("session_id"); exists {
		return sessionID.(int)
	}
	return 0
}

// GetSessionToken 从上下文获取当前会话令牌
func GetSessionToken(c *gin.Context) string {
	if token, exists := c.Get("session_token"); exists {
		return token.(string)
	}
	return ""
}
