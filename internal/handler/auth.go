package handler

import (
	"log"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/vidora/internal/middleware"
	"github.com/user/vidora/internal/model"
	"github.com/user/vidora/internal/repository"
	"github.com/user/vidora/internal/utils"
)

// ==================== 注册 / 登录 / 登出 ====================

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Username string `json:"username" binding:"omitempty,min=2,max=20"`
}

// Register 注册处理
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	// 检查邮箱是否已存在
	existing, err := h.Repos.User.FindByEmail(req.Email)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if existing != nil {
		utils.Conflict(c, "该邮箱已被注册")
		return
	}

	// 默认截取邮箱 @ 符号前的内容作为用户名
	username := req.Username
	if username == "" {
		username = req.Email
		if parts := strings.Split(req.Email, "@"); len(parts) > 0 {
			username = parts[0]
		}
	}

	user, err := h.Repos.User.Create(req.Email, username, req.Password)
	if err != nil {
		utils.InternalServerError(c, "注册失败，请重试")
		return
	}

	// 注册成功直接登录
	h.createSessionAndRespond(c, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 登录处理
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	// 查找用户并验证密码，两种失败返回同样的提示
	user, err := h.Repos.User.FindByEmail(req.Email)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if user == nil || !h.Repos.User.CheckPassword(user, req.Password) {
		utils.Unauthorized(c, "邮箱或密码错误")
		return
	}
	if !user.Active {
		utils.Forbidden(c, "账号已被停用")
		return
	}

	h.createSessionAndRespond(c, user)
}

// createSessionAndRespond 创建会话、签发双令牌并返回用户信息
func (h *Handler) createSessionAndRespond(c *gin.Context, user *model.User) {
	meta := utils.ParseUserAgent(c.GetHeader("User-Agent"))
	session, err := h.Repos.Session.Create(user.ID, meta, c.ClientIP(), h.Config.SessionExpiry)
	if err == repository.ErrSessionLimit {
		// 与普通认证失败区分开，前端可以引导用户撤销其他会话
		utils.ErrorWithCode(c, 409, "session_limit", "登录设备数已达上限，请先退出其他设备")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "登录失败，请重试")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role, h.Config.AppSecret, h.Config.SessionExpiry)
	if err != nil {
		// 身份令牌签发失败时回收刚建的会话，避免留下孤儿行
		_, _ = h.Repos.Session.Delete(user.ID, session.ID)
		utils.InternalServerError(c, "登录失败，请重试")
		return
	}

	h.setAuthCookies(c, token, session.Token)
	utils.Success(c, user)
}

// Logout 登出。会话行不存在也一样清 Cookie 返回成功（幂等）
func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		if err := h.Repos.Session.DeleteByToken(token); err != nil {
			log.Printf("[Auth] 登出时删除会话失败: %v", err)
		}
	}
	h.clearAuthCookies(c)
	utils.SuccessWithMessage(c, "已退出登录", nil)
}

// Me 当前登录用户信息
func (h *Handler) Me(c *gin.Context) {
	user, err := h.Repos.User.FindByID(middleware.GetUserID(c))
	if err != nil || user == nil {
		utils.Unauthorized(c, "")
		return
	}
	utils.Success(c, user)
}

type updateProfileRequest struct {
	Username string `json:"username" binding:"required,min=2,max=20"`
}

// UpdateProfile 修改用户名
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.Repos.User.UpdateUsername(userID, req.Username); err != nil {
		utils.InternalServerError(c, "")
		return
	}

	user, err := h.Repos.User.FindByID(userID)
	if err != nil || user == nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, user)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword 修改密码，成功后踢掉其他设备的会话
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	userID := middleware.GetUserID(c)
	user, err := h.Repos.User.FindByID(userID)
	if err != nil || user == nil {
		utils.Unauthorized(c, "")
		return
	}
	if !h.Repos.User.CheckPassword(user, req.OldPassword) {
		utils.BadRequest(c, "原密码错误")
		return
	}

	if err := h.Repos.User.UpdatePassword(userID, req.NewPassword); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if _, err := h.Repos.Session.DeleteOthers(userID, middleware.GetSessionID(c)); err != nil {
		log.Printf("[Auth] 改密后清理其他会话失败: %v", err)
	}

	utils.SuccessWithMessage(c, "密码已修改", nil)
}

// ==================== 会话管理 ====================

// ListSessions 当前用户的全部会话，最近活跃在前，并标记当前会话
func (h *Handler) ListSessions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	currentID := middleware.GetSessionID(c)

	sessions, err := h.Repos.Session.ListByUser(userID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	infos := make([]model.SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, model.SessionInfo{
			ID:        s.ID,
			Device:    s.Device,
			Browser:   s.Browser,
			OS:        s.OS,
			IP:        s.IP,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
			ExpiresAt: s.ExpiresAt,
			Current:   s.ID == currentID,
		})
	}

	utils.Success(c, infos)
}

// RevokeSession 撤销指定会话。不允许撤销当前会话，防止请求中途把自己踢下线
func (h *Handler) RevokeSession(c *gin.Context) {
	userID := middleware.GetUserID(c)
	currentID := middleware.GetSessionID(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的会话 ID")
		return
	}
	if id == currentID {
		utils.BadRequest(c, "不能撤销当前会话，请使用退出登录")
		return
	}

	deleted, err := h.Repos.Session.Delete(userID, id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if deleted == 0 {
		utils.NotFound(c, "会话不存在")
		return
	}

	utils.SuccessWithMessage(c, "会话已撤销", nil)
}

// RevokeOtherSessions 撤销除当前会话外的全部会话，返回实际删除数量
func (h *Handler) RevokeOtherSessions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	currentID := middleware.GetSessionID(c)

	deleted, err := h.Repos.Session.DeleteOthers(userID, currentID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	utils.Success(c, gin.H{"deleted": deleted})
}
