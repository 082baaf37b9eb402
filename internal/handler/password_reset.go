package handler

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/vidora/internal/repository"
	"github.com/user/vidora/internal/utils"
)

// ==================== 密码重置（自助） ====================

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword 申请密码重置。
// 无论邮箱是否存在、账号是否停用，一律返回相同的成功响应，
// 不向外暴露账号是否存在；只有查到可用账号时才真正落令牌
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	user, err := h.Repos.User.FindByEmail(req.Email)
	if err != nil {
		log.Printf("[PasswordReset] 查询用户失败: %v", err)
	}
	if user != nil && user.Active {
		if _, err := h.Repos.PasswordReset.Create(req.Email); err != nil {
			log.Printf("[PasswordReset] 创建重置令牌失败: %v", err)
		}
	}

	utils.SuccessWithMessage(c, "如果该邮箱存在，重置申请已提交，请等待管理员处理", nil)
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// ResetPassword 使用重置令牌设置新密码
func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数校验失败")
		return
	}

	err := h.Repos.PasswordReset.Consume(req.Token, req.Password)
	switch {
	case err == nil:
		utils.SuccessWithMessage(c, "密码已重置，请重新登录", nil)
	case errors.Is(err, repository.ErrTokenNotFound):
		utils.NotFound(c, "重置令牌不存在")
	case errors.Is(err, repository.ErrTokenUsed):
		utils.Conflict(c, "重置令牌已被使用")
	case errors.Is(err, repository.ErrTokenInactive):
		utils.BadRequest(c, "重置令牌尚未激活")
	case errors.Is(err, repository.ErrTokenExpired):
		utils.BadRequest(c, "重置令牌已过期，请重新申请")
	default:
		log.Printf("[PasswordReset] 重置失败: %v", err)
		utils.InternalServerError(c, "")
	}
}

// ==================== 密码重置（管理端） ====================

// AdminListPasswordResets 重置申请列表
func (h *Handler) AdminListPasswordResets(c *gin.Context) {
	resets, err := h.Repos.PasswordReset.ListAll()
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, resets)
}

// AdminActivatePasswordReset 激活重置令牌，返回完整重置链接
func (h *Handler) AdminActivatePasswordReset(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	reset, err := h.Repos.PasswordReset.Activate(id, h.Config.ResetTokenTTL)
	switch {
	case err == nil:
		utils.Success(c, gin.H{
			"reset_url":  fmt.Sprintf("%s/reset-password?token=%s", h.Config.SiteUrl, reset.Token),
			"expires_at": reset.ExpiresAt,
		})
	case errors.Is(err, repository.ErrTokenNotFound):
		utils.NotFound(c, "重置申请不存在")
	case errors.Is(err, repository.ErrTokenUsed):
		utils.Conflict(c, "重置令牌已被使用")
	default:
		log.Printf("[PasswordReset] 激活失败: %v", err)
		utils.InternalServerError(c, "")
	}
}

// AdminCleanupPasswordResets 批量清理令牌，mode 取 expired/used/all
func (h *Handler) AdminCleanupPasswordResets(c *gin.Context) {
	mode := c.DefaultQuery("mode", repository.CleanupAll)

	deleted, err := h.Repos.PasswordReset.Cleanup(mode)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	utils.Success(c, gin.H{"deleted": deleted})
}
