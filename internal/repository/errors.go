package repository

import "errors"

// 会话与密码重置的业务错误，handler 层据此映射 HTTP 状态码
var (
	ErrSessionLimit = errors.New("会话数已达上限")

	ErrTokenNotFound = errors.New("令牌不存在")
	ErrTokenInactive = errors.New("令牌尚未激活")
	ErrTokenUsed     = errors.New("令牌已被使用")
	ErrTokenExpired  = errors.New("令牌已过期")
)
