package utils

import (
	"strings"
)

// ClientMeta 登录时采集的客户端信息（仅用于会话列表展示）
type ClientMeta struct {
	Device  string
	Browser string
	OS      string
}

// ParseUserAgent 从 User-Agent 中粗略解析设备/浏览器/系统
// 只做展示用途，不求精确
func ParseUserAgent(ua string) ClientMeta {
	meta := ClientMeta{Device: "desktop", Browser: "未知浏览器", OS: "未知系统"}
	if ua == "" {
		return meta
	}
	lower := strings.ToLower(ua)

	// 设备类型
	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		meta.Device = "tablet"
	case strings.Contains(lower, "mobile") || strings.Contains(lower, "iphone") || strings.Contains(lower, "android"):
		meta.Device = "mobile"
	}

	// 操作系统
	switch {
	case strings.Contains(lower, "windows"):
		meta.OS = "Windows"
	case strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad"):
		meta.OS = "iOS"
	case strings.Contains(lower, "mac os"):
		meta.OS = "macOS"
	case strings.Contains(lower, "android"):
		meta.OS = "Android"
	case strings.Contains(lower, "linux"):
		meta.OS = "Linux"
	}

	// 浏览器，注意顺序：Edge/Chrome 的 UA 都带 Safari 字样
	switch {
	case strings.Contains(lower, "edg/"):
		meta.Browser = "Edge"
	case strings.Contains(lower, "firefox"):
		meta.Browser = "Firefox"
	case strings.Contains(lower, "chrome"):
		meta.Browser = "Chrome"
	case strings.Contains(lower, "safari"):
		meta.Browser = "Safari"
	}

	return meta
}
