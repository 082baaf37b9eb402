package service

import (
	"log"
	"time"

	"github.com/user/vidora/internal/repository"
)

// CleanupService 清理服务
type CleanupService struct {
	repos *repository.Repositories
}

// NewCleanupService 创建清理服务
func NewCleanupService(repos *repository.Repositories) *CleanupService {
	return &CleanupService{repos: repos}
}

// Start 启动定时清理任务
func (s *CleanupService) Start() {
	ticker := time.NewTicker(24 * time.Hour)

	// 启动时先运行一次
	go s.runCleanup()

	go func() {
		for range ticker.C {
			s.runCleanup()
		}
	}()
}

func (s *CleanupService) runCleanup() {
	log.Println("[CleanupService] 开始清理过期数据...")

	// 1. 清理已过期的会话
	affected, err := s.repos.Session.DeleteExpired()
	if err != nil {
		log.Printf("[CleanupService] 清理过期会话失败: %v", err)
	} else if affected > 0 {
		log.Printf("[CleanupService] 已清理 %d 条过期会话", affected)
	}

	// 2. 清理已过期的密码重置令牌
	tokens, err := s.repos.PasswordReset.Cleanup(repository.CleanupExpired)
	if err != nil {
		log.Printf("[CleanupService] 清理过期重置令牌失败: %v", err)
	} else if tokens > 0 {
		log.Printf("[CleanupService] 已清理 %d 条过期重置令牌", tokens)
	}

	// 3. 清理超过 180 天未更新的观看记录
	stale, err := s.repos.History.DeleteStale(180)
	if err != nil {
		log.Printf("[CleanupService] 清理陈旧观看记录失败: %v", err)
	} else if stale > 0 {
		log.Printf("[CleanupService] 已清理 %d 条陈旧观看记录", stale)
	}
}
