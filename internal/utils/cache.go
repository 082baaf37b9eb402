package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// Cache 全局缓存实例（TMDB 响应、后台统计等短周期数据）
var Cache *cache.Cache

// InitCache 初始化缓存
func InitCache() {
	// 默认过期时间5分钟，清理间隔10分钟
	Cache = cache.New(5*time.Minute, 10*time.Minute)
}

// CacheGet 获取缓存值
func CacheGet(key string) (interface{}, bool) {
	return Cache.Get(key)
}

// CacheSet 设置缓存值
func CacheSet(key string, value interface{}, duration time.Duration) {
	Cache.Set(key, value, duration)
}

// CacheDelete 删除缓存
func CacheDelete(key string) {
	Cache.Delete(key)
}

// CacheClear 清空所有缓存
func CacheClear() {
	Cache.Flush()
}

// CacheItem 包装实际的数据，增加过期时间
type CacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// ListCache 目录列表查询结果缓存封装（带 TTL 的 LRU）
type ListCache[T any] struct {
	storage *lru.Cache[string, CacheItem[T]]
	ttl     time.Duration
}

// NewListCache 初始化，size 是最大缓存条数（如 1000），ttl 是数据有效期（如 5分钟）
func NewListCache[T any](size int, ttl time.Duration) *ListCache[T] {
	// lru.New 是线程安全的
	c, _ := lru.New[string, CacheItem[T]](size)
	return &ListCache[T]{
		storage: c,
		ttl:     ttl,
	}
}

// Set 写入（LRU 中 Add 会自动处理更新）
func (c *ListCache[T]) Set(key string, value T) {
	item := CacheItem[T]{
		Value:     value,
		ExpiredAt: time.Now().Add(c.ttl),
	}
	c.storage.Add(key, item)
}

// Get 读取（带过期检查）
func (c *ListCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}

	// 检查是否过期
	if time.Now().After(item.ExpiredAt) {
		c.storage.Remove(key) // 过期删除
		return zero, false
	}

	return item.Value, true
}

// Delete 删除
func (c *ListCache[T]) Delete(key string) {
	c.storage.Remove(key)
}

// Clear 清空
func (c *ListCache[T]) Clear() {
	c.storage.Purge()
}

// Len 当前条数
func (c *ListCache[T]) Len() int {
	return c.storage.Len()
}
