package service

import (
	"sync"
	"time"

	"poker_web/internal/models"
)

// DefaultProfileTTL 是用戶資料緩存的過期時間
const DefaultProfileTTL = 5 * time.Minute

type cacheEntry struct {
	user      *models.User
	fetchedAt time.Time
}

// UserCache 是按用戶 ID 鍵控的讀取穿透緩存
// 條目超過 TTL 視為過期，下次讀取時重新拉取；
// 明確的資料變更應調用 Invalidate 使條目失效
type UserCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uint]*cacheEntry
	fetch   func(id uint) (*models.User, error)
	now     func() time.Time
}

func NewUserCache(ttl time.Duration, fetch func(id uint) (*models.User, error)) *UserCache {
	return &UserCache{
		ttl:     ttl,
		entries: make(map[uint]*cacheEntry),
		fetch:   fetch,
		now:     time.Now,
	}
}

// Get 回傳緩存中的用戶，過期或缺失時重新拉取
// 拉取失敗但仍有過期條目時回退到過期資料，避免瞬時故障放大
func (c *UserCache) Get(id uint) (*models.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.user, nil
	}

	user, err := c.fetch(id)
	if err != nil {
		if ok {
			return entry.user, nil
		}
		return nil, err
	}

	c.entries[id] = &cacheEntry{user: user, fetchedAt: c.now()}
	return user, nil
}

// Invalidate 使指定用戶的緩存條目失效
func (c *UserCache) Invalidate(id uint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, id)
}
