package service

import (
	"log"
	"strconv"
	"sync"
	"time"
)

// 会话失效登记：记录每个用户的「此刻之前签发的令牌一律无效」时间点。
// 激活、锁定/解锁、改密后调用，旧 JWT 立即作废。
// 优先写 Redis（多实例共享），Redis 不可用时退化为进程内存。

var (
	sessionMu      sync.RWMutex
	sessionExpires = make(map[uint]time.Time)
)

const sessionInvalidTTL = 30 * 24 * time.Hour

// ExpireSessions 作废某用户当前所有会话。
func ExpireSessions(userID uint) {
	now := time.Now()

	if redisClient := GetRedisClient(); redisClient != nil {
		ctx, cancel := redisContext()
		defer cancel()
		key := RedisKey("session", "invalid_before", strconv.FormatUint(uint64(userID), 10))
		if err := redisClient.Set(ctx, key, strconv.FormatInt(now.Unix(), 10), sessionInvalidTTL).Err(); err == nil {
			return
		}
		log.Printf("⚠️ 会话失效写入 Redis 失败，回退内存模式: user=%d", userID)
	}

	sessionMu.Lock()
	sessionExpires[userID] = now
	sessionMu.Unlock()
}

// SessionValidAt 签发于 issuedAt 的令牌此刻是否仍然有效。
func SessionValidAt(userID uint, issuedAt time.Time) bool {
	if redisClient := GetRedisClient(); redisClient != nil {
		ctx, cancel := redisContext()
		defer cancel()
		key := RedisKey("session", "invalid_before", strconv.FormatUint(uint64(userID), 10))
		if val, err := redisClient.Get(ctx, key).Result(); err == nil {
			if unix, err := strconv.ParseInt(val, 10, 64); err == nil {
				return issuedAt.After(time.Unix(unix, 0))
			}
		}
	}

	sessionMu.RLock()
	invalidBefore, ok := sessionExpires[userID]
	sessionMu.RUnlock()
	if !ok {
		return true
	}
	return issuedAt.After(invalidBefore)
}
