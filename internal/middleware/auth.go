package middleware

import (
	"net/http"
	"strings"

	"bicarb-server/internal/perm"
	repo "bicarb-server/internal/repository"
	"bicarb-server/internal/service"
	"bicarb-server/internal/utils"

	"github.com/gin-gonic/gin"
)

const requesterKey = "requester"

// JWTAuth 解析 Bearer Token 并装配权限主体；required 为 false 时
// 匿名请求放行（requester 缺省为 nil，读权限走过滤器收窄）。
func JWTAuth(userStore repo.UserStore, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "需要认证才能访问"})
				c.Abort()
				return
			}
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token 格式错误"})
			c.Abort()
			return
		}

		claims, err := utils.ParseLoginToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token 无效或已过期"})
			c.Abort()
			return
		}

		// 锁定 / 激活 / 改密后旧令牌立即失效
		if claims.IssuedAt != nil && !service.SessionValidAt(claims.ID, claims.IssuedAt.Time) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "会话已失效，请重新登录"})
			c.Abort()
			return
		}

		user, err := userStore.FindByID(claims.ID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "用户不存在"})
			c.Abort()
			return
		}

		c.Set(requesterKey, &perm.Requester{
			ID:          user.ID,
			Username:    user.Username,
			Active:      user.Active,
			LockedUntil: user.LockedUntil,
			Permissions: user.Group.PermissionSet(),
		})
		c.Next()
	}
}

// GetRequester 取当前请求者，匿名返回 nil。
func GetRequester(c *gin.Context) *perm.Requester {
	v, ok := c.Get(requesterKey)
	if !ok {
		return nil
	}
	r, _ := v.(*perm.Requester)
	return r
}
