package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"freeark_web/internal/service"
	"freeark_web/pkg/token"

	"github.com/gin-gonic/gin"
)

// 上下文中的键，Handler 通过 c.Get 读取。
const (
	ContextClaims = "claims"
	ContextUser   = "user"
	ContextToken  = "token"
)

// TokenChecker 判断 token 是否已被登出，由 cache.TokenBlacklist 实现。
type TokenChecker interface {
	Contains(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware 是 JWT 认证中间件，用于保护需要登录才能访问的接口。
// 工作流程：
//  1. 从请求头 Authorization 中提取 Bearer Token
//  2. 验证 Token 签名和有效期，且类型必须是 access
//  3. 检查 token 是否在 Redis 黑名单中（已登出 token 不再可用）
//  4. 根据 Token 中的用户名查询数据库，确认用户仍然存在
//  5. 将 claims、user 和原始 token 注入到 Gin 上下文中
func AuthMiddleware(jwtManager *token.JWTManager, blacklist TokenChecker, userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtManager == nil || blacklist == nil || userService == nil {
			abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		tokenString, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid authorization header")
			return
		}

		// 受保护接口只接受 access token，refresh token 不能冒充
		claims, err := jwtManager.VerifyAccessToken(tokenString)
		if errors.Is(err, token.ErrWrongTokenType) {
			abort(c, http.StatusUnauthorized, "Invalid token type")
			return
		}
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired access token")
			return
		}

		revoked, err := blacklist.Contains(c.Request.Context(), tokenString)
		if err != nil {
			abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		if revoked {
			abort(c, http.StatusUnauthorized, "Invalid or expired access token")
			return
		}

		// 即使 Token 有效，用户也可能已被删除
		user, err := userService.GetProfile(claims.Username)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				abort(c, http.StatusUnauthorized, "User not found")
			} else {
				abort(c, http.StatusInternalServerError, "Internal server error")
			}
			return
		}
		if user == nil {
			abort(c, http.StatusUnauthorized, "User not found")
			return
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextUser, user)
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}

// extractBearerToken 从 Authorization 请求头中提取 Bearer Token。
// 大小写不敏感，兼容 "bearer"、"BEARER" 等写法。
func extractBearerToken(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	if parts[1] == "" {
		return "", errors.New("empty token")
	}
	return parts[1], nil
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    status,
		"message": message,
	})
}
