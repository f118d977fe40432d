package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"freeark_web/internal/model"
	"freeark_web/internal/service"
	"freeark_web/pkg/log"

	"github.com/gin-gonic/gin"
)

// mapServiceError 把 Service 层哨兵错误转换为 HTTP 状态码和对外消息。
func mapServiceError(err error) (httpStatus int, message string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid request parameters"
	case errors.Is(err, service.ErrUnsupportedSource):
		return http.StatusBadRequest, "Unsupported file type, expected .json or .xlsx"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password"
	case errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusConflict, "User already exists"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, service.ErrCannotDeleteSelf):
		return http.StatusForbidden, "Cannot delete your own account"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respond 写统一的 {code, message, data} 响应，data 为 nil 时省略。
func respond(c *gin.Context, status int, message string, data any) {
	body := gin.H{"code": status, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func success(c *gin.Context, message string, data any) {
	respond(c, http.StatusOK, message, data)
}

func fail(c *gin.Context, status int, message string) {
	respond(c, status, message, nil)
}

// writeServiceError 记录日志并按 mapServiceError 写错误响应。
func writeServiceError(c *gin.Context, op string, err error) {
	log.Warnf("%s: %v", op, err)
	status, msg := mapServiceError(err)
	fail(c, status, msg)
}

func badRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, message)
}

// extractBearerToken 从 Authorization 请求头提取 Bearer Token。
// 期望格式：Authorization: Bearer <token>
func extractBearerToken(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	if strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("empty token")
	}
	return parts[1], nil
}

// parseUserID 解析路径参数 :id，失败时已写入 400 响应。
func parseUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "Invalid user ID")
		return 0, false
	}
	return uint(id), true
}

// getUserFromContext 从 Gin 上下文中读取 AuthMiddleware 注入的用户对象。
// 如果上下文异常，该函数会直接写错误响应并返回 false，调用方只需 `if !ok { return }`。
func getUserFromContext(c *gin.Context) (*model.User, bool) {
	userVal, exists := c.Get("user")
	if !exists {
		fail(c, http.StatusUnauthorized, "User not found in context")
		return nil, false
	}

	user, ok := userVal.(*model.User)
	if !ok {
		fail(c, http.StatusInternalServerError, "Failed to get user profile")
		return nil, false
	}
	return user, true
}
