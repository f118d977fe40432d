package handler

import (
	"net/http"
	"strconv"

	"freeark_web/internal/model"
	"freeark_web/internal/service"
	"freeark_web/pkg/log"

	"github.com/gin-gonic/gin"
)

// UserHandler 负责登录认证和管理员用户管理接口。
// 是否允许访问由路由组挂载的中间件决定。
type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// LoginRequest 是登录接口请求体。
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

// UpdateUserRequest 中省略的字段保持不变。
type UpdateUserRequest struct {
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
	Password   *string `json:"password"`
}

// userPage 是分页列表的响应体，字段名与前端分页组件一致。
type userPage struct {
	Content       []model.User `json:"content"`
	TotalElements int64        `json:"totalElements"`
	TotalPages    int          `json:"totalPages"`
	Size          int          `json:"size"`
	Number        int          `json:"number"`
}

func newUserPage(users []model.User, total int64, page, size int) userPage {
	pages := 0
	if total > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	return userPage{Content: users, TotalElements: total, TotalPages: pages, Size: size, Number: page}
}

// Login 处理登录请求，返回 access/refresh token 和用户信息。
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Login: failed to bind request: %v", err)
		badRequest(c, "Invalid request body")
		return
	}

	res, err := h.userService.Login(req.Username, req.Password)
	if err != nil {
		writeServiceError(c, "Login", err)
		return
	}

	success(c, "Login successful", res)
}

// Logout 把当前 access token 加入黑名单。
func (h *UserHandler) Logout(c *gin.Context) {
	token, err := extractBearerToken(c.GetHeader("Authorization"))
	if err != nil {
		log.Warnf("Logout: invalid authorization header: %v", err)
		fail(c, http.StatusUnauthorized, "Invalid authorization header")
		return
	}

	if err := h.userService.Logout(c.Request.Context(), token); err != nil {
		writeServiceError(c, "Logout", err)
		return
	}

	respond(c, http.StatusOK, "Logout successful", nil)
}

// Me 返回当前登录用户信息，用户对象由 AuthMiddleware 注入。
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		return
	}

	success(c, "Profile retrieved successfully", user)
}

// ListUsers 管理员分页查询用户列表。
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		badRequest(c, "Invalid page parameter")
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size <= 0 || size > 100 {
		badRequest(c, "Invalid size parameter")
		return
	}

	users, total, err := h.userService.ListUsers(page, size)
	if err != nil {
		writeServiceError(c, "ListUsers", err)
		return
	}

	success(c, "Users retrieved successfully", newUserPage(users, total, page, size))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		writeServiceError(c, "GetUser", err)
		return
	}

	success(c, "User retrieved successfully", user)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("CreateUser: failed to bind request: %v", err)
		badRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.CreateUser(service.CreateUserInput{
		Username:   req.Username,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
		Position:   req.Position,
	})
	if err != nil {
		writeServiceError(c, "CreateUser", err)
		return
	}

	respond(c, http.StatusCreated, "User created successfully", user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("UpdateUser: failed to bind request: %v", err)
		badRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateUser(id, service.UpdateUserInput{
		Role:       req.Role,
		Department: req.Department,
		Position:   req.Position,
		Password:   req.Password,
	})
	if err != nil {
		writeServiceError(c, "UpdateUser", err)
		return
	}

	success(c, "User updated successfully", user)
}

// DeleteUser 管理员删除用户，不能删除自己。
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := getUserFromContext(c)
	if !ok {
		return
	}
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(actor.ID, id); err != nil {
		writeServiceError(c, "DeleteUser", err)
		return
	}

	respond(c, http.StatusOK, "User deleted successfully", nil)
}
