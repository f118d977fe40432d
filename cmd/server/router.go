package main

import (
	"net/http"

	"freeark_web/internal/handler"
	"freeark_web/internal/middleware"

	"github.com/gin-gonic/gin"
)

// newRouter 挂载所有路由。authMW 为 AuthMiddleware，管理员路由在其后追加 AdminAuthMiddleware。
func newRouter(userHandler *handler.UserHandler, buildingHandler *handler.BuildingHandler, authMW gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/login", userHandler.Login)

		authed := api.Group("", authMW)
		authed.POST("/auth/logout", userHandler.Logout)
		authed.GET("/auth/me", userHandler.Me)
		authed.GET("/buildings/tree", buildingHandler.GetTree)

		admin := authed.Group("", middleware.AdminAuthMiddleware())
		admin.GET("/users", userHandler.ListUsers)
		admin.POST("/users", userHandler.CreateUser)
		admin.GET("/users/:id", userHandler.GetUser)
		admin.PUT("/users/:id", userHandler.UpdateUser)
		admin.DELETE("/users/:id", userHandler.DeleteUser)
		admin.POST("/admin/owners/import", buildingHandler.ImportOwners)
	}
	return r
}
