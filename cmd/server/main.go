package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freeark_web/internal/building"
	"freeark_web/internal/cache"
	"freeark_web/internal/config"
	"freeark_web/internal/handler"
	"freeark_web/internal/middleware"
	"freeark_web/internal/repository"
	"freeark_web/internal/service"
	"freeark_web/pkg/database"
	"freeark_web/pkg/log"
	"freeark_web/pkg/token"

	"github.com/gin-gonic/gin"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	path := os.Getenv("FREEARK_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log.MustInit(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()

	if cfg.JWT.Secret == "" {
		log.Fatal("Invalid config", errors.New("jwt.secret is required"))
	}

	db, err := database.OpenMySQL(cfg.Database.MySQL.DSN, database.MySQLOptions{
		MaxIdleConns:    cfg.Database.MySQL.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MySQL.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.MySQL.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal("Failed to connect MySQL", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations", err)
	}

	rdb, err := database.OpenRedis(context.Background(), cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err != nil {
		log.Fatal("Failed to connect Redis", err)
	}
	defer rdb.Close()

	builder, err := building.NewBuilder(cfg.Building.Policy)
	if err != nil {
		log.Fatal("Invalid building policy", err)
	}

	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL())
	blacklist := cache.NewTokenBlacklist(rdb)
	treeCache := cache.NewTreeCache(rdb, cfg.Database.Redis.TreeTTL)

	userService := service.NewUserService(repository.NewUserRepository(db), jwtManager, blacklist)
	buildingService := service.NewBuildingService(
		repository.NewOwnerRepository(db),
		builder,
		cfg.Building.Fields,
		cfg.Building.Source.Sheet,
		treeCache,
	)

	if created, err := userService.EnsureAdmin(cfg.Admin.Username, cfg.Admin.Password); err != nil {
		log.Fatal("Failed to bootstrap admin account", err)
	} else if created {
		log.Infof("管理员账号 %s 已创建", cfg.Admin.Username)
	}

	gin.SetMode(cfg.Server.Mode)
	r := newRouter(
		handler.NewUserHandler(userService),
		handler.NewBuildingHandler(buildingService),
		middleware.AuthMiddleware(jwtManager, blacklist, userService),
	)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP 服务监听失败: %s", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("服务已优雅关闭")
}
