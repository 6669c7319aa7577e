package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docintake/internal/authz"
	"docintake/internal/bootstrap"
	"docintake/internal/transport/http/handler"
	"docintake/internal/transport/http/middleware"
)

// APIDeps is everything the /api/v1 routes need.
type APIDeps struct {
	Services         bootstrap.Services
	JWTSecret        string
	IdentityStrategy string
	MaxUploadBytes   int64
	RateLimiter      *middleware.RateLimiter
}

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(app.Logger), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{})))

	MountAPI(router, APIDeps{
		Services:         app.Services,
		JWTSecret:        app.Config.Auth.JWTSecret,
		IdentityStrategy: app.Config.Identity.Strategy,
		MaxUploadBytes:   app.Config.Storage.MaxUploadBytes,
		RateLimiter:      middleware.NewRateLimiter(app.Config.RateLimit.RequestsPerSecond, app.Config.RateLimit.Burst),
	})
	app.Logger.Debug("routes mounted", slog.Int("count", len(router.Routes())))
	return router
}

func MountAPI(router gin.IRouter, deps APIDeps) {
	svc := deps.Services
	authHandler := handler.NewAuthHandler(svc.Auth)
	catalogHandler := handler.NewCatalogHandler(svc.Chat, deps.IdentityStrategy)
	documentHandler := handler.NewDocumentHandler(svc.Upload, svc.Chat, deps.MaxUploadBytes)
	chatHandler := handler.NewChatHandler(svc.Chat)
	adminHandler := handler.NewAdminHandler(svc.Reconciler, svc.Directory)

	limit := deps.RateLimiter
	if limit == nil {
		limit = middleware.NewRateLimiter(0, 0)
	}
	authed := []gin.HandlerFunc{
		middleware.AuthJWT(deps.JWTSecret),
		middleware.LoadSession(svc.Chat),
	}

	v1 := router.Group("/api/v1")
	v1.GET("/catalog", catalogHandler.Get)

	authGroup := v1.Group("/auth")
	authGroup.POST("/login", limit.Middleware(), authHandler.Login)
	authGroup.POST("/logout", append(authed, authHandler.Logout)...)
	authGroup.GET("/me", append(authed, authHandler.Me)...)

	docGroup := v1.Group("/documents", authed...)
	docGroup.GET("/namespace", documentHandler.Namespace)
	docGroup.POST("", limit.Middleware(), middleware.RequirePermission(authz.PermUpload), documentHandler.Upload)

	chatGroup := v1.Group("/chat", authed...)
	chatGroup.Use(middleware.RequirePermission(authz.PermQuery))
	chatGroup.PUT("/model", chatHandler.SelectModel)
	chatGroup.GET("/history", chatHandler.GetHistory)
	chatGroup.POST("/stream", limit.Middleware(), chatHandler.StreamMessage)

	adminGroup := v1.Group("/admin", authed...)
	adminGroup.GET("/uploads", middleware.RequirePermission(authz.PermAdmin), adminHandler.ListUploads)
	adminGroup.GET("/uploads/record", middleware.RequirePermission(authz.PermAdmin), adminHandler.GetUpload)
	adminGroup.POST("/uploads/reconcile", middleware.RequirePermission(authz.PermAdmin), adminHandler.Reconcile)
	adminGroup.GET("/directory", middleware.RequirePermission(authz.PermManageUsers), adminHandler.ListDirectory)
	adminGroup.PUT("/directory", middleware.RequirePermission(authz.PermManageUsers), adminHandler.UpsertDirectoryEntry)
}
