package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/config"
	"github.com/yourusername/storefront-api/internal/handler"
	"github.com/yourusername/storefront-api/internal/middleware"
	pgRepo "github.com/yourusername/storefront-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/storefront-api/internal/repository/redis"
	"github.com/yourusername/storefront-api/internal/service"
	ws "github.com/yourusername/storefront-api/internal/websocket"
	"github.com/yourusername/storefront-api/pkg/auth"
	"github.com/yourusername/storefront-api/pkg/database"
	"github.com/yourusername/storefront-api/pkg/logger"
	"github.com/yourusername/storefront-api/pkg/storage"
)

func main() {
	// Логгер до загрузки конфигурации: уровень из окружения, JSON по умолчанию
	bootLogger, err := logger.New(envOr("LOG_LEVEL", "info"), envOr("LOG_FORMAT", "json"))
	if err != nil {
		bootLogger = zap.NewExample()
	}

	configPath := envOr("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.Load(configPath, bootLogger)
	if err != nil {
		bootLogger.Fatal("failed to load config", zap.String("path", configPath), zap.Error(err))
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		bootLogger.Fatal("failed to init logger", zap.Error(err))
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	// Контекст приложения отменяется по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Хранилища ---
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), cfg.Log.Level == "debug")
	if err != nil {
		return err
	}
	if err := database.MigrateDB(db, log); err != nil {
		return err
	}

	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.Info("connected to redis", zap.String("mode", cfg.Redis.Mode))

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient, "storefront:")
	if err != nil {
		return err
	}

	bannerRepo := pgRepo.NewBannerRepo(db)
	sectionRepo := pgRepo.NewHomeSectionRepo(db)
	promoRepo := pgRepo.NewPromoBannerRepo(db)
	categoryRepo := pgRepo.NewCategoryRepo(db)
	productRepo := pgRepo.NewProductRepo(db)
	orderRepo := pgRepo.NewOrderRepo(db)
	adminRepo := pgRepo.NewAdminUserRepo(db)

	// --- Внешние сервисы ---
	importCfg := cfg.Import
	var objectStorage storage.ObjectStorage = storage.NoopStorage{}
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3Storage(cfg.Storage)
		if err != nil {
			return err
		}
		objectStorage = s3Storage
	} else {
		log.Warn("object storage is not configured: uploads are disabled, imported images keep their original urls")
		importCfg.RehostImages = false
	}

	analyzer := service.NewImageAnalyzer(cfg.AI)
	if analyzer == nil {
		log.Warn("ai.api_key is empty: image analysis is disabled")
	}
	remover := service.NewHTTPBackgroundRemover(cfg.Background)
	if remover == nil {
		log.Warn("background removal api is not configured")
	}

	var emailService service.EmailService = service.NewNoopEmailService(log)
	if cfg.Email.ResendAPIKey != "" {
		resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			return err
		}
		emailService = resendService
	}

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs, cfg.JWT.Issuer)
	if err != nil {
		return err
	}

	// --- WebSocket ---
	hubOpts := ws.HubOptions{Channel: cfg.WebSocket.Channel, SendBuffer: cfg.WebSocket.SendBuffer}
	if cfg.WebSocket.ClusterEnabled {
		pubSub, err := ws.NewRedisPubSub(redisClient, log)
		if err != nil {
			return err
		}
		defer pubSub.Close()
		hubOpts.PubSub = pubSub
		log.Info("websocket cluster mode enabled", zap.String("channel", cfg.WebSocket.Channel))
	}
	hub := ws.NewHub(hubOpts, log)
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("websocket hub stopped", zap.Error(err))
		}
	}()

	// --- Сервисы ---
	homeService := service.NewHomeService(bannerRepo, sectionRepo, promoRepo, cacheRepo, cfg.Cache.HomeTTL(), log)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, log)
	mediaService := service.NewMediaService(objectStorage, analyzer, remover, nil, log)
	importService := service.NewImportService(productRepo, categoryRepo, mediaService, importCfg, log)
	orderService := service.NewOrderService(orderRepo, productRepo, hub, emailService, log)
	authService := service.NewAuthService(adminRepo, jwtService, log)

	// --- Обработчики ---
	homeHandler := handler.NewHomeHandler(homeService, log)
	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	importHandler := handler.NewImportHandler(importService, importCfg.MaxFileSizeBytes, log)
	mediaHandler := handler.NewMediaHandler(mediaService, log)
	orderHandler := handler.NewOrderHandler(orderService, log)
	authHandler := handler.NewAuthHandler(authService, log)
	wsHandler := handler.NewWSHandler(hub, jwtService, cfg.Server.AllowedOrigins, log)

	authMiddleware := middleware.NewAuthMiddleware(jwtService, log)
	rateLimiter := middleware.NewRateLimiter(redisClient, log)

	router := newRouter(cfg, log)

	api := router.Group("/api")
	{
		api.GET("/home", homeHandler.GetHome)
		api.GET("/categories", catalogHandler.ListCategories)
		api.GET("/products", catalogHandler.ListProducts)
		api.GET("/products/:id", middleware.ExtractUintParam("id", "product_id"), catalogHandler.GetProduct)

		orders := api.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			orders.POST("", rateLimiter.Limit(middleware.OrderRateLimitConfig()), orderHandler.PlaceOrder)
			orders.GET("/my", orderHandler.ListMyOrders)
			orders.GET("/:id", middleware.ExtractUintParam("id", "order_id"), orderHandler.GetMyOrder)
		}

		api.POST("/admin/login", rateLimiter.Limit(middleware.AdminLoginRateLimitConfig()), authHandler.Login)

		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			admin.GET("/home", homeHandler.GetLayout)
			admin.GET("/home/preview", homeHandler.Preview)
			admin.PUT("/home", homeHandler.SaveLayout)

			admin.GET("/categories", catalogHandler.AdminListCategories)
			admin.POST("/categories", catalogHandler.CreateCategory)
			categoryWithID := admin.Group("/categories/:id")
			categoryWithID.Use(middleware.ExtractUintParam("id", "category_id"))
			{
				categoryWithID.PUT("", catalogHandler.UpdateCategory)
				categoryWithID.DELETE("", catalogHandler.DeleteCategory)
			}

			admin.GET("/products", catalogHandler.AdminListProducts)
			admin.POST("/products", catalogHandler.CreateProduct)
			admin.GET("/products/export", catalogHandler.ExportProducts)
			admin.POST("/products/import", importHandler.ImportProducts)
			productWithID := admin.Group("/products/:id")
			productWithID.Use(middleware.ExtractUintParam("id", "product_id"))
			{
				productWithID.GET("", catalogHandler.AdminGetProduct)
				productWithID.PUT("", catalogHandler.UpdateProduct)
				productWithID.DELETE("", catalogHandler.DeleteProduct)
			}

			media := admin.Group("/media")
			media.Use(rateLimiter.LimitByIP(middleware.MediaRateLimitConfig()))
			{
				media.POST("/upload", mediaHandler.Upload)
				media.POST("/analyze", mediaHandler.Analyze)
				media.POST("/remove-background", mediaHandler.RemoveBackground)
			}

			admin.GET("/orders", orderHandler.ListOrders)
			admin.PUT("/orders/:id/status", middleware.ExtractUintParam("id", "order_id"), orderHandler.UpdateStatus)

			admin.GET("/ws/stats", wsHandler.Stats)
		}
	}

	router.GET("/ws", wsHandler.HandleConnection)

	// Тайм-ауты защищают от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// Хаб останавливается по ctx и закрывает клиентские соединения
	select {
	case <-hub.Done():
	case <-shutdownCtx.Done():
		log.Warn("websocket hub did not stop in time")
	}

	log.Info("server exited properly")
	return nil
}

func newRouter(cfg *config.Config, log *zap.Logger) *gin.Engine {
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(log), middleware.RequestLogger(log))

	corsConfig := cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
