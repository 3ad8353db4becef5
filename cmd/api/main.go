package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/00yuyi00/ChongYu/internal/config"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/handler"
	"github.com/00yuyi00/ChongYu/internal/middleware"
	"github.com/00yuyi00/ChongYu/internal/repository"
	"github.com/00yuyi00/ChongYu/internal/routes"
	"github.com/00yuyi00/ChongYu/internal/service"
	"github.com/00yuyi00/ChongYu/internal/ws"
	pkgcache "github.com/00yuyi00/ChongYu/pkg/cache"
	pkges "github.com/00yuyi00/ChongYu/pkg/elasticsearch"
	"github.com/00yuyi00/ChongYu/pkg/jwt"
	pkglogger "github.com/00yuyi00/ChongYu/pkg/logger"
	pkgredis "github.com/00yuyi00/ChongYu/pkg/redis"
	pkgstorage "github.com/00yuyi00/ChongYu/pkg/storage"
)

// @title           ChongYu Backend API
// @version         1.0
// @description     宠物遇见 - 寻宠 / 招领 / 送养平台后端
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")

	if err := db.AutoMigrate(
		&domain.Profile{},
		&domain.Post{},
		&domain.Message{},
		&domain.Favorite{},
		&domain.Feedback{},
		&domain.Guide{},
	); err != nil {
		pkglogger.Info("Migration warning: %v", err)
	}

	// Redis is optional. Without it the cache layer turns into a
	// pass-through and realtime fan-out stays instance-local.
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Info("Warning: Failed to connect to Redis: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		pkglogger.Info("Connected to Redis")
	}

	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
	}

	// Elasticsearch is optional; keyword search falls back to MySQL LIKE.
	var esClient *pkges.Client
	if cfg.Elasticsearch.Enabled {
		esClient, err = pkges.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
		if err != nil {
			pkglogger.Info("Warning: Failed to connect to Elasticsearch: %v (search disabled)", err)
			esClient = nil
		} else {
			pkglogger.Info("Connected to Elasticsearch")
		}
	}

	// Object storage is required: publishing and avatars depend on it.
	storageClient, err := pkgstorage.NewS3Client(pkgstorage.S3Config{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Bucket:          cfg.Storage.Bucket,
		CDNURL:          cfg.Storage.CDNURL,
		BasePath:        cfg.Storage.BasePath,
		ForcePathStyle:  cfg.Storage.ForcePathStyle,
	})
	if err != nil {
		log.Fatalf("Failed to init object storage: %v", err)
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	hub := ws.NewHub(redisClient)
	go hub.Run()

	// Repositories
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	guideRepo := repository.NewGuideRepository(db)

	// Services
	searchService := service.NewSearchService(esClient, postRepo)
	authService := service.NewAuthService(profileRepo, jwtManager)
	sessionService := service.NewSessionService(profileRepo, jwtManager)
	postService := service.NewPostService(postRepo, profileRepo, cacheService, searchService)
	publishService := service.NewPublishService(postRepo, storageClient, cacheService, searchService)
	messageService := service.NewMessageService(messageRepo, profileRepo, hub)
	favoriteService := service.NewFavoriteService(favoriteRepo, postRepo)
	feedbackService := service.NewFeedbackService(feedbackRepo)
	guideService := service.NewGuideService(guideRepo, cacheService)
	profileService := service.NewProfileService(profileRepo, storageClient, cacheService)
	adminService := service.NewAdminService(profileRepo, postRepo, feedbackRepo, cacheService, searchService)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	postHandler := handler.NewPostHandler(postService, favoriteService)
	publishHandler := handler.NewPublishHandler(publishService)
	messageHandler := handler.NewMessageHandler(messageService)
	favoriteHandler := handler.NewFavoriteHandler(favoriteService)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)
	guideHandler := handler.NewGuideHandler(guideService)
	profileHandler := handler.NewProfileHandler(profileService)
	uploadHandler := handler.NewUploadHandler(storageClient)
	adminHandler := handler.NewAdminHandler(adminService, feedbackService, guideService)
	wsHandler := handler.NewWSHandler(hub, sessionService, messageService, cfg.CORS.AllowOrigins)

	router := gin.Default()

	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           86400,
	}))

	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "chongyu-backend",
			"time":    time.Now().Unix(),
		})
	})

	routes.Setup(
		router,
		authHandler,
		postHandler,
		publishHandler,
		messageHandler,
		favoriteHandler,
		feedbackHandler,
		guideHandler,
		profileHandler,
		uploadHandler,
		adminHandler,
		wsHandler,
		jwtManager,
		redisClient,
	)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Info("Server listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// splitAndTrim splits a string by delimiter and trims spaces
func splitAndTrim(s string, delimiter string) []string {
	parts := []string{}
	for _, part := range strings.Split(s, delimiter) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// initDB opens the MySQL connection with utf8mb4 session settings
func initDB(cfg *config.Config) (*gorm.DB, error) {
	mysqlCfg, err := mysqldriver.ParseDSN(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("invalid DSN: %w", err)
	}
	if mysqlCfg.Params == nil {
		mysqlCfg.Params = map[string]string{}
	}
	mysqlCfg.Params["time_zone"] = "'+08:00'"

	gormLogLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		gormLogLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, err
	}

	db.Exec("SET NAMES utf8mb4")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
