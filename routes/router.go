package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cppla/intranet/config"
	"github.com/cppla/intranet/controllers"
	"github.com/cppla/intranet/middleware"
	"github.com/cppla/intranet/utils"
)

// SetupRouter wires routes, middlewares, and controllers. rc may be nil.
func SetupRouter(db *gorm.DB, rc *redis.Client, cfg config.AppConfig) *gin.Engine {
	mode := strings.ToLower(cfg.GinMode)
	if mode == "" && cfg.Debug {
		mode = "debug"
	}
	switch mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file when configured, otherwise to the app logger
	accessLog := utils.Logger
	if cfg.GinPath != "" {
		if gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg); err == nil {
			accessLog = gl
		} else {
			utils.Sugar.Warnf("gin access log %s unavailable: %v", cfg.GinPath, err)
		}
	}
	r.Use(utils.Ginzap(accessLog, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(accessLog, true))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", utils.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", utils.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		// credentials cannot be combined with a wildcard origin
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	configController := controllers.NewConfigController(cfg)
	documentController := controllers.NewDocumentController()
	postController := controllers.NewPostController(cfg.UploadMaxBytes())

	r.GET("/", configController.Root)
	r.GET("/health", configController.Health)

	api := r.Group("/api")
	api.Use(middleware.DBSession(db))
	limit := middleware.RateLimitMiddleware(cfg.RateLimitPerMinute, rc)

	documents := api.Group("/documents")
	documents.GET("/", documentController.ListDocuments)
	documents.GET("/:id", documentController.GetDocument)
	documents.GET("/:id/link", documentController.GetDocumentLink)
	documents.POST("/", limit, documentController.CreateDocument)
	documents.PUT("/:id", limit, documentController.UpdateDocument)
	documents.DELETE("/:id", limit, documentController.DeleteDocument)

	posts := api.Group("/posts")
	posts.GET("/", postController.ListPosts)
	posts.GET("/:id", postController.GetPost)
	posts.GET("/:id/attachments/:att_id", postController.GetAttachment)
	posts.GET("/:id/replies", postController.ListReplies)
	posts.POST("/", limit, postController.CreatePost)
	posts.PUT("/:id", limit, postController.UpdatePost)
	posts.DELETE("/:id", limit, postController.DeletePost)
	posts.POST("/:id/replies", limit, postController.AddReply)
	posts.POST("/:id/shares", limit, postController.AddShare)
	posts.POST("/:id/reactions", limit, postController.AddReaction)
	posts.POST("/:id/views", limit, postController.AddView)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, "api route not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, "not found")
	})

	return r
}
