package server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"kolibri.dev/communityquest/internal/catalog"
	"kolibri.dev/communityquest/internal/config"
	"kolibri.dev/communityquest/internal/middleware"
	"kolibri.dev/communityquest/internal/notify"

	feedHttp "kolibri.dev/communityquest/internal/modules/feed/delivery/http"
	leaderboardHttp "kolibri.dev/communityquest/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "kolibri.dev/communityquest/internal/modules/leaderboard/repository"
	leaderboardService "kolibri.dev/communityquest/internal/modules/leaderboard/service"
	memberHttp "kolibri.dev/communityquest/internal/modules/member/delivery/http"
	memberService "kolibri.dev/communityquest/internal/modules/member/service"
	progressionHttp "kolibri.dev/communityquest/internal/modules/progression/delivery/http"
	progressionRepo "kolibri.dev/communityquest/internal/modules/progression/repository"
	progressionService "kolibri.dev/communityquest/internal/modules/progression/service"
	taskHttp "kolibri.dev/communityquest/internal/modules/task/delivery/http"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, announcer notify.Announcer, roleSync notify.RoleSynchronizer) *Server {
	cat := catalog.Default()

	progRepo := progressionRepo.NewRepository(db)
	engine := progressionService.NewEngine(cat, progRepo, announcer, roleSync, redisClient)
	progressionHandler := progressionHttp.NewProgressionHandler(engine, redisClient, cfg.RateLimitComplete)

	memberSvc := memberService.NewMemberService(progRepo)
	memberHandler := memberHttp.NewMemberHandler(memberSvc)

	lbRepo := leaderboardRepo.NewLeaderboardRepository(db)
	lbSvc := leaderboardService.NewLeaderboardService(lbRepo, redisClient)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(lbSvc)

	taskHandler := taskHttp.NewTaskHandler(cat)
	feedHandler := feedHttp.NewFeedHandler(redisClient)

	router := gin.New()
	setupCORS(router, cfg.AllowedOrigins)
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	api.GET("/tasks", taskHandler.GetTasks)
	api.GET("/leaderboard", leaderboardHandler.GetLeaderboard)

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/me", memberHandler.GetMe)
		protected.POST("/complete-task", progressionHandler.CompleteTask)
		protected.GET("/feed/ws", feedHandler.HandleWebSocket)

		// Moderator routes
		awards := protected.Group("/awards")
		awards.Use(authMiddleware.RequireModerator())
		{
			awards.POST("", progressionHandler.AwardSpecial)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
