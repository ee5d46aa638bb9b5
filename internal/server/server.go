package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"needu.com/community/internal/config"
	"needu.com/community/internal/middleware"
	"needu.com/community/pkg/mailer"
	"needu.com/community/pkg/moderation"
	"needu.com/community/pkg/notifier"

	communityHttp "needu.com/community/internal/modules/community/delivery/http"
	communityRepo "needu.com/community/internal/modules/community/repository"
	communityService "needu.com/community/internal/modules/community/service"

	pointHttp "needu.com/community/internal/modules/point/delivery/http"
	pointRepo "needu.com/community/internal/modules/point/repository"
	pointService "needu.com/community/internal/modules/point/service"

	searchService "needu.com/community/internal/modules/search/service"

	sharedHttp "needu.com/community/internal/modules/shared/delivery/http"
	sharedRepo "needu.com/community/internal/modules/shared/repository"
	sharedService "needu.com/community/internal/modules/shared/service"

	userHttp "needu.com/community/internal/modules/user/delivery/http"
	userRepo "needu.com/community/internal/modules/user/repository"
	userService "needu.com/community/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

// NewServer wires every module. redisClient may be nil; rate limiting and email
// verification are then disabled.
func NewServer(ctx context.Context, cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	classifier, err := newClassifier(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var searchSvc searchService.SearchService
	if cfg.MeiliSearchHost != "" {
		meiliHost := cfg.MeiliSearchHost
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchSvc = searchService.NewMeiliSearchService(meiliClient)
	} else {
		slog.Warn("MEILISEARCH_HOST not set, post search disabled")
	}

	var codes userRepo.VerificationStore
	if redisClient != nil {
		codes = userRepo.NewRedisVerificationStore(redisClient)
	} else {
		slog.Warn("redis not configured, email verification disabled")
	}

	reportNotifier := notifier.NewSlackNotifier(map[string]string{
		notifier.ChannelReport: cfg.SlackReportWebhook,
	}, 10*time.Second)

	mail := mailer.NewSMTPMailer(mailer.Options{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
	})

	userRepository := userRepo.NewUserRepository(db)

	pointSvc := pointService.NewPointService(pointRepo.NewPointRepository(db), cfg.Location)
	pointHandler := pointHttp.NewPointHandler(pointSvc)

	userSvc := userService.NewUserService(userRepository, codes, mail, pointSvc, userService.Options{
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.JWTTTL,
		BcryptCost:    cfg.BcryptCost,
		VerifyCodeTTL: cfg.VerifyCodeTTL,
	})
	userHandler := userHttp.NewUserHandler(userSvc)

	communitySvc := communityService.NewCommunityService(
		communityRepo.NewPostRepository(db),
		communityRepo.NewTopicRepository(db),
		communityRepo.NewLikeRepository(db),
		classifier,
		pointSvc,
		searchSvc,
		redisClient,
		communityService.Options{
			ToxicityThreshold: cfg.ToxicityThreshold,
			PostCooldown:      cfg.RateLimitPost,
		},
	)
	communityHandler := communityHttp.NewCommunityHandler(communitySvc)

	sharedSvc := sharedService.NewSharedService(sharedRepo.NewSharedRepository(db), userRepository, reportNotifier)
	sharedHandler := sharedHttp.NewSharedHandler(sharedSvc)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/health"},
	}))

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret)
	requireAuth := authMiddleware.RequireAuth()

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := api.Group("/auth")
	{
		auth.POST("/login", userHandler.Login)
	}

	users := api.Group("/users")
	{
		users.POST("", userHandler.Register)
		users.GET("/duplicate", userHandler.CheckDuplicate)
		users.POST("/verify-email", userHandler.SendVerificationCode)
		users.POST("/verify-email/confirm", userHandler.ConfirmVerificationCode)
		users.DELETE("", userHandler.Remove)
		users.GET("/me", requireAuth, userHandler.GetMe)
		users.PUT("/me", requireAuth, userHandler.UpdatePersonalInfo)
	}

	points := api.Group("/points")
	{
		points.POST("/check-in", requireAuth, pointHandler.CheckIn)
		points.GET("/history", requireAuth, pointHandler.GetHistory)
		points.GET("/leaderboard", pointHandler.GetLeaderboard)
	}

	community := api.Group("/community")
	{
		community.GET("/topics", communityHandler.GetTopics)
		community.POST("/posts", requireAuth, communityHandler.CreatePost)
		community.GET("/posts/search", communityHandler.SearchPosts)
		community.POST("/posts/like", requireAuth, communityHandler.UpdatePostLike)
		community.GET("/posts/:post_id", communityHandler.GetPost)
		community.PUT("/posts/:post_id/view", communityHandler.UpdateView)
		community.GET("/posts/:post_id/edit", requireAuth, communityHandler.GetPostForEdit)
		community.PUT("/posts/:post_id", requireAuth, communityHandler.UpdatePost)
		community.DELETE("/posts/:post_id", requireAuth, communityHandler.DeletePost)
	}

	shared := api.Group("/shared")
	{
		shared.GET("/career-types", sharedHandler.GetCareerTypes)
		shared.GET("/hashtags", sharedHandler.GetHashtags)
		shared.POST("/reports", requireAuth, sharedHandler.CreateReport)
		shared.POST("/subscribe", sharedHandler.Subscribe)
	}

	admin := api.Group("/admin")
	admin.Use(requireAuth, authMiddleware.RequireAdmin())
	{
		admin.POST("/points/:user_id/recalculate", pointHandler.Recalculate)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}, nil
}

func (s *Server) Handler() *gin.Engine {
	return s.engine
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func newClassifier(ctx context.Context, cfg *config.Config) (moderation.Classifier, error) {
	if cfg.PerspectiveAPIKey == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("PERSPECTIVE_API_KEY is required in production")
		}
		slog.Warn("PERSPECTIVE_API_KEY not set, toxicity checks always pass")
		return moderation.StaticClassifier{Score: 0}, nil
	}

	return moderation.NewPerspectiveClassifier(ctx, cfg.PerspectiveAPIKey, cfg.ModerationTimeout)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	for _, origin := range strings.Split(allowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
