package routes

import (
	"time"

	"collab-service/internal/ai"
	"collab-service/internal/api/handlers"
	"collab-service/internal/api/middleware"
	"collab-service/internal/auth"
	"collab-service/internal/config"
	"collab-service/internal/database"
	"collab-service/internal/realtime"
	"collab-service/internal/repository"
	"collab-service/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Router struct {
	engine          *gin.Engine
	wsHandler       *handlers.WebSocketHandler
	authHandler     *handlers.AuthHandler
	msgHandler      *handlers.MessageHandler
	healthHandler   *handlers.HealthHandler
	presenceHandler *handlers.PresenceHandler
	authMW          *middleware.AuthMiddleware
	rateLimitMW     *middleware.RateLimitMiddleware
}

func NewRouter(
	cfg *config.Config,
	hub *realtime.Hub,
	db *gorm.DB,
	redisClient *database.RedisClient,
	presence *services.PresenceService,
	aiClient *ai.Client,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	userRepo := repository.NewUserRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpirationTime)
	authService := auth.NewAuthService(userRepo, tokens)
	assistant := realtime.NewAssistant(messageRepo, aiClient)

	return &Router{
		engine: engine,
		wsHandler: handlers.NewWebSocketHandler(
			hub, authService, userRepo, channelRepo, membershipRepo,
			messageRepo, assistant, cfg.Server.AllowedOrigins,
		),
		authHandler:     handlers.NewAuthHandler(authService),
		msgHandler:      handlers.NewMessageHandler(messageRepo),
		healthHandler:   handlers.NewHealthHandler(aiClient),
		presenceHandler: handlers.NewPresenceHandler(presence),
		authMW:          middleware.NewAuthMiddleware(tokens),
		rateLimitMW:     middleware.NewRateLimitMiddleware(services.NewRateLimiter(redisClient)),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", r.healthHandler.Health)

	// WebSocket endpoints authenticate inside the handshake (token query
	// parameter) so close codes can carry the failure reason.
	ws := r.engine.Group("/ws")
	ws.Use(r.rateLimitMW.RateLimitIP(30, time.Minute))
	{
		ws.GET("/channel/:channelID", r.wsHandler.HandleChannel)
		ws.GET("/dm/:userID", r.wsHandler.HandleDirect)
	}

	api := r.engine.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Use(r.rateLimitMW.RateLimitIP(10, time.Minute))
	{
		authRoutes.POST("/register", r.authHandler.Register)
		authRoutes.POST("/login", r.authHandler.Login)
	}

	authed := api.Group("/")
	authed.Use(r.authMW.RequireAuth())
	authed.Use(r.rateLimitMW.RateLimit(120, time.Minute))
	{
		authed.GET("/channels/:channelID/messages", r.msgHandler.GetChannelMessages)
		authed.GET("/users/online", r.presenceHandler.GetOnlineUsers)
		authed.GET("/users/:userID/status", r.presenceHandler.GetUserStatus)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
