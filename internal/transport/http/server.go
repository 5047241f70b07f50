package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/UzumakiODZ/backEndChat/internal/auth"
	"github.com/UzumakiODZ/backEndChat/internal/config"
	"github.com/UzumakiODZ/backEndChat/internal/core"
	"github.com/UzumakiODZ/backEndChat/internal/store"
)

// NewServer builds the HTTP server: REST API plus the WebSocket endpoint.
func NewServer(
	authService *auth.Service,
	st store.Store,
	registry *core.Registry,
	router *core.Router,
	locations *core.Locations,
	proximity *core.Proximity,
	cfg *config.Config,
	logger *zerolog.Logger,
) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	apiHandlers := NewAPIHandlers(authService, st, locations, cfg.AuthRateLimit, logger)
	userHandlers := NewUserHandlers(st, registry, locations, proximity, logger)
	messageHandlers := NewMessageHandlers(st, router, logger)
	wsHandler := NewWSHandler(authService, registry, router, logger)

	engine := gin.New()
	engine.Use(gin.Recovery(), LoggerMiddleware(logger))

	engine.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	engine.GET("/ws", wsHandler.Handle)

	api := engine.Group("/api")
	api.POST("/register", apiHandlers.Register)
	api.POST("/login", apiHandlers.Login)
	api.POST("/check-user", apiHandlers.CheckUser)

	authorized := api.Group("", AuthMiddleware(authService, logger))
	authorized.GET("/users", userHandlers.ListUsers)
	authorized.DELETE("/users/:id", userHandlers.DeleteUser)
	authorized.PUT("/users/me/location", userHandlers.UpdateLocation)
	authorized.GET("/nearby-users", userHandlers.NearbyUsers)
	authorized.GET("/messages", messageHandlers.History)
	authorized.POST("/messages", messageHandlers.Send)

	server := &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	stop := make(chan struct{})
	apiHandlers.limiter.startReset(stop)
	server.RegisterOnShutdown(func() { close(stop) })

	return server
}
