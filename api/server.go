package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/judgegodwins/chess-relay/registry"
	"github.com/judgegodwins/chess-relay/rooms"
	"github.com/judgegodwins/chess-relay/tokens"
	"github.com/judgegodwins/chess-relay/util"
	"github.com/judgegodwins/chess-relay/ws"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Server struct {
	config      *util.Config
	wsManager   *ws.Manager
	coordinator *rooms.Coordinator
	tokenMaker  tokens.Maker
	router      *gin.Engine
	logger      *zap.Logger
}

// NewServer wires the registry, the room coordinator and the websocket
// manager together. util.InitValidator must have been called.
func NewServer(config *util.Config, logger *zap.Logger) (*Server, error) {
	maker, err := tokens.NewMaker(config.TokenKind, config.TokenSecret)

	if err != nil {
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	names := registry.New()
	coordinator := rooms.NewCoordinator(names, logger.Named("rooms"))

	server := &Server{
		config:      config,
		wsManager:   ws.NewManager(config, coordinator, names, maker, util.Validate, logger.Named("ws")),
		coordinator: coordinator,
		tokenMaker:  maker,
		router:      gin.New(),
		logger:      logger,
	}

	server.setupRouter()

	return server, nil
}

func (s *Server) setupRouter() {
	router := s.router

	router.Use(gin.Recovery(), s.RequestLogger)

	router.GET("/ws", s.wsManager.ServeWS)
	router.POST("/auth/username", s.TokenGenerator)
	router.GET("/auth/me", s.AuthMiddleware, s.GetTokenData)
	router.GET("/rooms/:id", s.CheckRoom)
	router.GET("/healthz", s.Health)
}

// Handler is the router behind the CORS policy from the config.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(s.router)
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%v", s.config.Port)

	s.logger.Info("listening", zap.String("addr", addr))

	return http.ListenAndServe(addr, s.Handler())
}
