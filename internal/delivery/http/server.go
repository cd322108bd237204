package http

import (
	"context"
	"time"

	"github.com/ecopoint-service/internal/config"
	"github.com/ecopoint-service/internal/delivery/http/handler"
	"github.com/ecopoint-service/internal/delivery/http/middleware"
	"github.com/ecopoint-service/internal/pkg/metrics"
	"github.com/ecopoint-service/internal/pkg/utils"
	"github.com/ecopoint-service/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app       *fiber.App
	config    *config.Config
	logger    *zap.Logger
	collector *metrics.Collector

	// Handlers
	ecopointHandler *handler.EcopointHandler
}

// NewServer - создание нового HTTP сервера. collector may be nil.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	collector *metrics.Collector,
	ecopointHandler *handler.EcopointHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Ecopoint Service",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:             app,
		config:          cfg,
		logger:          logger,
		collector:       collector,
		ecopointHandler: ecopointHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App exposes the fiber app for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger, s.collector))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	if s.collector != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.collector.Handler()))
	}

	// Маршрут мессенджер-бота
	s.app.Post("/listaEcopontos", s.ecopointHandler.Nearest)

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, dto.HealthResponse{
			Status: "healthy",
			Store:  s.config.Store.Kind,
		}, nil)
	})

	ecopoints := api.Group("/ecopoints")
	ecopoints.Post("/nearest", s.ecopointHandler.Nearest)
	ecopoints.Post("/nearby", s.ecopointHandler.Nearby)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		errCode := "INTERNAL_SERVER_ERROR"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			if code < fiber.StatusInternalServerError {
				errCode = "HTTP_ERROR"
			}
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    errCode,
				"message": err.Error(),
			},
		})
	}
}
