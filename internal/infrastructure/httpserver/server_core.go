package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/mailcode/registrator/internal/core/ports"
	customMiddleware "github.com/mailcode/registrator/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

type ServerDeps struct {
	RegistrationService ports.RegistrationService
	RateLimiter         ports.RateLimiter
	HealthCheckers      []ports.HealthChecker
}

type Server struct {
	echo            *echo.Echo
	config          *ServerConfig
	logger          *logrus.Logger
	registrationSvc ports.RegistrationService
	middleware      *customMiddleware.MiddlewareCollection
	healthCheckers  []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true

	server := &Server{
		echo:            e,
		config:          serverConfig,
		logger:          logger,
		registrationSvc: deps.RegistrationService,
		healthCheckers:  deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.RateLimiter,
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
