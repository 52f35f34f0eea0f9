package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")
	api.Use(s.middleware.RateLimit.Handler())

	api.POST("/apply", s.issueCode)
	api.POST("/register", s.verify)
}
