package server

import (
	"context"
	"food-ordering-api/internal/auth"
	"food-ordering-api/internal/config"
	"food-ordering-api/internal/handler"
	authmw "food-ordering-api/internal/middleware"
	"food-ordering-api/internal/service"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type Server struct {
	echo           *echo.Echo
	cfg            *config.Config
	tokens         auth.TokenManager
	orderHandler   *handler.OrderHandler
	userHandler    *handler.UserHandler
	catalogHandler *handler.CatalogHandler
	cartHandler    *handler.CartHandler
	contactHandler *handler.ContactHandler
	webhookHandler *handler.WebhookHandler
}

func NewServer(
	cfg *config.Config,
	tokens auth.TokenManager,
	orderService service.OrderService,
	userService service.UserService,
	catalogService service.CatalogService,
	cartService service.CartService,
	contactService service.ContactService,
	webhookService service.WebhookService,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Validator = handler.NewRequestValidator()

	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			"Idempotency-Key",
		},
	}))
	e.Use(middleware.BodyLimit("10M"))

	s := &Server{
		echo:           e,
		cfg:            cfg,
		tokens:         tokens,
		orderHandler:   handler.NewOrderHandler(orderService),
		userHandler:    handler.NewUserHandler(userService, cfg.JWT.TTL, cfg.Environment.IsProduction()),
		catalogHandler: handler.NewCatalogHandler(catalogService, cfg.UploadsDir),
		cartHandler:    handler.NewCartHandler(cartService),
		contactHandler: handler.NewContactHandler(contactService),
	}
	if webhookService != nil {
		s.webhookHandler = handler.NewWebhookHandler(webhookService)
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	customer := authmw.CustomerAuth(s.tokens)
	admin := authmw.AdminAuth(s.tokens)

	s.echo.Static("/uploads", s.cfg.UploadsDir)

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- account --------
	user := api.Group("/user", authRateLimiter(s.cfg.RateLimit))
	user.POST("/register", s.userHandler.Register)
	user.POST("/login", s.userHandler.Login)
	user.POST("/verify-email", s.userHandler.VerifyEmail)
	user.POST("/resend-verification", s.userHandler.ResendVerification)
	user.POST("/forgot-password", s.userHandler.ForgotPassword)
	user.POST("/verify-reset-pin", s.userHandler.VerifyResetPin)
	user.POST("/reset-password", s.userHandler.ResetPassword)

	// -------- orders --------
	orders := api.Group("/orders")
	orders.GET("/getall", s.orderHandler.ListAllOrders, admin)
	orders.PUT("/getall/:id", s.orderHandler.UpdateAnyOrder, admin)
	orders.DELETE("/getall/:id", s.orderHandler.DeleteAnyOrder, admin)

	orders.POST("", s.orderHandler.CreateOrder, customer)
	orders.GET("", s.orderHandler.ListOrders, customer)
	orders.GET("/confirm", s.orderHandler.ConfirmPayment, customer)
	orders.GET("/:id", s.orderHandler.GetOrder, customer)
	orders.PUT("/:id", s.orderHandler.UpdateOrder, customer)
	orders.DELETE("/:id", s.orderHandler.DeleteOrder, customer)

	// signed by the gateway, no user token
	if s.webhookHandler != nil {
		orders.POST("/webhook", s.webhookHandler.StripeWebhook)
	}

	// -------- catalog --------
	items := api.Group("/items")
	items.GET("", s.catalogHandler.ListItems)
	items.POST("", s.catalogHandler.CreateItem, admin)
	items.DELETE("/:id", s.catalogHandler.DeleteItem, admin)

	offers := api.Group("/special-offers")
	offers.GET("", s.catalogHandler.ListActiveOffers)
	offers.GET("/all", s.catalogHandler.ListAllOffers, admin)
	offers.POST("", s.catalogHandler.CreateOffer, admin)
	offers.PUT("/:id", s.catalogHandler.UpdateOffer, admin)
	offers.PATCH("/:id/toggle", s.catalogHandler.ToggleOffer, admin)
	offers.DELETE("/:id", s.catalogHandler.DeleteOffer, admin)

	// -------- cart --------
	cart := api.Group("/cart", customer)
	cart.GET("", s.cartHandler.GetCart)
	cart.POST("", s.cartHandler.AddItem)
	cart.DELETE("", s.cartHandler.Clear)
	cart.PUT("/:id", s.cartHandler.UpdateItem)
	cart.DELETE("/:id", s.cartHandler.RemoveItem)

	// -------- contact --------
	contact := api.Group("/contact")
	contact.POST("", s.contactHandler.Submit, authRateLimiter(s.cfg.RateLimit))
	contact.GET("/all", s.contactHandler.List, admin)
	contact.PUT("/:id/status", s.contactHandler.UpdateStatus, admin)
	contact.DELETE("/:id", s.contactHandler.Delete, admin)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

func authRateLimiter(cfg config.RateLimit) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.Rate),
		Burst:     cfg.Burst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, try again later")
		},
	})
}
