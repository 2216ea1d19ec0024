package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tradeyard/backend/internal/auth"
	"github.com/tradeyard/backend/internal/cache"
	"github.com/tradeyard/backend/internal/catalog"
	"github.com/tradeyard/backend/internal/commission"
	"github.com/tradeyard/backend/internal/config"
	"github.com/tradeyard/backend/internal/earnings"
	apierrors "github.com/tradeyard/backend/internal/errors"
	"github.com/tradeyard/backend/internal/logging"
	"github.com/tradeyard/backend/internal/loyalty"
	"github.com/tradeyard/backend/internal/middleware"
	"github.com/tradeyard/backend/internal/monitoring"
	"github.com/tradeyard/backend/internal/payout"
)

// APIServer represents the main API server
type APIServer struct {
	config           *config.Config
	router           *gin.Engine
	db               *pgxpool.Pool
	authService      *auth.Service
	commissionSvc    *commission.Service
	earningsSvc      *earnings.Service
	payoutSvc        *payout.Service
	catalogSvc       *catalog.Service
	loyaltySvc       *loyalty.Service
	jwtAuthenticator *middleware.JWTAuthenticator
}

// NewAPIServer creates a new API server instance
func NewAPIServer(cfg *config.Config, db *pgxpool.Pool, redis *cache.Redis) *APIServer {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware order matters: recovery first, then request identity,
	// then the observability layers.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(monitoring.MetricsMiddleware())
	router.Use(logging.RequestLogger())

	commissionSvc := commission.NewService(db, redis, cfg.Commission.RateCacheTTL)
	loyaltySvc := loyalty.NewService(db)

	srv := &APIServer{
		config:           cfg,
		router:           router,
		db:               db,
		authService:      auth.NewService(db, &cfg.JWT),
		commissionSvc:    commissionSvc,
		earningsSvc:      earnings.NewService(db, commissionSvc, loyaltySvc),
		payoutSvc:        payout.NewService(db),
		catalogSvc:       catalog.NewService(db),
		loyaltySvc:       loyaltySvc,
		jwtAuthenticator: middleware.NewJWTAuthenticator(&cfg.JWT),
	}

	srv.setupRoutes()
	return srv
}

// Router returns the gin router
func (s *APIServer) Router() http.Handler {
	return s.router
}

// setupRoutes configures all API routes
func (s *APIServer) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/api/v1")
	{
		// Auth routes (public)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", s.handleRegister)
			authGroup.POST("/login", s.handleLogin)
			authGroup.POST("/logout", s.handleLogout)
			authGroup.POST("/refresh", s.handleRefresh)
			authGroup.GET("/me", s.jwtAuthenticator.JWTAuth(), s.handleMe)
		}

		// Catalog routes (public)
		catalogGroup := v1.Group("/catalog")
		{
			catalogGroup.GET("/products", s.handleListProducts)
			catalogGroup.GET("/products/:id", s.handleGetProduct)
			catalogGroup.GET("/bundles/:id", s.handleGetBundle)
		}

		// Sale recording (protected - seller role)
		sales := v1.Group("/sales")
		sales.Use(s.jwtAuthenticator.JWTAuth())
		sales.Use(middleware.RequireSeller())
		{
			sales.POST("", s.handleRecordSale)
		}

		// Earnings routes (protected - seller role)
		earningsGroup := v1.Group("/earnings")
		earningsGroup.Use(s.jwtAuthenticator.JWTAuth())
		earningsGroup.Use(middleware.RequireSeller())
		{
			earningsGroup.GET("", s.handleListEarnings)
			earningsGroup.GET("/summary", s.handleEarningsSummary)
			earningsGroup.GET("/loyalty", s.handleLoyaltyBalance)
		}

		// Payout routes (protected - seller role)
		payouts := v1.Group("/payouts")
		payouts.Use(s.jwtAuthenticator.JWTAuth())
		payouts.Use(middleware.RequireSeller())
		{
			payouts.POST("", s.handleRequestPayout)
			payouts.GET("", s.handleListPayouts)
			payouts.GET("/:id", s.handleGetPayout)
		}

		// Admin routes (protected - admin role)
		admin := v1.Group("/admin")
		admin.Use(s.jwtAuthenticator.JWTAuth())
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/payouts", s.handleAdminListPayouts)
			admin.PATCH("/payouts/:id", s.handleAdminUpdatePayout)
			admin.GET("/commission-settings", s.handleAdminListSettings)
			admin.PATCH("/commission-settings/:id", s.handleAdminUpdateSetting)
		}
	}
}

// Health check handler
func (s *APIServer) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "api",
	})
}

// handleRegister handles user registration
func (s *APIServer) handleRegister(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailAlreadyExists):
			respondError(c, apierrors.NewInvalidRequestError("Email already registered"))
		case errors.Is(err, auth.ErrDisplayNameRequired):
			respondError(c, apierrors.NewValidationError("Display name is required"))
		case errors.Is(err, auth.ErrUnauthorized):
			respondError(c, apierrors.NewInvalidRequestError("Only seller and buyer accounts can self-register"))
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// handleLogin handles user login
func (s *APIServer) handleLogin(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(c, apierrors.ErrInvalidCredentialsError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleLogout handles user logout. For stateless JWT, logout is handled
// client-side by discarding the token.
func (s *APIServer) handleLogout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// handleRefresh handles token refresh
func (s *APIServer) handleRefresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	tokens, err := s.authService.RefreshTokens(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			respondError(c, apierrors.ErrInvalidCredentialsError)
		case errors.Is(err, auth.ErrTokenExpired):
			respondError(c, apierrors.ErrTokenExpiredError)
		case errors.Is(err, auth.ErrUserNotFound):
			respondError(c, apierrors.ErrUserNotFoundError)
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// handleMe returns the authenticated user's profile
func (s *APIServer) handleMe(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		respondError(c, apierrors.ErrInvalidCredentialsError)
		return
	}

	user, err := s.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondError(c, apierrors.ErrUserNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// respondError sends a standardized error response
func respondError(c *gin.Context, err *apierrors.APIError) {
	c.JSON(err.HTTPStatus, apierrors.NewErrorResponse(err, c.GetString("request_id")))
}
