package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/api"
	"github.com/farmflow/backend/internal/app/domain/activities"
	"github.com/farmflow/backend/internal/app/domain/auth"
	"github.com/farmflow/backend/internal/app/domain/chat"
	"github.com/farmflow/backend/internal/app/domain/crops"
	"github.com/farmflow/backend/internal/app/domain/dashboard"
	"github.com/farmflow/backend/internal/app/domain/equipment"
	"github.com/farmflow/backend/internal/app/domain/fields"
	"github.com/farmflow/backend/internal/app/domain/financial"
	"github.com/farmflow/backend/internal/app/domain/insights"
	"github.com/farmflow/backend/internal/app/domain/subscription"
	"github.com/farmflow/backend/internal/app/domain/tasks"
	weatherdomain "github.com/farmflow/backend/internal/app/domain/weather"
	"github.com/farmflow/backend/internal/app/observability/metrics"
	"github.com/farmflow/backend/internal/pkg/config"
	"github.com/farmflow/backend/internal/pkg/services/assistant"
	"github.com/farmflow/backend/internal/pkg/services/stripe"
	"github.com/farmflow/backend/internal/pkg/services/weather"
)

const trialSweepInterval = time.Hour

// AppHandlers bundles every HTTP handler for route registration.
type AppHandlers struct {
	Auth         *auth.Handler
	Crops        *crops.Handler
	Fields       *fields.Handler
	Equipment    *equipment.Handler
	Activities   *activities.Handler
	Financial    *financial.Handler
	Tasks        *tasks.Handler
	Dashboard    *dashboard.Handler
	Insights     *insights.Handler
	Subscription *subscription.Handler
	Weather      *weatherdomain.Handler
	Chat         *chat.Handler
}

// Setup wires repositories, services and handlers, then registers all routes.
func Setup(r *gin.Engine, cfg *config.Config, dbPool *pgxpool.Pool, log *zap.Logger) {
	handlers, sweeper := setupDependencies(cfg, dbPool, log)
	setupRouter(r, cfg, dbPool, handlers)
	startTrialSweeper(sweeper, log)
}

func setupDependencies(cfg *config.Config, dbPool *pgxpool.Pool, log *zap.Logger) (*AppHandlers, subscription.Service) {
	authRepo := auth.NewRepository(dbPool, log)
	cropRepo := crops.NewRepository(dbPool, log)
	fieldRepo := fields.NewRepository(dbPool, log)
	equipmentRepo := equipment.NewRepository(dbPool, log)
	activityRepo := activities.NewRepository(dbPool, log)
	financialRepo := financial.NewRepository(dbPool, log)
	taskRepo := tasks.NewRepository(dbPool, log)
	dashboardRepo := dashboard.NewRepository(dbPool, log)
	subscriptionRepo := subscription.NewRepository(dbPool, log)

	stripeProvider := stripe.NewProvider(cfg.Stripe.SecretKey)
	weatherService := weather.NewService(
		cfg.Weather.APIKey,
		cfg.Weather.BaseURL,
		time.Duration(cfg.Weather.CacheTTL)*time.Minute,
		log,
	)
	assistantService := assistant.NewService(cfg.AI.GeminiAPIKey, cfg.AI.Model, log)

	authService := auth.NewService(authRepo, cfg, log)
	cropService := crops.NewService(cropRepo, log)
	fieldService := fields.NewService(fieldRepo, log)
	equipmentService := equipment.NewService(equipmentRepo, log)
	activityService := activities.NewService(activityRepo, log)
	financialService := financial.NewService(financialRepo, log)
	taskService := tasks.NewService(taskRepo, log)
	dashboardService := dashboard.NewService(dashboardRepo, log)
	insightService := insights.NewService(cropService, activityService, weatherService, log)
	subscriptionService := subscription.NewService(subscriptionRepo, stripeProvider, log)

	handlers := &AppHandlers{
		Auth:         auth.NewHandler(authService, cfg, log),
		Crops:        crops.NewHandler(cropService, log),
		Fields:       fields.NewHandler(fieldService, log),
		Equipment:    equipment.NewHandler(equipmentService, log),
		Activities:   activities.NewHandler(activityService, log),
		Financial:    financial.NewHandler(financialService, log),
		Tasks:        tasks.NewHandler(taskService, log),
		Dashboard:    dashboard.NewHandler(dashboardService, log),
		Insights:     insights.NewHandler(insightService, cfg.AI.WeatherInsightsEnabled, log),
		Subscription: subscription.NewHandler(subscriptionService, log),
		Weather:      weatherdomain.NewHandler(weatherService, log),
		Chat:         chat.NewHandler(assistantService, cropService, taskService, cfg.AI.ChatEnabled, log),
	}
	return handlers, subscriptionService
}

func setupRouter(r *gin.Engine, cfg *config.Config, dbPool *pgxpool.Pool, h *AppHandlers) {
	r.GET("/health", healthHandler(dbPool))

	jwtConfig := auth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		TokenExpiration: time.Duration(cfg.JWT.ExpirationHrs) * time.Hour,
		CookieName:      cfg.JWT.CookieName,
	}
	requireAuth := auth.JWTAuthMiddleware(jwtConfig)

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/signup", h.Auth.Signup)
		authGroup.POST("/signin", h.Auth.Signin)
		authGroup.POST("/signout", h.Auth.Signout)
		authGroup.GET("/verify", requireAuth, h.Auth.Verify)
	}

	apiGroup := r.Group("/api", requireAuth)
	{
		cropGroup := apiGroup.Group("/crops")
		{
			cropGroup.GET("", h.Crops.List)
			cropGroup.POST("", h.Crops.Create)
			cropGroup.GET("/:id", h.Crops.Get)
			cropGroup.PUT("/:id", h.Crops.Update)
			cropGroup.DELETE("/:id", h.Crops.Delete)
		}

		fieldGroup := apiGroup.Group("/fields")
		{
			fieldGroup.GET("", h.Fields.List)
			fieldGroup.POST("", h.Fields.Create)
			fieldGroup.GET("/:id", h.Fields.Get)
			fieldGroup.PUT("/:id", h.Fields.Update)
			fieldGroup.DELETE("/:id", h.Fields.Delete)
		}

		equipmentGroup := apiGroup.Group("/land-preparation/equipment")
		{
			equipmentGroup.GET("", h.Equipment.List)
			equipmentGroup.POST("", h.Equipment.Create)
			equipmentGroup.PUT("/:id", h.Equipment.Update)
			equipmentGroup.DELETE("/:id", h.Equipment.Delete)
		}

		apiGroup.POST("/irrigation", h.Activities.CreateIrrigation)
		apiGroup.GET("/irrigation", h.Activities.ListIrrigation)
		apiGroup.POST("/fertilizer", h.Activities.CreateFertilizer)
		apiGroup.GET("/fertilizer", h.Activities.ListFertilizer)
		apiGroup.POST("/pest-disease", h.Activities.CreatePestDisease)
		apiGroup.GET("/pest-disease", h.Activities.ListPestDisease)
		apiGroup.POST("/harvest", h.Activities.CreateHarvest)
		apiGroup.GET("/harvest", h.Activities.ListHarvest)
		apiGroup.GET("/activities", h.Activities.ListRecent)

		financialGroup := apiGroup.Group("/financial")
		{
			financialGroup.GET("/accounts", h.Financial.ListAccounts)
			financialGroup.POST("/accounts", h.Financial.CreateAccount)
			financialGroup.GET("/transactions", h.Financial.ListTransactions)
			financialGroup.POST("/transactions", h.Financial.CreateTransaction)
		}

		taskGroup := apiGroup.Group("/tasks")
		{
			taskGroup.GET("", h.Tasks.List)
			taskGroup.POST("", h.Tasks.Create)
			taskGroup.PUT("/:id", h.Tasks.Update)
			taskGroup.DELETE("/:id", h.Tasks.Delete)
		}

		dashboardGroup := apiGroup.Group("/dashboard")
		{
			dashboardGroup.GET("/summary", h.Dashboard.Summary)
			dashboardGroup.GET("/alerts", h.Dashboard.Alerts)
			dashboardGroup.GET("/quick-stats", h.Dashboard.QuickStats)
		}

		aiGroup := apiGroup.Group("/ai")
		{
			aiGroup.POST("/analytics", h.Insights.FarmAnalytics)
			aiGroup.POST("/weather-insights", h.Insights.WeatherInsights)
			aiGroup.POST("/chat", h.Chat.Chat)
		}

		subscriptionGroup := apiGroup.Group("/subscription")
		{
			subscriptionGroup.GET("", h.Subscription.Status)
			subscriptionGroup.POST("/cancel", h.Subscription.Cancel)
			subscriptionGroup.POST("/payment-method", h.Subscription.AddPaymentMethod)
		}

		paymentGroup := apiGroup.Group("/payments")
		{
			paymentGroup.POST("/setup-intent", h.Subscription.CreateSetupIntent)
			paymentGroup.POST("/intent", h.Subscription.CreatePaymentIntent)
			paymentGroup.POST("/confirm", h.Subscription.ConfirmPayment)
		}

		apiGroup.GET("/weather", h.Weather.Current)
	}
}

// healthHandler reports liveness, including database reachability.
func healthHandler(dbPool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := dbPool.Ping(ctx); err != nil {
			api.Error(c, http.StatusServiceUnavailable, "database unreachable", api.CodeServiceUnavailable, nil)
			return
		}
		api.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}

// startTrialSweeper periodically expires trials that ran out.
func startTrialSweeper(svc subscription.Service, log *zap.Logger) {
	go func() {
		ticker := time.NewTicker(trialSweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			processed, err := svc.ProcessExpiredTrials(ctx)
			if err != nil {
				log.Error("Trial sweep failed", zap.Error(err))
			} else {
				metrics.Get().RecordTrialSweep(ctx, processed)
			}
			cancel()
		}
	}()
}
