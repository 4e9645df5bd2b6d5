package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pulp-league/internal/auth"
	"pulp-league/internal/config"
	"pulp-league/internal/database"
	"pulp-league/internal/handlers"
	"pulp-league/internal/jobs"
	"pulp-league/internal/repository"
	"pulp-league/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	if err := database.SeedAdvantageCatalog(db); err != nil {
		log.Fatalf("Failed to seed advantage catalog: %v", err)
	}

	// Initialize repository and services
	repo := repository.NewRepository(db)
	ledgerService := services.NewLedgerService(db)
	standingsService := services.NewStandingsService(repo)
	authService := services.NewAuthService(db, ledgerService, cfg.Economy.StartingBalance, cfg.App.AdminPlayers)
	windowService := services.NewWindowService(db, repo)
	predictionService := services.NewPredictionService(db, repo, ledgerService, cfg.Economy.MinWager)
	challengeService := services.NewChallengeService(db, repo, ledgerService, standingsService, cfg.Economy.MinWager)
	advantageService := services.NewAdvantageService(db, repo, ledgerService, cfg.Economy.AdvantageEODExpiry)
	settlementService := services.NewSettlementService(db, repo, predictionService, challengeService, advantageService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	playerHandler := handlers.NewPlayerHandler(repo, ledgerService, standingsService)
	predictionHandler := handlers.NewPredictionHandler(predictionService)
	challengeHandler := handlers.NewChallengeHandler(challengeService)
	advantageHandler := handlers.NewAdvantageHandler(advantageService)
	windowHandler := handlers.NewWindowHandler(windowService)
	roundHandler := handlers.NewRoundHandler(db, repo, settlementService)

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	router.POST("/auth/login", authHandler.Login)

	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		api.GET("/players", playerHandler.ListPlayers)
		api.GET("/players/balance", playerHandler.GetBalance)
		api.GET("/players/ledger", playerHandler.GetLedger)
		api.GET("/players/stats", playerHandler.GetStats)
		api.GET("/standings", playerHandler.GetLeaderboard)
		api.GET("/rounds/:id", roundHandler.GetRound)
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(auth.AdminMiddleware())
	{
		admin.POST("/rounds", roundHandler.CreateRound)
		admin.POST("/rounds/:id/scores", roundHandler.RecordScore)
		admin.POST("/rounds/:id/finalize", roundHandler.FinalizeRound)
		admin.GET("/rounds/unsettled", roundHandler.GetUnsettledRounds)
	}

	// PULP economy routes and jobs, registered only when the flag is on.
	// The flag is read once here at startup.
	var windowCycler *jobs.WindowCycler
	var sweeper *jobs.SettlementSweeper

	if cfg.Economy.Enabled {
		{
			api.POST("/predictions", predictionHandler.PlacePrediction)
			api.GET("/predictions", predictionHandler.GetMyPredictions)

			api.POST("/challenges", challengeHandler.IssueChallenge)
			api.GET("/challenges", challengeHandler.GetMyChallenges)
			api.POST("/challenges/:id/respond", challengeHandler.RespondToChallenge)

			api.GET("/advantages/catalog", advantageHandler.GetCatalog)
			api.GET("/advantages", advantageHandler.GetMyAdvantages)
			api.POST("/advantages/purchase", advantageHandler.PurchaseAdvantage)
			api.POST("/advantages/:id/use", advantageHandler.UseAdvantage)

			api.GET("/windows/current", windowHandler.GetCurrentWindow)
		}

		{
			admin.POST("/windows/open", windowHandler.OpenWindow)
			admin.POST("/windows/:id/lock", windowHandler.LockWindow)
			admin.POST("/windows/:id/close", windowHandler.CloseWindow)
		}

		if cfg.Windows.AutoCycle {
			windowCycler = jobs.NewWindowCycler(
				windowService,
				cfg.Windows.CycleInterval,
				cfg.Windows.OpenDuration,
				cfg.Windows.LockDuration,
			)
			if err := windowCycler.Start(); err != nil {
				log.Fatalf("Failed to start window cycler: %v", err)
			}
		}

		sweeper = jobs.NewSettlementSweeper(settlementService, challengeService, time.Minute, cfg.Economy.ChallengeExpiry)
		go sweeper.Start()
	} else {
		log.Println("PULP economy disabled, wager routes not registered")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if sweeper != nil {
		sweeper.Stop()
	}
	if windowCycler != nil {
		windowCycler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
