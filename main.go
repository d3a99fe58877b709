// File: ndako/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ndako/config"
	"ndako/cron"
	"ndako/database"
	listingRepoPkg "ndako/database/repository/listing"
	userRepoPkg "ndako/database/repository/user"
	"ndako/handlers"
	"ndako/middleware"
	"ndako/routes"
	"ndako/services/geocode"
	"ndako/services/listing"
	"ndako/services/search"
	"ndako/services/storage"
	"ndako/services/tasks"
	"ndako/services/user"
	"ndako/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	cloudinaryStorageService, err := storage.NewCloudinaryStorageService()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	listingRepo := listingRepoPkg.NewMongoListingRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()

	if err := listingRepoPkg.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure listing indexes: %v", err)
	}
	if err := userRepoPkg.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure user indexes: %v", err)
	}

	// background task queue.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer asynqClient.Close()
	enqueuer := tasks.NewEnqueuer(asynqClient)

	// services.
	geocoder := geocode.NewHTTPGeocoder(config.AppConfig.GeocodeBaseURL)

	searchService := search.NewService(
		listingRepo,
		utils.GetCacheClient(),
		config.AppConfig.DefaultVille,
		10*time.Minute,
	)

	listingService := &listing.Service{
		Repo:     listingRepo,
		Storage:  cloudinaryStorageService,
		Geocoder: geocoder,
		Queue:    enqueuer,
		Search:   searchService,
	}

	userService := &user.Service{
		Repo: userRepo,
	}

	cron.InitGeocodeWorker(listingRepo, geocoder, searchService.Invalidate)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		UserRepo: userRepo,
		Auth:     handlers.NewAuthHandler(userService),
		Listing:  handlers.NewListingHandler(listingService, searchService),
		Search:   handlers.NewSearchHandler(searchService),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
