package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"pairchat/internal/adapter/api"
	"pairchat/internal/adapter/api/handler"
	apimiddleware "pairchat/internal/adapter/api/middleware"
	"pairchat/internal/adapter/api/router"
	"pairchat/internal/adapter/repository"
	"pairchat/internal/domain/policy"
	domainrepo "pairchat/internal/domain/repository"
	"pairchat/internal/infrastructure/firebase"
	"pairchat/internal/infrastructure/metrics"
	"pairchat/internal/infrastructure/ratelimit"
	"pairchat/internal/infrastructure/realtimedb"
	"pairchat/internal/infrastructure/trigger"
	"pairchat/internal/infrastructure/websocket"
	"pairchat/internal/usecase"
	"pairchat/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		rawStore       domainrepo.Datastore
		deadLetterRepo domainrepo.DeadLetterRepository
		authClient     *auth.Client
	)

	if cfg.UsesFirebase() {
		opt := credentials(cfg)

		firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{
			ProjectID:   cfg.FirebaseProject,
			DatabaseURL: cfg.FirebaseDatabaseURL,
		}, opt)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}

		authClient, err = firebaseApp.Auth(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Auth: %v", err)
		}

		dbClient, err := firebaseApp.Database(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Realtime Database: %v", err)
		}
		rawStore = realtimedb.NewFirebaseStore(dbClient)

		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()
		deadLetterRepo = repository.NewFirestoreDeadLetterRepository(firestoreClient, cfg.DeadLetterCollection)
	} else {
		log.Printf("Using in-memory datastore")
		rawStore = realtimedb.NewMemoryStore()
		deadLetterRepo = repository.NewMemoryDeadLetterRepository()
	}

	dispatcher := trigger.NewDispatcher(trigger.Options{
		MaxAttempts:    cfg.TriggerMaxAttempts,
		InitialBackoff: time.Duration(cfg.TriggerInitialBackoffMs) * time.Millisecond,
		DeadLetters:    deadLetterRepo,
	})
	store := trigger.NewObservedStore(rawStore, dispatcher)

	chatRepo := repository.NewTreeChatRepository(store)
	messageRepo := repository.NewTreeMessageRepository(store)
	userRepo := repository.NewTreeUserRepository(store)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.IsDevelopment())

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimitEnabled {
		rateLimiter = ratelimit.NewRateLimiter(ratelimit.DefaultLimits)
		rateLimiter.StartCleanupRoutine(ctx)
	}

	gatewayUseCase := usecase.NewGatewayUseCase(store, policy.New(), rateLimiter)
	chatUseCase := usecase.NewChatUseCase(gatewayUseCase, chatRepo)
	messageUseCase := usecase.NewMessageUseCase(store, messageRepo, chatRepo, userRepo)
	chatSyncUseCase := usecase.NewChatSyncUseCase(store, chatRepo, userRepo, cfg.FanoutConcurrency)
	userUseCase := usecase.NewUserUseCase(userRepo, firebaseAuthClient)

	usecase.RegisterTriggers(dispatcher, messageUseCase, chatSyncUseCase, wsManager)

	handler.Setup(gatewayUseCase, chatUseCase, store, deadLetterRepo)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(metrics.HTTPMetricsMiddleware())
	if rateLimiter != nil {
		e.Use(apimiddleware.RateLimit(rateLimiter))
	}

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(firebaseAuthClient, userUseCase)
	adminMiddleware := apimiddleware.NewAdminMiddleware(cfg.IsDevelopment())

	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.IsDevelopment())

	router.Setup(e, authMiddleware, adminMiddleware)
	router.SetupWebSocketRouter(e, wsHandler, authMiddleware)

	go func() {
		log.Printf("Starting server on port %s (%s backend)...", cfg.ServerPort, cfg.DatastoreBackend)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	dispatcher.Close()
	dispatcher.Wait()
}

// credentials prefers the inline service account JSON over the file path.
func credentials(cfg *config.Config) option.ClientOption {
	if cfg.FirebaseServiceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))
	}

	if _, err := os.Stat(cfg.FirebaseServiceAccountPath); err != nil {
		log.Fatalf("Service account file does not exist: %s", cfg.FirebaseServiceAccountPath)
	}

	log.Printf("Using Firebase service account from file: %s", cfg.FirebaseServiceAccountPath)
	return option.WithCredentialsFile(cfg.FirebaseServiceAccountPath)
}
