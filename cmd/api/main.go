package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"valluvarvaasal/internal/adapter/api"
	"valluvarvaasal/internal/adapter/api/handler"
	apimiddleware "valluvarvaasal/internal/adapter/api/middleware"
	"valluvarvaasal/internal/adapter/api/router"
	"valluvarvaasal/internal/adapter/repository"
	"valluvarvaasal/internal/infrastructure/firebase"
	"valluvarvaasal/internal/infrastructure/presence"
	"valluvarvaasal/internal/infrastructure/storage"
	"valluvarvaasal/internal/infrastructure/websocket"
	"valluvarvaasal/internal/usecase"
	"valluvarvaasal/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption
	credentialsPath := ""

	// Service account JSON from the environment wins (for production);
	// fall back to a file path for local development.
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if credentialsPath = os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); credentialsPath != "" {
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", credentialsPath)
		}
		log.Printf("Using Firebase service account from file: %s", credentialsPath)
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	fbAuth, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, credentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()

	tracker := presence.NewTracker(rdb, time.Duration(cfg.PresenceTTLSecond)*time.Second)

	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	adminChatRepo := repository.NewFirestoreAdminChatRepository(firestoreClient)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)

	authClient := firebase.NewAuthClient(fbAuth)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, storageClient, tracker, notificationRepo)
	rosterUseCase := usecase.NewRosterUseCase(chatRepo, userRepo)
	lifecycleUseCase := usecase.NewLifecycleUseCase(chatRepo, userRepo)
	supportUseCase := usecase.NewSupportUseCase(chatRepo, tracker, notificationRepo)
	adminChatUseCase := usecase.NewAdminChatUseCase(adminChatRepo, chatRepo, userRepo, tracker, notificationRepo)

	pageSize := int(cfg.RosterPageSize)

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	router.Setup(e, router.Handlers{
		Chat:      handler.NewChatHandler(chatUseCase, rosterUseCase, pageSize),
		Lifecycle: handler.NewLifecycleHandler(lifecycleUseCase),
		Support:   handler.NewSupportHandler(supportUseCase),
		AdminChat: handler.NewAdminChatHandler(adminChatUseCase),
		WebSocket: handler.NewWebSocketHandler(wsManager, authClient, chatUseCase, adminChatUseCase, rosterUseCase, tracker, pageSize),
		Health:    handler.NewHealthHandler(),
	}, authMiddleware)

	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
