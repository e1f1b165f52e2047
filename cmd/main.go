package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"devdialogue/backend/internal/api/handler"
	"devdialogue/backend/internal/auth"
	"devdialogue/backend/internal/chathub"
	"devdialogue/backend/internal/config"
	"devdialogue/backend/internal/models"
	"devdialogue/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.PrivateMessage{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupMessage{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting DevDialogue Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg := config.Load()

	db, rdb := setupDependencies(cfg)
	store := storage.NewStorageService(db, rdb)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	// One presence registry per process, shared by both namespaces. Room
	// broadcast is the delivery path; the registry backs the direct-emit
	// fallback and disconnect bookkeeping.
	registry := chathub.NewRegistry()

	chatHub := chathub.NewHub("chat", registry, store, chathub.RoomDispatcher{})
	groupHub := chathub.NewHub("groups", registry, store, chathub.RoomDispatcher{})

	chatNS := chathub.NewChatNamespace(chatHub, store)
	groupNS := chathub.NewGroupNamespace(groupHub, store)

	go chatHub.Run()
	go groupHub.Run()
	chatHub.StartRelayListener()
	groupHub.StartRelayListener()

	r := gin.Default()
	h := handler.NewHandler(store, tokens, chatNS, groupNS)
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           cfg.Addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
