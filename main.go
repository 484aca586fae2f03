package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gestion/auth-api/internal/config"
	"github.com/gestion/auth-api/internal/crypto"
	"github.com/gestion/auth-api/internal/db"
	"github.com/gestion/auth-api/internal/handler"
	"github.com/gestion/auth-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	accessTTL, err := time.ParseDuration(cfg.Auth.AccessTTL)
	if err != nil {
		log.Fatalf("invalid JWT_ACCESS_TTL: %v", err)
	}
	refreshTTL, err := time.ParseDuration(cfg.Auth.RefreshTTL)
	if err != nil {
		log.Fatalf("invalid REFRESH_TOKEN_TTL: %v", err)
	}

	// Weak keys are refused at startup, never at request time.
	signer, err := service.NewTokenSigner(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Audience, accessTTL)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if cfg.Crypto.EncryptionKey != "" {
		if _, err := crypto.NewEncryptor([]byte(cfg.Crypto.EncryptionKey)); err != nil {
			log.Fatalf("invalid ENCRYPTION_KEY: %v", err)
		}
	}

	ctx := context.Background()
	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("postgres init failed: %v", err)
	}
	defer pool.Close()

	repo := &db.Postgres{Pool: pool}
	if err := repo.EnsureAuthSchema(ctx); err != nil {
		log.Fatalf("schema init failed: %v", err)
	}

	store := service.NewRefreshTokenStore(repo, refreshTTL)
	svc := service.NewAuthService(repo, service.BcryptHasher{}, signer, store)
	authHandler := handler.NewAuthHandler(svc)

	router := gin.Default()
	if cfg.Server.CORSOrigins != "" {
		router.Use(handler.CORSMiddleware(strings.Split(cfg.Server.CORSOrigins, ","), true))
	}

	router.GET("/health", handler.Health)

	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.GET("/me", handler.AuthMiddleware(signer), authHandler.Me)
	}

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
