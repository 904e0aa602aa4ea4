package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sparkmeet/sparkmeet-api/internal/config"
	"github.com/sparkmeet/sparkmeet-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/sparkmeet/sparkmeet-api/internal/infrastructure/jwt"
	"github.com/sparkmeet/sparkmeet-api/internal/infrastructure/rekognition"
	redisinfra "github.com/sparkmeet/sparkmeet-api/internal/infrastructure/redis"
	s3infra "github.com/sparkmeet/sparkmeet-api/internal/infrastructure/s3"
	"github.com/sparkmeet/sparkmeet-api/internal/infrastructure/sns"
	transporthttp "github.com/sparkmeet/sparkmeet-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	// Redis holds pending verification codes and session records.
	redisClient, err := redisinfra.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	cache := redisinfra.NewCache(redisClient)

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	smsSender, err := sns.NewSender(cfg)
	if err != nil {
		log.Fatalf("sns sender: %v", err)
	}

	faceDetector, err := rekognition.NewDetector(cfg)
	if err != nil {
		log.Fatalf("rekognition detector: %v", err)
	}

	deps := &transporthttp.Deps{
		Cache:        cache,
		UserRepo:     dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		ProfileRepo:  dynamo.NewProfileRepo(dynamoClient, cfg.DynamoTables.Profiles),
		S3Store:      s3Store,
		SMSSender:    smsSender,
		FaceDetector: faceDetector,
		JWTProvider:  jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
