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
	"github.com/kusina-api/internal/application/notification"
	"github.com/kusina-api/internal/application/realtime"
	"github.com/kusina-api/internal/application/verification"
	"github.com/kusina-api/internal/config"
	"github.com/kusina-api/internal/infrastructure/dynamo"
	"github.com/kusina-api/internal/infrastructure/google"
	jwtinfra "github.com/kusina-api/internal/infrastructure/jwt"
	s3infra "github.com/kusina-api/internal/infrastructure/s3"
	"github.com/kusina-api/internal/infrastructure/smtp"
	"github.com/kusina-api/internal/infrastructure/sns"
	transporthttp "github.com/kusina-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(context.Background(), cfg)
	if err != nil {
		log.Fatalf("DynamoDB client: %v", err)
	}
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	s3Store := s3infra.NewStore(s3infra.NewClient(cfg), cfg)

	// SNS SMS sender (optional, order status texts are skipped without it).
	var smsSender sns.SMSSender
	if cfg.SMSEnabled {
		if sender, err := sns.NewSender(cfg); err == nil {
			smsSender = sender
		} else {
			log.Printf("WARN: SNS sender not available: %v", err)
		}
	}

	dispatcher := notification.NewDispatcher(
		smtp.NewMailer(cfg),
		dynamo.NewDeadLetterRepo(dynamoClient, cfg.DynamoTables.DeadLetters),
		notification.WithRetries(cfg.MailRetries),
		notification.WithTimeout(cfg.MailTimeout),
		notification.WithRetention(cfg.DeadLetterRetention),
	)

	codes := verification.NewStores(verification.WithTTL(cfg.VerificationTTL))
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go verification.RunSweeper(sweepCtx, cfg.VerificationSweep, codes.Sweepables()...)

	hub := realtime.NewHub()

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		OrderRepo:   dynamo.NewOrderRepo(dynamoClient, cfg.DynamoTables.Orders),
		VoucherRepo: dynamo.NewVoucherRepo(dynamoClient, cfg.DynamoTables.Vouchers),
		MenuRepo:    dynamo.NewMenuRepo(dynamoClient, cfg.DynamoTables.MenuItems),
		SupportRepo: dynamo.NewSupportRepo(dynamoClient, cfg.DynamoTables.SupportTickets),
		HoursRepo:   dynamo.NewStoreHoursRepo(dynamoClient, cfg.DynamoTables.StoreHours),
		ImageStore:  s3Store,
		SMSSender:   smsSender,
		Mail:        dispatcher,
		Google:      google.NewVerifier(cfg.GoogleClientID),
		JWTProvider: jwtProvider,
		Codes:       codes,
		Hub:         hub,
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
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	stopSweeper()
	log.Println("Waiting for pending emails...")
	mailCtx, mailCancel := context.WithTimeout(context.Background(), cfg.MailTimeout)
	defer mailCancel()
	if err := dispatcher.WaitContext(mailCtx); err != nil {
		log.Printf("pending emails abandoned: %v", err)
	}
	log.Println("Server stopped")
}
