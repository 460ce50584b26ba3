package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/studentalliance/catalog-gateway/internal/config"
	"github.com/studentalliance/catalog-gateway/internal/editor"
	"github.com/studentalliance/catalog-gateway/internal/event"
	"github.com/studentalliance/catalog-gateway/internal/http"
	"github.com/studentalliance/catalog-gateway/internal/log"
	"github.com/studentalliance/catalog-gateway/internal/relay"
	"github.com/studentalliance/catalog-gateway/internal/remote"
	"github.com/studentalliance/catalog-gateway/internal/repository"
	"github.com/studentalliance/catalog-gateway/internal/store"
	"github.com/studentalliance/catalog-gateway/internal/storage/db"
	"github.com/studentalliance/catalog-gateway/internal/storage/mq"
	"github.com/studentalliance/catalog-gateway/internal/telemetry"
	"github.com/studentalliance/catalog-gateway/internal/view"
	"github.com/studentalliance/catalog-gateway/pkg/cmdutil"
	"github.com/studentalliance/catalog-gateway/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running gateway application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		HTTP     config.HTTP
		Relay    config.Relay
		Kafka    config.Kafka
		Otel     config.Otel
		Remote   config.Remote
		Store    config.Store
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	slotRepository := repository.NewSlotRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	productClient := remote.NewProductsClient(cfg.Remote)
	authClient := remote.NewAuthClient(cfg.Remote)
	uploadClient := remote.NewUploadClient(cfg.Remote)

	productStore := store.New(cfg.Store, logger, dbClient, slotRepository, outboxMsgRepository, productClient)
	if err := productStore.Load(ctx); err != nil {
		return fmt.Errorf("error loading product store: %w", err)
	}

	viewService := view.New(cfg.Store, productStore)
	editorService := editor.New(logger, v, uploadClient, productStore)

	slotListener := repository.NewSlotListener(pgxPool, logger)
	cleanupListener, err := slotListener.Run(ctx, productStore.HandleSlotChange)
	if err != nil {
		return fmt.Errorf("error running slot listener: %w", err)
	}
	defer cleanupListener()

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := event.New(logger, kafkaConsumer, productStore)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running event service: %w", err))
		}
		logger.InfoContext(ctx, "event service started")

		<-interruptChan

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
	})

	wg.Go(func() {
		svc := http.New(cfg.HTTP, logger, v, productStore, viewService, editorService, productClient, authClient)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Wait()

	return nil
}
