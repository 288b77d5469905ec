package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"course-marketplace/internal/client"
	"course-marketplace/internal/config"
	"course-marketplace/internal/events"
	"course-marketplace/internal/logger"
	"course-marketplace/internal/metrics"
	"course-marketplace/internal/model"
	"course-marketplace/internal/repository"
	"course-marketplace/internal/server"
	"course-marketplace/internal/service"
	"course-marketplace/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the checkout sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg *config.Config) error {
	log := logger.New(cfg.Log, os.Stdout)
	slog.SetDefault(log)

	db, err := client.InitDBClient(cfg.Database)
	if err != nil {
		return err
	}
	if err := client.AutoMigrate(db); err != nil {
		return err
	}

	paymentClient, err := client.NewPaymentClient(cfg)
	if err != nil {
		return err
	}

	var media client.MediaClient
	if cfg.Cloudinary.CloudName != "" {
		media, err = client.NewCloudinaryClient(&cfg.Cloudinary)
		if err != nil {
			return err
		}
	} else {
		log.Warn("CLOUDINARY_CLOUD_NAME not set, course image uploads are disabled")
	}

	publisher := events.NewNopPublisher()
	if cfg.Kafka.Enabled() {
		publisher, err = events.NewKafkaPublisher(cfg.Kafka, log)
		if err != nil {
			return err
		}
	}
	defer publisher.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	courseRepo := repository.NewCourseRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	checkoutRepo := repository.NewCheckoutRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	tokens := service.NewTokenService(&cfg.Auth)
	catalog := service.NewCatalogService(courseRepo, media, log)
	gateway := service.NewPaymentGateway(paymentClient, cfg.Payment.Timeout, collector, log)

	services := server.Services{
		Tokens:    tokens,
		Users:     service.NewAccountService(model.RoleUser, repository.NewAccountRepository(db, model.RoleUser), tokens),
		Admins:    service.NewAccountService(model.RoleAdmin, repository.NewAccountRepository(db, model.RoleAdmin), tokens),
		Catalog:   catalog,
		Purchases: service.NewPurchaseService(catalog, purchaseRepo, checkoutRepo, gateway, cfg.Payment.Currency, collector, log),
		Orders:    service.NewOrderService(db, orderRepo, purchaseRepo, checkoutRepo, publisher, cfg.Order, collector, log),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	sweeper := worker.NewCheckoutSweeper(checkoutRepo, cfg.Checkout, collector, log)
	if err := sweeper.Start(ctx); err != nil {
		return err
	}

	srv := server.NewServer(cfg, services, reg, log)
	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", slog.String("addr", serverAddr), slog.String("payment_provider", paymentClient.Name()))
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("signal received, starting graceful shutdown")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", slog.Any("error", err))
	}
	sweeper.Stop(shutdownCtx)

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("shutdown complete")
	return nil
}
