package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/cache"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/config"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/courier"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/fulfillment"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/inventory"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/kafka"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/logger"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/orders"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository/postgresql"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/server"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/shipment"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zapLogger := logger.New()
	defer func() {
		_ = zapLogger.Sync()
	}()

	cfg := config.Load()

	database, err := db.NewDb(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("Database init error: %v", err)
	}
	defer database.GetPool().Close()

	orderRepo := postgresql.NewOrderRepo(database)
	variantRepo := postgresql.NewVariantRepo(database)
	historyRepo := postgresql.NewHistoryRepo(database)
	shipmentRepo := postgresql.NewShipmentRepo(database)
	userRepo := postgresql.NewUserRepo(database)
	outboxRepo := postgresql.NewOutboxTaskRepo()

	orderService := orders.NewService(database, orderRepo, historyRepo, outboxRepo, cfg.Kafka.Topic, zapLogger)

	ledger := inventory.NewLedger(orderRepo, variantRepo, zapLogger)
	orderService.OnCancel(func(ctx context.Context, order *repository.Order) error {
		return ledger.RestoreForOrder(ctx, order.ID)
	})

	orderCache := cache.NewOrderCache(orderRepo)
	if err := orderCache.LoadInitialData(ctx); err != nil {
		log.Printf("WARNING: failed to warm order cache: %v", err)
	}

	cachedOrders := &cachingOrderService{service: orderService, cache: orderCache}

	gateway := courier.NewClient(cfg.Courier, nil, zapLogger)

	shipmentService := shipment.NewService(gateway, shipmentRepo, orderRepo, cachedOrders, shipment.Config{
		OriginCity:     cfg.Courier.OriginCity,
		LocalAreaNames: cfg.Courier.LocalAreaNames,
		ServiceCode:    cfg.Courier.ServiceCode,
	}, zapLogger)

	orchestrator := fulfillment.NewOrchestrator(shipmentService, zapLogger)

	producer := kafka.NewKafkaProducer(cfg.Kafka.Brokers)
	defer func() {
		if err := producer.Close(); err != nil {
			log.Printf("Error closing Kafka producer: %v", err)
		}
	}()

	publisher := kafka.NewPublisher(database, outboxRepo, producer, kafka.PublisherConfig{
		PollInterval: 2 * time.Second,
		BatchSize:    50,
		MaxAttempts:  5,
	})

	auditSink := server.NewOutboxAuditSink(database, outboxRepo, cfg.Kafka.AuditTopic)
	srv := server.New(orchestrator, shipmentService, cachedOrders, orderCache, userRepo, auditSink, zapLogger)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return srv.Run(groupCtx, cfg.HTTPPort)
	})

	group.Go(func() error {
		publisher.Run(groupCtx)
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		publisher.Shutdown()
		return srv.Shutdown(shutdownCtx)
	})

	log.Printf("Fulfillment service started on port %s", cfg.HTTPPort)

	if err := group.Wait(); err != nil {
		log.Fatalf("Service exited with error: %v", err)
	}

	log.Println("Service gracefully stopped")
}

// cachingOrderService writes status updates through to the in-memory cache
// so subsequent reads see the new status without a round trip.
type cachingOrderService struct {
	service *orders.Service
	cache   *cache.OrderCache
}

func (c *cachingOrderService) Get(ctx context.Context, orderID string) (*repository.Order, error) {
	return c.service.Get(ctx, orderID)
}

func (c *cachingOrderService) History(ctx context.Context, orderID string) ([]*repository.HistoryEntry, error) {
	return c.service.History(ctx, orderID)
}

func (c *cachingOrderService) UpdateStatus(ctx context.Context, orderID string, upd orders.StatusUpdate) (*repository.Order, error) {
	updated, err := c.service.UpdateStatus(ctx, orderID, upd)
	if err != nil {
		return nil, err
	}
	c.cache.Set(updated)
	return updated, nil
}
