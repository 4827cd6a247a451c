package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/fekuna/storefront-inventory-service/config"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/broker"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/cache"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/i18n"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/metrics"
	appmw "github.com/fekuna/storefront-inventory-service/internal/pkg/middleware"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/response"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/search"

	attrH "github.com/fekuna/storefront-inventory-service/internal/attribute/handler"
	attrUCPkg "github.com/fekuna/storefront-inventory-service/internal/attribute/usecase"
	catH "github.com/fekuna/storefront-inventory-service/internal/category/handler"
	catUCPkg "github.com/fekuna/storefront-inventory-service/internal/category/usecase"
	invH "github.com/fekuna/storefront-inventory-service/internal/inventory/handler"
	invUCPkg "github.com/fekuna/storefront-inventory-service/internal/inventory/usecase"
	prodH "github.com/fekuna/storefront-inventory-service/internal/product/handler"
	prodUCPkg "github.com/fekuna/storefront-inventory-service/internal/product/usecase"
	saleH "github.com/fekuna/storefront-inventory-service/internal/sale/handler"
	saleListenerPkg "github.com/fekuna/storefront-inventory-service/internal/sale/listener"
	saleUCPkg "github.com/fekuna/storefront-inventory-service/internal/sale/usecase"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		ServiceName:       "storefront-inventory",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Translator and metrics
	translator, err := i18n.New(cfg.I18n.DefaultLang)
	if err != nil {
		appLogger.Fatal("Could not load locales", zap.Error(err))
	}
	renderer := response.NewRenderer(translator, appLogger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(cfg.Metrics.Prefix, registry)

	// 4. Repositories
	repos, closeStore, err := openStore(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Could not open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	// 5. Optional infrastructure
	var redisClient *cache.RedisClient
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, caching and receive locks disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	var esClient *search.Client
	if len(cfg.Elastic.Addresses) > 0 {
		esClient, err = search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, product search uses the database", zap.Error(err))
			esClient = nil
		} else {
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	var (
		kafkaConsumer *broker.KafkaConsumer
		kafkaProducer *broker.KafkaProducer
	)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaConsumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topics:  []string{cfg.Kafka.OrderTopic, cfg.Kafka.StockOrderTopic},
			GroupID: cfg.Kafka.GroupID,
		})
		defer kafkaConsumer.Close()
		kafkaProducer = broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.StockOrderTopic)
		defer kafkaProducer.Close()
		appLogger.Info("Kafka configured",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("order_topic", cfg.Kafka.OrderTopic),
			zap.String("stock_order_topic", cfg.Kafka.StockOrderTopic),
		)
	}

	// 6. Use cases
	catUC := catUCPkg.NewCategoryUseCase(repos.categories, appLogger)
	attrUC := attrUCPkg.NewAttributeUseCase(repos.attributes, repos.inventory, redisClient, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(repos.products, redisClient, esClient, cfg.Elastic.Index, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(repos.inventory, repos.attributes, appMetrics, appLogger)

	deps := saleUCPkg.Dependencies{
		Repo:       repos.sales,
		Products:   prodUC,
		Attributes: attrUC,
		Ledger:     invUC,
		Metrics:    appMetrics,
		Logger:     appLogger,
	}
	if redisClient != nil {
		deps.Locker = redisClient
	}
	if kafkaProducer != nil {
		deps.Publisher = kafkaProducer
	}
	saleUC := saleUCPkg.NewSaleUseCase(deps)

	// 7. HTTP API
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(appmw.AccessLog(appLogger))
	e.Use(appmw.Metrics(appMetrics))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := e.Group("/api/v1")
	catH.NewCategoryHandler(catUC, renderer, appLogger).Register(api)
	attrH.NewAttributeHandler(attrUC, renderer, appLogger).Register(api.Group("/attributes"))
	prodH.NewProductHandler(prodUC, renderer, appLogger).Register(api.Group("/products"))
	invH.NewInventoryHandler(invUC, renderer, appLogger).Register(api)
	saleH.NewSaleHandler(saleUC, renderer, appLogger).Register(api)

	// 8. gRPC health
	grpcPort := cfg.Server.GRPCPort
	if !strings.HasPrefix(grpcPort, ":") {
		grpcPort = ":" + grpcPort
	}
	lis, err := net.Listen("tcp", grpcPort)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", grpcPort), zap.Error(err))
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	// 9. Run until signalled
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.Server.HTTPPort))
		if err := e.Start(cfg.Server.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		appLogger.Info("Starting gRPC health server", zap.String("port", grpcPort))
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		return grpcServer.Serve(lis)
	})

	if kafkaConsumer != nil {
		saleListener := saleListenerPkg.NewSaleListener(kafkaConsumer, saleUC, appLogger)
		if redisClient != nil {
			saleListener.WithDeduper(redisClient)
		}
		g.Go(func() error {
			saleListener.Start(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		err := e.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
		return err
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("server stopped with error", zap.Error(err))
		return
	}
	appLogger.Info("Server stopped")
}
