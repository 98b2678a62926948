package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"ventamart/internal/caching"
	"ventamart/internal/config"
	"ventamart/internal/events"
	"ventamart/internal/handlers"
	"ventamart/internal/jobs"
	"ventamart/internal/jobs/background"
	"ventamart/internal/pricing"
	"ventamart/internal/repositories"
	"ventamart/internal/services"
	"ventamart/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Database connection pool
	pool, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Cache service
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, os.Getenv("REDIS_PASSWORD"), 0)

	// Object storage is optional; the document endpoint degrades to 503 without it
	var minioSvc services.MinioService
	if cfg.MinioEndpoint != "" {
		minioSvc, err = services.NewMinioService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("Failed to initialize MinIO service: %v", err)
		}
	} else {
		log.Println("MINIO_ENDPOINT not set, document storage disabled")
	}

	// Event publisher
	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.ServiceName, 1024)
	} else {
		log.Println("KAFKA_BROKERS not set, order events disabled")
		publisher = events.NoopPublisher{}
	}
	defer publisher.Close()

	// Repositories
	customerRepo := repositories.NewCustomerRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)

	// Services
	customerSvc := services.NewCustomerService(customerRepo, cacheSvc)
	productSvc := services.NewProductService(productRepo, cacheSvc)
	reconciler := services.NewStockReconciler(productRepo, cacheSvc)
	engine := pricing.NewEngine(cfg.Pricing.TaxTiers)
	orderSvc := services.NewOrderService(orderRepo, customerSvc, productSvc, engine, reconciler, publisher)

	// Background jobs
	lowStockSvc := jobs.NewLowStockService(productRepo, cacheSvc)
	scheduler, err := background.NewJobScheduler(lowStockSvc, cfg.Jobs.LowStockThreshold, cfg.LowStockInterval())
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Handlers
	customerHandlers := handlers.NewCustomerHandlers(customerSvc)
	productHandlers := handlers.NewProductHandlers(productSvc)
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	documentHandlers := handlers.NewDocumentHandlers(orderSvc, minioSvc)
	lowStockHandlers := handlers.NewLowStockHandlers(lowStockSvc, cfg.Jobs.LowStockThreshold)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, scheduler)

	// Echo instance
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/detailed", healthHandlers.DetailedHealthCheck)

	// API routes
	v1 := e.Group("/v1")

	// Customer routes
	v1.GET("/customers", customerHandlers.ListCustomers)
	v1.POST("/customers", customerHandlers.CreateCustomer)
	v1.GET("/customers/identification/:identification", customerHandlers.GetCustomerByIdentification)
	v1.GET("/customers/name/:name", customerHandlers.GetCustomerByName)
	v1.PUT("/customers/identification/:identification", customerHandlers.UpdateCustomerByIdentification)
	v1.GET("/customers/:id", customerHandlers.GetCustomer)
	v1.PUT("/customers/:id", customerHandlers.UpdateCustomer)
	v1.DELETE("/customers/:id", customerHandlers.DeleteCustomer)

	// Product routes
	v1.GET("/products", productHandlers.ListProducts)
	v1.POST("/products", productHandlers.CreateProduct)
	v1.GET("/products/search", productHandlers.SearchProducts)
	v1.GET("/products/low-stock", lowStockHandlers.GetLowStockReport)
	v1.POST("/products/lookup", productHandlers.LookupProducts)
	v1.GET("/products/code/:code", productHandlers.GetProductByCode)
	v1.GET("/products/barcode/:barcode", productHandlers.GetProductByBarcode)
	v1.GET("/products/description/:description", productHandlers.GetProductByDescription)
	v1.PUT("/products/stock/:code", productHandlers.UpdateProductStock)
	v1.GET("/products/:id", productHandlers.GetProduct)
	v1.PUT("/products/:id", productHandlers.UpdateProduct)
	v1.DELETE("/products/:id", productHandlers.DeleteProduct)

	// Order routes
	v1.GET("/orders", orderHandlers.GetOrders)
	v1.POST("/orders", orderHandlers.CreateOrder)
	v1.GET("/orders/:id", orderHandlers.GetOrder)
	v1.PUT("/orders/:id", orderHandlers.UpdateOrder)
	v1.DELETE("/orders/:id", orderHandlers.DeleteOrder)
	v1.POST("/orders/:id/document", documentHandlers.GenerateOrderDocument)

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server")
		if err := e.Shutdown(context.Background()); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Ventamart server v%s starting on %s", version, cfg.HTTPAddr)
	if err := e.Start(cfg.HTTPAddr); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
