package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go-scanify-pos/internal/handler"
	"go-scanify-pos/internal/middleware"
	"go-scanify-pos/internal/model"
	"go-scanify-pos/internal/repository"
	"go-scanify-pos/internal/service"
	"go-scanify-pos/internal/ws"
	"go-scanify-pos/pkg/database"
	"go-scanify-pos/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	if err := logger.Init(os.Getenv("ENV")); err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()
	zlog := logger.Get()

	// 2. Setup Storage
	db := database.ConnectDB()
	db.AutoMigrate(&model.Staff{}, &model.ProductType{}, &model.ProductItem{}, &model.Bill{}, &model.BillItem{})

	rdb := database.ConnectRedis()

	// 3. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	billRepo := repository.NewBillRepo(db)
	staffRepo := repository.NewStaffRepo(db)
	pendingStore := repository.NewPendingOrderStore(rdb)

	gateway := service.NewPaymentGateway(service.GatewayConfig{
		BaseURL:   getEnv("PAYMENT_GATEWAY_URL", "https://api.razorpay.com"),
		KeyID:     os.Getenv("PAYMENT_KEY_ID"),
		KeySecret: os.Getenv("PAYMENT_KEY_SECRET"),
	})
	pendingTTL := envMinutes("PENDING_ORDER_TTL_MINUTES", 30)

	productService := service.NewProductService(productRepo)
	billingService := service.NewBillingService(billRepo, productRepo, staffRepo, pendingStore, gateway, pendingTTL, zlog)
	paymentService := service.NewPaymentService(billRepo, productRepo, pendingStore, os.Getenv("PAYMENT_KEY_SECRET"), zlog)

	productHandler := handler.NewProductHandler(productService)
	billHandler := handler.NewBillHandler(billingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	// 4. Setup scan-to-bill relay
	registry := ws.NewRegistry(zlog)
	hub := ws.NewHub(registry, productService, zlog)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Scanify POS v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 6. Routes (token issuance lives in the external auth service; we
	// only validate what it minted)
	api := app.Group("/api/v1")
	protected := api.Group("", middleware.RequireAuth(staffRepo))

	protected.Get("/products/barcode/:barcode", productHandler.LookupByBarcode)

	protected.Post("/bills", billHandler.Finalize)
	protected.Get("/bills", billHandler.GetBills)
	protected.Get("/bills/:id", billHandler.GetBill)

	protected.Post("/payments/verify", paymentHandler.Verify)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(hub.HandleConn))

	// 7. Pending-order expiry sweeper
	stopSweeper := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := billingService.ExpireStalePending(pendingTTL); err != nil {
					zlog.Error("pending bill sweep failed", zap.Error(err))
				}
			case <-stopSweeper:
				return
			}
		}
	}()

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "4000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	close(stopSweeper)
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envMinutes(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return time.Duration(fallback) * time.Minute
}
