package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-pos-backend/internal/ai"
	"go-pos-backend/internal/handler"
	"go-pos-backend/internal/middleware"
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/internal/ws"
	"go-pos-backend/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (use a dedicated migration tool in production)
	db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Customer{},
		&model.Sale{},
		&model.SaleItem{},
		&model.StockTransaction{},
		&model.Conversation{},
		&model.Message{},
	)

	// 3. Seed default admin user
	seedAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	repos := repository.NewRepos(db)
	txManager := repository.NewTxManager(db)

	authService := service.NewAuthService(repos.Users)
	catalogService := service.NewCatalogService(repos.Products, repos.SaleItems, repos.StockTransactions, wsHub)
	stockService := service.NewStockService(repos.StockTransactions, txManager, wsHub)
	saleService := service.NewSaleService(repos.Sales, txManager, wsHub)
	reportingService := service.NewReportingService(catalogService, repos.Sales, repos.StockTransactions)
	agent := ai.NewAgent(os.Getenv("OPENAI_API_KEY"))
	assistantService := service.NewAssistantService(
		repos.Conversations, repos.Messages,
		catalogService, stockService, saleService, agent,
	)

	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(catalogService, stockService)
	stockHandler := handler.NewStockHandler(stockService)
	saleHandler := handler.NewSaleHandler(saleService)
	customerHandler := handler.NewCustomerHandler(repos.Customers)
	dashboardHandler := handler.NewDashboardHandler(reportingService)
	assistantHandler := handler.NewAssistantHandler(assistantService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "POS Backend v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(repos.Users))

	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/register", middleware.RequireRole(model.RoleAdmin), authHandler.Register)

	// Dashboard
	protected.Get("/dashboard/stats", dashboardHandler.GetStats)
	protected.Get("/dashboard/stock-movement", dashboardHandler.GetStockMovement)

	// Products
	protected.Get("/products", productHandler.GetProducts)
	protected.Get("/products/low-stock", productHandler.GetLowStock)
	protected.Get("/products/sku/:sku", productHandler.GetProductBySKU)
	protected.Get("/products/:id", productHandler.GetProduct)
	protected.Post("/products", middleware.RequireRole(model.RoleAdmin), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequireRole(model.RoleAdmin), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequireRole(model.RoleAdmin), productHandler.DeleteProduct)

	// Stock ledger
	protected.Get("/stock/transactions", stockHandler.GetLedger)
	protected.Get("/stock/movement", stockHandler.GetStockMovement)
	protected.Get("/stock/:id", stockHandler.GetCurrentStock)
	protected.Post("/stock/adjustments", middleware.RequireRole(model.RoleAdmin), stockHandler.AdjustStock)

	// Sales
	protected.Get("/sales", saleHandler.GetSales)
	protected.Get("/sales/stats/today", saleHandler.GetTodayStats)
	protected.Get("/sales/stats/range", saleHandler.GetRangeStats)
	protected.Get("/sales/number/:number", saleHandler.GetSaleByNumber)
	protected.Get("/sales/:id", saleHandler.GetSale)
	protected.Post("/sales", saleHandler.ProcessSale)
	protected.Post("/sales/:id/cancel", middleware.RequireRole(model.RoleAdmin), saleHandler.CancelSale)

	// Customers
	protected.Get("/customers", customerHandler.GetCustomers)
	protected.Get("/customers/:id", customerHandler.GetCustomer)
	protected.Post("/customers", customerHandler.CreateCustomer)
	protected.Put("/customers/:id", customerHandler.UpdateCustomer)
	protected.Delete("/customers/:id", middleware.RequireRole(model.RoleAdmin), customerHandler.DeleteCustomer)

	// Assistant
	protected.Post("/assistant/conversations", assistantHandler.CreateConversation)
	protected.Get("/assistant/conversations", assistantHandler.GetConversations)
	protected.Get("/assistant/conversations/:id", assistantHandler.GetConversation)
	protected.Delete("/assistant/conversations/:id", assistantHandler.DeleteConversation)
	protected.Post("/assistant/conversations/:id/messages", assistantHandler.SendMessage)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register(c)
		defer wsHub.Unregister(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedAdmin creates the default admin user if it doesn't exist.
func seedAdmin(db *gorm.DB) {
	userRepo := repository.NewUserRepo(db)

	if _, err := userRepo.FindByEmail("admin@example.com"); err == nil {
		return
	}

	admin := &model.User{
		Email:    "admin@example.com",
		FullName: "Administrator",
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword("admin123"); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}
	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
		return
	}
	log.Println("Admin user created: admin@example.com / admin123")
}
