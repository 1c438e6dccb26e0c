// Package server assembles the HTTP router from services and handlers.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"kopilka/internal/config"
	"kopilka/internal/confirm"
	_ "kopilka/internal/docs" // swagger docs
	"kopilka/internal/export"
	"kopilka/internal/handlers"
	"kopilka/internal/middleware"
	"kopilka/internal/services"
)

// Options carries everything the router needs beyond the database.
type Options struct {
	JWTSecret       string
	ServiceAPIKey   string
	DefaultCurrency string
	InviteTTL       time.Duration
	LeaveConfirmTTL time.Duration

	// Parser backs POST /transactions/parse. Nil makes that route report
	// an upstream failure.
	Parser services.TextParser
	// Archiver is nil when exports are not archived.
	Archiver export.Archiver
}

// OptionsFromConfig copies the router settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		JWTSecret:       cfg.JWTSecret,
		ServiceAPIKey:   cfg.ServiceAPIKey,
		DefaultCurrency: cfg.DefaultCurrency,
		InviteTTL:       cfg.InviteTTL,
		LeaveConfirmTTL: cfg.LeaveConfirmTTL,
	}
}

// NewRouter wires services, handlers and middleware into a gin engine.
func NewRouter(db *gorm.DB, opts Options) *gin.Engine {
	householdService := services.NewHouseholdService(db, opts.DefaultCurrency)
	inviteService := services.NewInviteService(db, opts.InviteTTL)
	categoryService := services.NewCategoryService(db)
	budgetService := services.NewBudgetService(db, categoryService)
	transactionService := services.NewTransactionService(db, categoryService, opts.Parser)
	reminderService := services.NewReminderService(db, categoryService)
	reportService := services.NewReportService(db)
	auditService := services.NewAuditService(db)

	householdHandler := handlers.NewHouseholdHandler(householdService, inviteService, auditService, confirm.NewStore(opts.LeaveConfirmTTL))
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	reminderHandler := handlers.NewReminderHandler(reminderService, auditService)
	reportHandler := handlers.NewReportHandler(reportService, opts.Archiver)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-User-Identity")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Operator routes act across households and need the service key.
	admin := v1.Group("/admin")
	admin.Use(middleware.ServiceKeyAuth(opts.ServiceAPIKey))
	admin.GET("/reminders/due", reminderHandler.AllDueReminders)
	admin.POST("/households/:id/categories/normalize", categoryHandler.NormalizeCategories)

	protected := v1.Group("/")
	protected.Use(middleware.Identity(opts.JWTSecret, opts.ServiceAPIKey))
	protected.Use(middleware.HouseholdContext(householdService))

	protected.PUT("/me", householdHandler.SetDisplayName)

	household := protected.Group("/household")
	household.GET("", householdHandler.GetHousehold)
	household.PUT("", householdHandler.RenameHousehold)
	household.PUT("/currency", householdHandler.SetCurrency)
	household.POST("/invites", householdHandler.CreateInvite)
	household.POST("/join", householdHandler.Join)
	household.POST("/leave", householdHandler.Leave)
	household.GET("/leave", householdHandler.LeaveStatus)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.PUT("/rename", categoryHandler.RenameCategory)
	categories.POST("/merge", categoryHandler.MergeCategories)
	categories.DELETE("/:name", categoryHandler.DeleteCategory)

	budgets := protected.Group("/budgets")
	budgets.PUT("", budgetHandler.SetBudget)
	budgets.GET("/status", budgetHandler.GetBudgetStatus)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.POST("/parse", transactionHandler.ParseTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.PATCH("/last", transactionHandler.CorrectLastTransaction)
	transactions.DELETE("/last", transactionHandler.DeleteLastTransaction)
	transactions.PUT("/:id/category", transactionHandler.ReassignCategory)

	reminders := protected.Group("/reminders")
	reminders.POST("", reminderHandler.CreateReminder)
	reminders.GET("", reminderHandler.ListReminders)
	reminders.GET("/due", reminderHandler.DueReminders)
	reminders.POST("/:id/paid", reminderHandler.MarkPaid)

	reports := protected.Group("/reports")
	reports.GET("/summary", reportHandler.GetSummary)
	reports.GET("/balance", reportHandler.GetBalance)
	reports.GET("/members", reportHandler.GetMembers)
	reports.GET("/shops", reportHandler.GetShops)
	reports.GET("/export", reportHandler.Export)

	return router
}
