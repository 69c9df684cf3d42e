package router

import (
	"phone-shop/internal/config"
	"phone-shop/internal/handler"
	"phone-shop/internal/middleware"
	"phone-shop/internal/models"
	"phone-shop/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and the JSON API.
func SetupRouter(cfg *config.Config, db *gorm.DB, eng *service.Engine) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	api := r.Group("/api")

	// 登录/注册接口（不需要鉴权）
	authHandler := handler.NewAuthHandler(db, cfg.JWT)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// 需要登录才能访问的接口
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, db),
		middleware.AuditMiddleware(db),
	)
	ownerOnly := middleware.RequireRole(models.RoleOwner)

	protected.GET("/me", handler.GetMe)
	protected.POST("/me/profile", handler.UpdateProfile(db))
	protected.POST("/me/password", handler.ChangePassword(db))

	rateHandler := handler.NewRateHandler(eng)
	protected.GET("/rates", rateHandler.GetRates)
	protected.PUT("/rates", ownerOnly, rateHandler.SetRate)

	balanceHandler := handler.NewBalanceHandler(eng)
	protected.GET("/balance", balanceHandler.GetBalance)
	protected.POST("/balance/adjust", ownerOnly, balanceHandler.AdjustBalance)
	protected.GET("/profit", ownerOnly, balanceHandler.GetProfit)
	protected.GET("/transactions", ownerOnly, balanceHandler.ListTransactions)

	catalogHandler := handler.NewCatalogHandler(eng)
	protected.POST("/catalog/:kind", catalogHandler.CreateItem)
	protected.GET("/catalog/:kind", catalogHandler.ListItems)
	protected.POST("/catalog/:kind/:id/archive", catalogHandler.ArchiveItem)

	saleHandler := handler.NewSaleHandler(eng)
	protected.POST("/sales", saleHandler.CreateSale)
	protected.POST("/sales/:id/return", saleHandler.ReturnSale)
	protected.POST("/sales/:id/items/:itemId/return", saleHandler.ReturnSaleItem)

	debtHandler := handler.NewDebtHandler(eng)
	protected.POST("/customer-debts", debtHandler.CreateCustomerDebt)
	protected.POST("/customer-debts/:id/pay", debtHandler.PayCustomerDebt)
	protected.POST("/company-debts", debtHandler.CreateCompanyDebt)
	protected.POST("/company-debts/:id/pay", debtHandler.PayCompanyDebt)
	protected.GET("/companies/:name/outstanding", debtHandler.CompanyOutstanding)
	protected.POST("/companies/:name/pay", debtHandler.PayCompanyTotal)
	protected.POST("/personal-loans", ownerOnly, debtHandler.CreatePersonalLoan)
	protected.POST("/personal-loans/:id/pay", debtHandler.PayPersonalLoan)

	purchaseHandler := handler.NewPurchaseHandler(eng)
	protected.POST("/purchases", purchaseHandler.CreatePurchase)
	protected.POST("/purchases/:id/return", purchaseHandler.ReturnPurchase)
	protected.POST("/purchases/:id/items/:itemId/return", purchaseHandler.ReturnPurchaseItem)

	importExportHandler := handler.NewImportExportHandler(eng)
	protected.GET("/transactions/export/csv", ownerOnly, importExportHandler.ExportCSV)
	protected.GET("/transactions/export/xlsx", ownerOnly, importExportHandler.ExportXLSX)

	logHandler := handler.NewLogHandler(db)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}
