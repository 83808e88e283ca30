package handler

import (
	"github.com/sunsun042505/sunwoobank/internal/config"
	"github.com/sunsun042505/sunwoobank/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRouter 注册路由
// 柜员侧走共享口令，客户侧走 Bearer 令牌，两组路由互不重叠
func SetupRouter(h *Handler, customers *service.CustomerService, cfg *config.Config) *gin.Engine {
	r := gin.New()

	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	r.GET("/ping", func(c *gin.Context) {
		c.String(200, "pong")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	teller := api.Group("/teller")
	teller.Use(TellerAuthMiddleware(cfg))
	{
		teller.POST("/auth", h.TellerAuth)

		teller.POST("/customers", h.CreateCustomer)
		teller.GET("/customers", h.ListCustomers)

		teller.POST("/accounts", h.OpenAccount)
		teller.GET("/accounts", h.ListAccounts)
		teller.GET("/accounts/:no", h.GetAccount)

		teller.POST("/cash", h.Cash)
		teller.POST("/transfer", h.TellerTransfer)
		teller.GET("/transactions", h.ListTransactions)

		teller.POST("/restrict", h.Restrict)
		teller.POST("/restrict/release", h.ReleaseRestriction)

		teller.POST("/products", h.EnrollProduct)
		teller.POST("/cards", h.IssueCard)
		teller.POST("/reports", h.SubmitReport)
		teller.GET("/reports", h.ListReports)

		teller.POST("/ib-enroll", h.EnrollIB)
	}

	customer := api.Group("/customer")
	customer.Use(CustomerAuthMiddleware(cfg, customers))
	{
		customer.GET("/my", h.GetMy)
		customer.POST("/transfer", h.CustomerTransfer)
		customer.POST("/reports", h.CustomerSubmitReport)
	}

	return r
}
