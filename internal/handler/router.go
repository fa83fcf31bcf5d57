package handler

import (
	"teahouse/internal/infrastructure/metrics"
	"teahouse/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRouter 配置路由，m 为 nil 时不暴露 /metrics
func SetupRouter(h *Handler, m *metrics.Metrics, mode string) *gin.Engine {
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	r := gin.New()

	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())
	r.Use(m.Middleware())

	api := r.Group("/api/v1")
	{
		rooms := api.Group("/rooms")
		{
			rooms.GET("/list", h.ListRooms)
			rooms.GET("/detail", h.GetRoom)
			rooms.GET("/bill", h.GetBill)
			rooms.POST("/open", h.OpenRoom)
			rooms.POST("/reserve", h.ReserveRoom)
			rooms.POST("/cancel-reserve", h.CancelReservation)
			rooms.POST("/pause", h.PauseRoom)
			rooms.POST("/resume", h.ResumeRoom)
			rooms.POST("/rounding", h.ChooseRounding)
		}

		cart := api.Group("/cart")
		{
			cart.POST("/add", h.AddToCart)
			cart.POST("/remove", h.RemoveFromCart)
		}

		loan := api.Group("/loan")
		{
			loan.POST("/add", h.AddLoan)
			loan.POST("/repay", h.RepayLoan)
			loan.POST("/delete", h.DeleteLoan)
		}

		// 空调 / 烤火
		svc := api.Group("/service")
		{
			svc.POST("/start", h.serviceHandler(service.ServiceStart))
			svc.POST("/pause", h.serviceHandler(service.ServicePause))
			svc.POST("/resume", h.serviceHandler(service.ServiceResume))
			svc.POST("/stop", h.serviceHandler(service.ServiceStop))
		}

		checkout := api.Group("/checkout")
		{
			checkout.POST("/execute", h.Checkout)
			checkout.GET("/detail", h.GetTransaction)
		}

		rates := api.Group("/rates")
		{
			rates.GET("", h.GetRates)
			rates.POST("/hall", h.UpdateHallRate)
			rates.POST("/private", h.UpdatePrivateRate)
			rates.POST("/session", h.UpdateSessionLength)
			rates.POST("/other", h.UpdateOtherRates)
		}

		products := api.Group("/products")
		{
			products.GET("/list", h.ListProducts)
			products.POST("/create", h.CreateProduct)
			products.POST("/update", h.UpdateProduct)
			products.POST("/delete", h.DeleteProduct)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/summary", h.GetSummary)
			reports.GET("/operators", h.GetOperators)
			reports.POST("/clear", h.ClearReports)
			reports.GET("/outbox/failed", h.ListFailedMessages)
			reports.POST("/outbox/requeue", h.RequeueMessage)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if m != nil {
		r.GET("/metrics", m.Handler())
	}

	return r
}
