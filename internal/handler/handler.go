package handler

import (
	"errors"
	"time"

	"teahouse/internal/billing"
	"teahouse/internal/logger"
	"teahouse/internal/repository"
	"teahouse/internal/service"
	"teahouse/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	roomService     *service.RoomService
	checkoutService *service.CheckoutService
	rateService     *service.RateService
	productService  *service.ProductService
	reportService   *service.ReportService
	location        *time.Location
}

// Services 处理器依赖的服务
type Services struct {
	Room     *service.RoomService
	Checkout *service.CheckoutService
	Rate     *service.RateService
	Product  *service.ProductService
	Report   *service.ReportService
}

// NewHandler 创建处理器实例，loc 用于解析报表查询的日期
func NewHandler(svc Services, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		roomService:     svc.Room,
		checkoutService: svc.Checkout,
		rateService:     svc.Rate,
		productService:  svc.Product,
		reportService:   svc.Report,
		location:        loc,
	}
}

// renderError 把各层的错误转换成响应码
func renderError(c *gin.Context, err error) {
	var billingErr *billing.Error
	switch {
	case errors.As(err, &billingErr):
		response.BusinessError(c, billingErr.Code, err.Error())
	case errors.Is(err, service.ErrInvalidParam):
		response.ParamError(c, err.Error())
	case errors.Is(err, repository.ErrRoomNotFound):
		response.NotFound(c, response.CodeRoomNotFound, err.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		response.NotFound(c, response.CodeProductNotFound, err.Error())
	case errors.Is(err, repository.ErrTransactionNotFound):
		response.NotFound(c, response.CodeTransactionNotFound, err.Error())
	case errors.Is(err, repository.ErrOutboxMessageNotFound):
		response.NotFound(c, response.CodeMessageNotFound, err.Error())
	case errors.Is(err, repository.ErrProductDuplicate):
		response.BusinessError(c, response.CodeProductDuplicate, err.Error())
	case errors.Is(err, repository.ErrStatusInvalid):
		response.BusinessError(c, response.CodeRoomStatusInvalid, err.Error())
	case errors.Is(err, service.ErrSystemBusy), errors.Is(err, repository.ErrOptimisticLock):
		response.BusinessError(c, response.CodeSystemBusy, service.ErrSystemBusy.Error())
	default:
		logger.Error("请求处理失败",
			logger.String("path", c.FullPath()),
			logger.Err(err),
		)
		response.ServerError(c, "服务器内部错误")
	}
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return false
	}
	return true
}
