package handler

import (
	"teahouse/internal/service"
	"teahouse/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListProducts GET /api/v1/products/list
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.productService.List(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, products)
}

// ProductRequest 新增或修改商品
type ProductRequest struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

func (r *ProductRequest) toService() *service.ProductRequest {
	return &service.ProductRequest{ID: r.ID, Name: r.Name, Price: r.Price, Stock: r.Stock}
}

// CreateProduct POST /api/v1/products/create
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req.toService())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, product)
}

// UpdateProduct POST /api/v1/products/update
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.productService.Update(c.Request.Context(), req.toService())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, product)
}

// DeleteProduct POST /api/v1/products/delete
func (h *Handler) DeleteProduct(c *gin.Context) {
	var req struct {
		ID int64 `json:"id" binding:"required,gt=0"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), req.ID); err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "商品已删除"})
}
