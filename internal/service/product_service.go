package service

import (
	"context"
	"fmt"
	"strings"

	"teahouse/internal/logger"
	"teahouse/internal/model"
	"teahouse/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductService 商品管理
type ProductService struct {
	productRepo *repository.ProductRepository
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{productRepo: repository.NewProductRepository(db)}
}

// ProductRequest 新增或修改商品
type ProductRequest struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Stock int
}

func (r *ProductRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return fmt.Errorf("%w: 商品名称不能为空", ErrInvalidParam)
	}
	if r.Price.IsNegative() {
		return fmt.Errorf("%w: 价格不能为负", ErrInvalidParam)
	}
	if r.Stock < 0 {
		return fmt.Errorf("%w: 库存不能为负", ErrInvalidParam)
	}
	return nil
}

func (s *ProductService) List(ctx context.Context) ([]*model.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询商品失败: %w", err)
	}
	return products, nil
}

func (s *ProductService) Create(ctx context.Context, req *ProductRequest) (*model.Product, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	product := &model.Product{
		Name:  req.Name,
		Price: req.Price.Round(2),
		Stock: req.Stock,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	logger.Info("新增商品", logger.String("name", product.Name), logger.Int64("product_id", product.ID))
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, req *ProductRequest) (*model.Product, error) {
	if req.ID <= 0 {
		return nil, fmt.Errorf("%w: 商品ID无效", ErrInvalidParam)
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	product := &model.Product{
		ID:    req.ID,
		Name:  req.Name,
		Price: req.Price.Round(2),
		Stock: req.Stock,
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(ctx, nil, req.ID)
}

// Delete 删除商品，已在购物车中的行不受影响
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("删除商品", logger.Int64("product_id", id))
	return nil
}
