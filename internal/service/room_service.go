package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teahouse/internal/billing"
	"teahouse/internal/clock"
	"teahouse/internal/config"
	"teahouse/internal/infrastructure/metrics"
	"teahouse/internal/logger"
	"teahouse/internal/model"
	"teahouse/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RoomStore 房间状态的读写
type RoomStore interface {
	EnsureRooms(ctx context.Context, rooms []*model.RoomRecord) error
	GetByRoomID(ctx context.Context, roomID string) (*model.RoomRecord, error)
	List(ctx context.Context) ([]*model.RoomRecord, error)
	Save(ctx context.Context, tx *gorm.DB, rec *model.RoomRecord, fromStatus string) error
}

// RoomService 房间操作
//
// 每次修改：加房间锁 → 读取快照 → 在副本上执行计费引擎操作 → 按版本号写回。
// 引擎返回错误时什么都不写。
type RoomService struct {
	db          *gorm.DB
	rooms       RoomStore
	productRepo *repository.ProductRepository
	rates       *RateService
	locker      RoomLocker
	clock       clock.Clock
	metrics     *metrics.Metrics
}

func NewRoomService(db *gorm.DB, rooms RoomStore, rates *RateService, locker RoomLocker, clk clock.Clock, m *metrics.Metrics) *RoomService {
	return &RoomService{
		db:          db,
		rooms:       rooms,
		productRepo: repository.NewProductRepository(db),
		rates:       rates,
		locker:      locker,
		clock:       clk,
		metrics:     m,
	}
}

// EnsureRooms 按配置创建房间，已存在的房间保持原状态
func (s *RoomService) EnsureRooms(ctx context.Context, rooms []config.RoomConfig) error {
	records := make([]*model.RoomRecord, 0, len(rooms))
	for _, rc := range rooms {
		kind := billing.RoomKind(rc.Kind)
		if kind != billing.RoomKindHall && kind != billing.RoomKindPrivate {
			return fmt.Errorf("%w: 房间 %s 类型 %q", ErrInvalidParam, rc.ID, rc.Kind)
		}
		rec, err := model.NewRoomRecord(billing.NewRoom(rc.ID, kind))
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	if err := s.rooms.EnsureRooms(ctx, records); err != nil {
		return fmt.Errorf("初始化房间失败: %w", err)
	}
	logger.Info("房间已初始化", logger.Int("count", len(records)))
	return nil
}

// RoomDetail 房间状态和实时账单
type RoomDetail struct {
	Room *billing.Room `json:"room"`
	Bill *billing.Bill `json:"bill"`
}

// roomMutation 在副本上修改房间，tx 用于同一事务中的其他写入
type roomMutation func(tx *gorm.DB, room *billing.Room, rates *billing.RateTable, now time.Time) error

func (s *RoomService) mutate(ctx context.Context, roomID, action string, fn roomMutation) (room *billing.Room, err error) {
	defer func() {
		s.metrics.RoomOperation(action, err)
		if err != nil {
			logger.Warn("房间操作失败", logger.RoomID(roomID), logger.Action(action), logger.Err(err))
		}
	}()

	release, err := s.locker.Acquire(ctx, roomID)
	if err != nil {
		return nil, err
	}
	defer release()

	rates, err := s.rates.Current(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.rooms.GetByRoomID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	current, err := rec.Room()
	if err != nil {
		return nil, fmt.Errorf("解析房间状态失败: %w", err)
	}

	work := current.Clone()
	now := s.clock.Now()
	fromStatus := rec.Status
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := fn(tx, work, rates, now); err != nil {
			return err
		}
		if err := rec.SetRoom(work); err != nil {
			return err
		}
		return s.rooms.Save(ctx, tx, rec, fromStatus)
	})
	if err != nil {
		if errors.Is(err, repository.ErrOptimisticLock) {
			return nil, fmt.Errorf("%w: %v", ErrSystemBusy, err)
		}
		return nil, err
	}

	logger.Info("房间操作", logger.RoomID(roomID), logger.Action(action), logger.String("status", string(work.Status)))
	return work, nil
}

// List 所有房间及实时账单
func (s *RoomService) List(ctx context.Context) ([]*RoomDetail, error) {
	rates, err := s.rates.Current(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.rooms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询房间失败: %w", err)
	}

	now := s.clock.Now()
	details := make([]*RoomDetail, 0, len(records))
	occupied := 0
	for _, rec := range records {
		detail, err := s.detail(rec, rates, now)
		if err != nil {
			return nil, err
		}
		if detail.Room.Occupied() {
			occupied++
		}
		details = append(details, detail)
	}
	s.metrics.SetOccupiedRooms(occupied)
	return details, nil
}

// Detail 单个房间
func (s *RoomService) Detail(ctx context.Context, roomID string) (*RoomDetail, error) {
	rates, err := s.rates.Current(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.rooms.GetByRoomID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.detail(rec, rates, s.clock.Now())
}

// Bill 实时账单，只读
func (s *RoomService) Bill(ctx context.Context, roomID string) (*billing.Bill, error) {
	detail, err := s.Detail(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return detail.Bill, nil
}

func (s *RoomService) detail(rec *model.RoomRecord, rates *billing.RateTable, now time.Time) (*RoomDetail, error) {
	room, err := rec.Room()
	if err != nil {
		return nil, fmt.Errorf("解析房间状态失败: %w", err)
	}
	bill, err := billing.ComputeReceivable(room, rates, now)
	if err != nil {
		return nil, err
	}
	return &RoomDetail{Room: room, Bill: bill}, nil
}

func (s *RoomService) Open(ctx context.Context, roomID string) (*billing.Room, error) {
	return s.mutate(ctx, roomID, "open", func(_ *gorm.DB, room *billing.Room, rates *billing.RateTable, now time.Time) error {
		// 包房没有费率时不能开房
		if _, err := rates.RoomRate(room); err != nil {
			return err
		}
		return room.Open(now)
	})
}

func (s *RoomService) Reserve(ctx context.Context, roomID string) (*billing.Room, error) {
	return s.mutate(ctx, roomID, "reserve", func(_ *gorm.DB, room *billing.Room, _ *billing.RateTable, _ time.Time) error {
		return room.Reserve()
	})
}

func (s *RoomService) CancelReservation(ctx context.Context, roomID string) (*billing.Room, error) {
	return s.mutate(ctx, roomID, "cancel_reserve", func(_ *gorm.DB, room *billing.Room, _ *billing.RateTable, _ time.Time) error {
		return room.CancelReservation()
	})
}

func (s *RoomService) Pause(ctx context.Context, roomID string) (*billing.Room, error) {
	return s.mutate(ctx, roomID, "pause", func(_ *gorm.DB, room *billing.Room, _ *billing.RateTable, now time.Time) error {
		return room.Pause(now)
	})
}

func (s *RoomService) Resume(ctx context.Context, roomID string) (*billing.Room, error) {
	return s.mutate(ctx, roomID, "resume", func(_ *gorm.DB, room *billing.Room, _ *billing.RateTable, now time.Time) error {
		return room.Resume(now)
	})
}

func (s *RoomService) ChooseRounding(ctx context.Context, roomID string, mode billing.RoundingMode) (*billing.Room, error) {
	return s.mutate(ctx, roomID, "rounding", func(_ *gorm.DB, room *billing.Room, _ *billing.RateTable, _ time.Time) error {
		return room.ChooseRounding(mode)
	})
}

// ServiceAction 服务操作
type ServiceAction string

const (
	ServiceStart  ServiceAction = "start"
	ServicePause  ServiceAction = "pause"
	ServiceResume ServiceAction = "resume"
	ServiceStop   ServiceAction = "stop"
)

// ControlService 开启、暂停、继续、关闭空调或烤火
func (s *RoomService) ControlService(ctx context.Context, roomID string, kind billing.ServiceKind, action ServiceAction) (*billing.Room, error) {
	return s.mutate(ctx, roomID, "service_"+string(action), func(_ *gorm.DB, room *billing.Room, rates *billing.RateTable, now time.Time) error {
		switch action {
		case ServiceStart:
			return room.StartService(kind, now)
		case ServicePause:
			return room.PauseService(kind, now)
		case ServiceResume:
			return room.ResumeService(kind, now)
		case ServiceStop:
			return room.StopService(kind, now, rates)
		default:
			return fmt.Errorf("%w: 未知操作 %q", ErrInvalidParam, action)
		}
	})
}

func (s *RoomService) AddLoan(ctx context.Context, roomID, customer string, amount decimal.Decimal) (*billing.Room, error) {
	return s.mutate(ctx, roomID, "loan_add", func(_ *gorm.DB, room *billing.Room, _ *billing.RateTable, _ time.Time) error {
		return room.AddLoan(customer, amount)
	})
}

func (s *RoomService) RepayLoan(ctx context.Context, roomID, customer string, amount decimal.Decimal) (*billing.Room, error) {
	return s.mutate(ctx, roomID, "loan_repay", func(_ *gorm.DB, room *billing.Room, _ *billing.RateTable, _ time.Time) error {
		return room.RepayLoan(customer, amount)
	})
}

func (s *RoomService) DeleteLoan(ctx context.Context, roomID, customer string) (*billing.Room, error) {
	return s.mutate(ctx, roomID, "loan_delete", func(_ *gorm.DB, room *billing.Room, _ *billing.RateTable, _ time.Time) error {
		return room.DeleteLoan(customer)
	})
}

// AddToCart 加入商品并扣减库存，两者在同一事务中
func (s *RoomService) AddToCart(ctx context.Context, roomID string, productID int64, quantity int) (*billing.Room, error) {
	return s.mutate(ctx, roomID, "cart_add", func(tx *gorm.DB, room *billing.Room, _ *billing.RateTable, _ time.Time) error {
		product, err := s.productRepo.GetByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		item := billing.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  quantity,
		}
		if err := room.AddToCart(item, product.Stock); err != nil {
			return err
		}
		if err := s.productRepo.DecrementStock(ctx, tx, productID, quantity); err != nil {
			if errors.Is(err, repository.ErrStockNotEnough) {
				return fmt.Errorf("%w: %s", billing.ErrInsufficientStock, product.Name)
			}
			return fmt.Errorf("扣减库存失败: %w", err)
		}
		return nil
	})
}

// RemoveFromCart 删除商品并恢复库存，商品已下架时只删除购物车行
func (s *RoomService) RemoveFromCart(ctx context.Context, roomID string, productID int64) (*billing.Room, error) {
	return s.mutate(ctx, roomID, "cart_remove", func(tx *gorm.DB, room *billing.Room, _ *billing.RateTable, _ time.Time) error {
		item, err := room.RemoveFromCart(productID)
		if err != nil {
			return err
		}
		if err := s.productRepo.IncreaseStock(ctx, tx, productID, item.Quantity); err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				logger.Warn("商品已删除，不恢复库存", logger.RoomID(roomID), logger.Int64("product_id", productID))
				return nil
			}
			return fmt.Errorf("恢复库存失败: %w", err)
		}
		return nil
	})
}
