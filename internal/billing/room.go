package billing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RoomStatus 房间状态
type RoomStatus string

const (
	RoomIdle     RoomStatus = "idle"     // 空闲
	RoomOccupied RoomStatus = "occupied" // 使用中
	RoomReserved RoomStatus = "reserved" // 已预留
)

// RoomKind 房间类型，决定使用大厅费率还是包房费率
type RoomKind string

const (
	RoomKindHall    RoomKind = "hall"
	RoomKindPrivate RoomKind = "private"
)

// RoundingMode 场次取整方向
type RoundingMode string

const (
	RoundUp   RoundingMode = "up"
	RoundDown RoundingMode = "down"
)

// CartItem 购物车中的一行商品
type CartItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal 小计
func (c CartItem) Subtotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// LoanDetail 单个客户的借款
type LoanDetail struct {
	Customer string          `json:"customer"`
	Amount   decimal.Decimal `json:"amount"`
}

// Room 一个房间的完整计费状态
//
// 引擎只操作传入的 Room 值，持久化由外层负责。
// 离开 occupied 状态时购物车、借款、服务、计时全部清空。
type Room struct {
	ID        string                     `json:"id"`
	Kind      RoomKind                   `json:"kind"`
	Status    RoomStatus                 `json:"status"`
	Occupancy PausableInterval           `json:"occupancy"`
	Cart      []CartItem                 `json:"cart"`
	Loans     map[string]decimal.Decimal `json:"loans"`
	Services  map[ServiceKind]*Service   `json:"services"`
	Rounding  RoundingMode               `json:"rounding,omitempty"`
}

// NewRoom 创建空闲房间
func NewRoom(id string, kind RoomKind) *Room {
	r := &Room{ID: id, Kind: kind}
	r.reset()
	return r
}

// Occupied 是否在使用中
func (r *Room) Occupied() bool {
	return r.Status == RoomOccupied
}

// Open 开房，空闲或预留的房间都可以开
func (r *Room) Open(now time.Time) error {
	if r.Occupied() {
		return ErrAlreadyActive
	}
	r.reset()
	if err := r.Occupancy.Start(now); err != nil {
		return err
	}
	r.Status = RoomOccupied
	return nil
}

// Reserve 预留房间
func (r *Room) Reserve() error {
	if r.Occupied() {
		return ErrRoomOccupied
	}
	r.Status = RoomReserved
	return nil
}

// CancelReservation 取消预留
func (r *Room) CancelReservation() error {
	if r.Occupied() {
		return ErrRoomOccupied
	}
	r.Status = RoomIdle
	return nil
}

// Pause 暂停房间计时
func (r *Room) Pause(now time.Time) error {
	if !r.Occupied() {
		return ErrNotActive
	}
	return r.Occupancy.Pause(now)
}

// Resume 继续房间计时
func (r *Room) Resume(now time.Time) error {
	if !r.Occupied() {
		return ErrNotActive
	}
	return r.Occupancy.Resume(now)
}

// ChooseRounding 结账前由操作员选择场次取整方向
func (r *Room) ChooseRounding(mode RoundingMode) error {
	if !r.Occupied() {
		return ErrNotActive
	}
	if mode != RoundUp && mode != RoundDown {
		return fmt.Errorf("%w: rounding %q", ErrInvalidAmount, mode)
	}
	r.Rounding = mode
	return nil
}

// AddToCart 加入商品，available 为库存方提供的可用数量
func (r *Room) AddToCart(item CartItem, available int) error {
	if !r.Occupied() {
		return ErrNotActive
	}
	if item.Quantity <= 0 || item.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: quantity=%d price=%s", ErrInvalidAmount, item.Quantity, item.UnitPrice)
	}
	if item.Quantity > available {
		return fmt.Errorf("%w: %s 需要%d 可用%d", ErrInsufficientStock, item.Name, item.Quantity, available)
	}
	for i := range r.Cart {
		if r.Cart[i].ProductID == item.ProductID {
			r.Cart[i].Quantity += item.Quantity
			return nil
		}
	}
	r.Cart = append(r.Cart, item)
	return nil
}

// RemoveFromCart 删除整行商品，返回被删除的行以便调用方恢复库存
func (r *Room) RemoveFromCart(productID int64) (CartItem, error) {
	for i := range r.Cart {
		if r.Cart[i].ProductID == productID {
			item := r.Cart[i]
			r.Cart = append(r.Cart[:i], r.Cart[i+1:]...)
			return item, nil
		}
	}
	return CartItem{}, ErrCartItemNotFound
}

// ProductFee 商品消费合计
func (r *Room) ProductFee() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Cart {
		total = total.Add(item.Subtotal())
	}
	return total
}

// AddLoan 客户借款，同一客户累加
func (r *Room) AddLoan(customer string, amount decimal.Decimal) error {
	customer = strings.TrimSpace(customer)
	if !r.Occupied() {
		return ErrNotActive
	}
	if customer == "" || !amount.IsPositive() {
		return fmt.Errorf("%w: customer=%q amount=%s", ErrInvalidAmount, customer, amount)
	}
	if r.Loans == nil {
		r.Loans = make(map[string]decimal.Decimal)
	}
	r.Loans[customer] = r.Loans[customer].Add(amount)
	return nil
}

// RepayLoan 客户还款，还清后删除记录
func (r *Room) RepayLoan(customer string, amount decimal.Decimal) error {
	customer = strings.TrimSpace(customer)
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount=%s", ErrInvalidAmount, amount)
	}
	owed, ok := r.Loans[customer]
	if !ok {
		return ErrLoanNotFound
	}
	if amount.GreaterThan(owed) {
		return fmt.Errorf("%w: %s 欠款%s", ErrRepayExceedsLoan, customer, owed)
	}
	remaining := owed.Sub(amount)
	if remaining.IsZero() {
		delete(r.Loans, customer)
		return nil
	}
	r.Loans[customer] = remaining
	return nil
}

// DeleteLoan 删除客户借款记录
func (r *Room) DeleteLoan(customer string) error {
	customer = strings.TrimSpace(customer)
	if _, ok := r.Loans[customer]; !ok {
		return ErrLoanNotFound
	}
	delete(r.Loans, customer)
	return nil
}

// LoanTotal 借款合计
func (r *Room) LoanTotal() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range r.Loans {
		total = total.Add(amount)
	}
	return total
}

// LoanDetails 按客户名排序的借款明细
func (r *Room) LoanDetails() []LoanDetail {
	details := make([]LoanDetail, 0, len(r.Loans))
	for customer, amount := range r.Loans {
		details = append(details, LoanDetail{Customer: customer, Amount: amount})
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].Customer < details[j].Customer
	})
	return details
}

// Service 返回指定服务，不存在时创建
func (r *Room) Service(kind ServiceKind) (*Service, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, kind)
	}
	if r.Services == nil {
		r.Services = make(map[ServiceKind]*Service)
	}
	svc, ok := r.Services[kind]
	if !ok || svc == nil {
		svc = &Service{}
		r.Services[kind] = svc
	}
	return svc, nil
}

// StartService 开启服务，房间必须在使用中
func (r *Room) StartService(kind ServiceKind, now time.Time) error {
	if !r.Occupied() {
		return ErrNotActive
	}
	svc, err := r.Service(kind)
	if err != nil {
		return err
	}
	return svc.Start(now)
}

// PauseService 暂停服务
func (r *Room) PauseService(kind ServiceKind, now time.Time) error {
	svc, err := r.runningService(kind)
	if err != nil {
		return err
	}
	return svc.Pause(now)
}

// ResumeService 继续服务
func (r *Room) ResumeService(kind ServiceKind, now time.Time) error {
	svc, err := r.runningService(kind)
	if err != nil {
		return err
	}
	return svc.Resume(now)
}

// StopService 关闭服务，按当前费率冻结本次会话
func (r *Room) StopService(kind ServiceKind, now time.Time, rates *RateTable) error {
	rate, err := rates.ServiceRate(kind)
	if err != nil {
		return err
	}
	svc, err := r.runningService(kind)
	if err != nil {
		return err
	}
	return svc.Stop(now, rate)
}

// runningService 查找已存在的服务，不存在时不创建
func (r *Room) runningService(kind ServiceKind) (*Service, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, kind)
	}
	svc, ok := r.Services[kind]
	if !ok || svc == nil {
		return nil, ErrNotRunning
	}
	return svc, nil
}

// Clone 深拷贝
func (r *Room) Clone() *Room {
	c := *r
	c.Occupancy = r.Occupancy.clone()
	if r.Cart != nil {
		c.Cart = make([]CartItem, len(r.Cart))
		copy(c.Cart, r.Cart)
	}
	c.Loans = make(map[string]decimal.Decimal, len(r.Loans))
	for k, v := range r.Loans {
		c.Loans[k] = v
	}
	c.Services = make(map[ServiceKind]*Service, len(r.Services))
	for k, v := range r.Services {
		if v != nil {
			c.Services[k] = v.clone()
		}
	}
	return &c
}

// reset 回到空闲状态
func (r *Room) reset() {
	r.Status = RoomIdle
	r.Occupancy = PausableInterval{}
	r.Cart = []CartItem{}
	r.Loans = make(map[string]decimal.Decimal)
	r.Services = make(map[ServiceKind]*Service)
	r.Rounding = RoundUp
}
