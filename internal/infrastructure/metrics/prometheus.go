// Package metrics Prometheus 指标
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标收集器，nil 接收者上的方法不做任何事
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	roomOpsTotal        *prometheus.CounterVec
	checkoutsTotal      *prometheus.CounterVec
	revenueTotal        *prometheus.CounterVec
	occupiedRooms       prometheus.Gauge
	outboxTotal         *prometheus.CounterVec
	rateCacheTotal      *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New 在 reg 上注册所有指标，reg 为 nil 时使用默认注册表
func New(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = "teahouse"
	}
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	factory := promauto.With(registerer)

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "path"}),
		roomOpsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_operations_total",
			Help:      "Room operations by action and result",
		}, []string{"action", "result"}),
		checkoutsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Completed checkouts by room kind",
		}, []string{"kind"}),
		revenueTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_total",
			Help:      "Collected amount by payment method",
		}, []string{"method"}),
		occupiedRooms: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "occupied_rooms",
			Help:      "Rooms currently occupied",
		}),
		outboxTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_messages_total",
			Help:      "Outbox deliveries by topic and result",
		}, []string{"topic", "result"}),
		rateCacheTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_cache_total",
			Help:      "Rate table cache lookups by result",
		}, []string{"result"}),
		gatherer: gatherer,
	}
}

// Middleware 记录 HTTP 请求
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func (m *Metrics) RoomOperation(action string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.roomOpsTotal.WithLabelValues(action, result).Inc()
}

// Checkout 记录一次结账，金额按支付方式累加
func (m *Metrics) Checkout(kind string, amounts map[string]float64) {
	if m == nil {
		return
	}
	m.checkoutsTotal.WithLabelValues(kind).Inc()
	for method, amount := range amounts {
		if amount > 0 {
			m.revenueTotal.WithLabelValues(method).Add(amount)
		}
	}
}

func (m *Metrics) SetOccupiedRooms(n int) {
	if m == nil {
		return
	}
	m.occupiedRooms.Set(float64(n))
}

func (m *Metrics) OutboxDelivery(topic string, err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.outboxTotal.WithLabelValues(topic, result).Inc()
}

func (m *Metrics) RateCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.rateCacheTotal.WithLabelValues(result).Inc()
}
