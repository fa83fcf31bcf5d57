package config

import (
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata"

	"teahouse/internal/billing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config 全局配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Billing  BillingConfig  `mapstructure:"billing"`
	Business BusinessConfig `mapstructure:"business"`
	Rooms    []RoomConfig   `mapstructure:"rooms"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	Checkout    string `mapstructure:"checkout"`
	DailyReport string `mapstructure:"daily_report"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	Caller     bool   `mapstructure:"caller"`
}

// BillingConfig 默认费率，数据库中没有费率记录时使用
type BillingConfig struct {
	HallRate         float64            `mapstructure:"hall_rate"`
	PrivateRoomRates map[string]float64 `mapstructure:"private_room_rates"`
	ACRate           float64            `mapstructure:"ac_rate"`
	HeaterRate       float64            `mapstructure:"heater_rate"`
	OvernightRate    float64            `mapstructure:"overnight_rate"`
	SessionValue     int                `mapstructure:"session_value"`
	SessionUnit      string             `mapstructure:"session_unit"`
	Timezone         string             `mapstructure:"timezone"`
}

type BusinessConfig struct {
	MaxRetryCount         int `mapstructure:"max_retry_count"`
	OutboxIntervalSeconds int `mapstructure:"outbox_interval_seconds"`
	OutboxBatchSize       int `mapstructure:"outbox_batch_size"`
	LockTimeoutSeconds    int `mapstructure:"lock_timeout_seconds"`
	RateCacheTTLSeconds   int `mapstructure:"rate_cache_ttl_seconds"`
	DailyReportHour       int `mapstructure:"daily_report_hour"`
}

// RoomConfig 启动时初始化的房间
type RoomConfig struct {
	ID   string `mapstructure:"id"`
	Kind string `mapstructure:"kind"`
}

var GlobalConfig *Config

// LoadConfig 加载配置文件，失败直接退出
func LoadConfig(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	GlobalConfig = cfg
	return cfg
}

// Load 读取配置文件，configPath 为空时只使用默认值和环境变量
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("TEAHOUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if _, err := cfg.Billing.RateTable(); err != nil {
		return nil, fmt.Errorf("默认费率配置无效: %w", err)
	}
	if _, err := cfg.Billing.Location(); err != nil {
		return nil, fmt.Errorf("时区配置无效: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.database", "teahouse")
	v.SetDefault("mysql.max_open_conns", 20)
	v.SetDefault("mysql.max_idle_conns", 5)

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)

	v.SetDefault("kafka.brokers", []string{"127.0.0.1:9092"})
	v.SetDefault("kafka.topic.checkout", "teahouse_checkout")
	v.SetDefault("kafka.topic.daily_report", "teahouse_daily_report")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "./logs/teahouse.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.caller", true)

	v.SetDefault("billing.hall_rate", 50)
	v.SetDefault("billing.private_room_rates", map[string]float64{
		"大雅01": 80, "大雅02": 80,
		"小雅801": 60, "小雅802": 60, "小雅803": 60, "小雅805": 60,
		"小雅806": 60, "小雅807": 60, "小雅808": 60, "小雅809": 60,
	})
	v.SetDefault("billing.ac_rate", 5)
	v.SetDefault("billing.heater_rate", 3)
	v.SetDefault("billing.overnight_rate", 10)
	v.SetDefault("billing.session_value", 4)
	v.SetDefault("billing.session_unit", billing.UnitHours)
	v.SetDefault("billing.timezone", "Asia/Shanghai")

	v.SetDefault("business.max_retry_count", 5)
	v.SetDefault("business.outbox_interval_seconds", 5)
	v.SetDefault("business.outbox_batch_size", 100)
	v.SetDefault("business.lock_timeout_seconds", 10)
	v.SetDefault("business.rate_cache_ttl_seconds", 300)
	v.SetDefault("business.daily_report_hour", 0)

	v.SetDefault("rooms", defaultRooms())
}

func defaultRooms() []map[string]string {
	var rooms []map[string]string
	add := func(id, kind string) {
		rooms = append(rooms, map[string]string{"id": id, "kind": kind})
	}
	add("大雅01", "private")
	add("大雅02", "private")
	for _, n := range []int{801, 802, 803, 805, 806, 807, 808, 809} {
		add(fmt.Sprintf("小雅%d", n), "private")
	}
	for i := 1; i <= 10; i++ {
		add(fmt.Sprintf("大厅%d", i), "hall")
	}
	return rooms
}

// RateTable 把默认费率换算为计费引擎使用的费率表
func (b BillingConfig) RateTable() (*billing.RateTable, error) {
	sessionLength, err := billing.SessionLengthFromUnit(b.SessionValue, b.SessionUnit)
	if err != nil {
		return nil, err
	}
	rates := &billing.RateTable{
		HallRate:         decimal.NewFromFloat(b.HallRate),
		PrivateRoomRates: make(map[string]decimal.Decimal, len(b.PrivateRoomRates)),
		ACRate:           decimal.NewFromFloat(b.ACRate),
		HeaterRate:       decimal.NewFromFloat(b.HeaterRate),
		OvernightRate:    decimal.NewFromFloat(b.OvernightRate),
		SessionLength:    sessionLength,
	}
	for roomID, rate := range b.PrivateRoomRates {
		rates.PrivateRoomRates[roomID] = decimal.NewFromFloat(rate)
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	return rates, nil
}

// Location 营业时区，过夜费和营业日按这个时区计算
func (b BillingConfig) Location() (*time.Location, error) {
	if b.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(b.Timezone)
}

// LockTimeout 房间锁超时
func (b BusinessConfig) LockTimeout() time.Duration {
	return time.Duration(b.LockTimeoutSeconds) * time.Second
}

// OutboxInterval 消息发送间隔
func (b BusinessConfig) OutboxInterval() time.Duration {
	return time.Duration(b.OutboxIntervalSeconds) * time.Second
}

// RateCacheTTL 费率缓存过期时间
func (b BusinessConfig) RateCacheTTL() time.Duration {
	return time.Duration(b.RateCacheTTLSeconds) * time.Second
}
