package config

import (
	"fmt"
	"strings"

	"github.com/kharido-next/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用全量配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	UserJWT  JWTConfig      `mapstructure:"user_jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
	Razorpay RazorpayConfig `mapstructure:"razorpay"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志输出配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 映射为 logger.Options
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 连接池参数
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库连接配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig 用户 Token 签发配置
type JWTConfig struct {
	SecretKey             string `mapstructure:"secret"`
	ExpireHours           int    `mapstructure:"expire_hours"`
	RememberMeExpireHours int    `mapstructure:"remember_me_expire_hours"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig Asynq 队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CheckoutConfig 结算配置
type CheckoutConfig struct {
	// ReturnChargeFee 退换货商品每件加收费用（卢比）
	ReturnChargeFee string `mapstructure:"return_charge_fee"`
	// SessionExpireMinutes 结算会话保留时长
	SessionExpireMinutes int `mapstructure:"session_expire_minutes"`
	// ResetCoinsOnCOD 货到付款时是否清零硬币抵扣
	ResetCoinsOnCOD bool `mapstructure:"reset_coins_on_cod"`
}

// RazorpayConfig Razorpay 网关配置
type RazorpayConfig struct {
	KeyID     string `mapstructure:"key_id"`
	KeySecret string `mapstructure:"key_secret"`
	APIBase   string `mapstructure:"api_base"`
	Currency  string `mapstructure:"currency"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

// CORSConfig 跨域白名单配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 限流等安全配置
type SecurityConfig struct {
	LoginRateLimit      RateLimitConfig `mapstructure:"login_rate_limit"`
	PlaceOrderRateLimit RateLimitConfig `mapstructure:"place_order_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// defaults 全量默认值，配置文件与环境变量按键覆盖
var defaults = map[string]interface{}{
	"server.host": "0.0.0.0",
	"server.port": "8080",
	"server.mode": "debug",

	"log.dir":          "",
	"log.filename":     "checkout.log",
	"log.max_size_mb":  100,
	"log.max_backups":  7,
	"log.max_age_days": 30,
	"log.compress":     true,

	"database.driver":                         "sqlite",
	"database.dsn":                            "./db/kharido.db",
	"database.pool.max_open_conns":            1,
	"database.pool.max_idle_conns":            1,
	"database.pool.conn_max_lifetime_seconds": 0,
	"database.pool.conn_max_idle_time_seconds": 0,

	"user_jwt.secret":                   "user-change-me-in-production",
	"user_jwt.expire_hours":             24,
	"user_jwt.remember_me_expire_hours": 168,

	"redis.enabled":  true,
	"redis.host":     "127.0.0.1",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,
	"redis.prefix":   "kh",

	"queue.enabled":     true,
	"queue.host":        "127.0.0.1",
	"queue.port":        6379,
	"queue.password":    "",
	"queue.db":          1,
	"queue.concurrency": 10,
	"queue.queues":      map[string]int{"default": 10, "critical": 5},

	"cors.allowed_origins": []string{"*"},
	"cors.allowed_methods": []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"cors.allowed_headers": []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-CSRF-Token",
	},
	"cors.allow_credentials": true,
	"cors.max_age":           600,

	"security.login_rate_limit.window_seconds":       300,
	"security.login_rate_limit.max_attempts":         5,
	"security.login_rate_limit.block_seconds":        900,
	"security.place_order_rate_limit.window_seconds": 60,
	"security.place_order_rate_limit.max_attempts":   10,
	"security.place_order_rate_limit.block_seconds":  300,

	"checkout.return_charge_fee":      "50",
	"checkout.session_expire_minutes": 30,
	"checkout.reset_coins_on_cod":     true,

	"razorpay.key_id":     "",
	"razorpay.key_secret": "",
	"razorpay.api_base":   "https://api.razorpay.com/v1",
	"razorpay.currency":   "INR",
	"razorpay.timeout_ms": 10000,
}

// Load 加载配置：默认值 < config.yml < 环境变量（SERVER_PORT 等）
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	for _, path := range []string{".", "../", "./etc"} {
		viper.AddConfigPath(path)
	}
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed", "error", err, "fallback", "env_or_defaults")
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return &cfg
}
