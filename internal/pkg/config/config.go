package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	App       AppConfig       `mapstructure:"app"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	Port         string `mapstructure:"port"`
	SSLMode      string `mapstructure:"sslmode"`
	TimeZone     string `mapstructure:"timezone"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN gorm/pgx 使用的连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.DBName, d.Port, d.SSLMode, d.TimeZone)
}

// URL golang-migrate 使用的连接串
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // 小时
}

type AppConfig struct {
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

// 支付模式
const (
	PaymentModeLive     = "live"
	PaymentModeFallback = "fallback"
)

// 支付渠道
const (
	ChannelAlipay = "alipay"
	ChannelWechat = "wechat"

	// LiveCurrency 支付宝、微信支付均按人民币结算
	LiveCurrency = "CNY"
)

type PaymentConfig struct {
	Mode            string          `mapstructure:"mode"`    // live | fallback，留空时自动判断
	Channel         string          `mapstructure:"channel"` // alipay | wechat
	Currency        string          `mapstructure:"currency"`
	ProviderTimeout time.Duration   `mapstructure:"provider_timeout"`
	IntentLockTTL   time.Duration   `mapstructure:"intent_lock_ttl"`
	IntentTTL       time.Duration   `mapstructure:"intent_ttl"`       // 渠道交易有效期
	AcceptDemoRefs  bool            `mapstructure:"accept_demo_refs"` // live 模式下仍放行演示凭据，仅联调用
	BreakerFailures int             `mapstructure:"breaker_failures"`
	BreakerReset    time.Duration   `mapstructure:"breaker_reset"`
	Alipay          AlipayConfig    `mapstructure:"alipay"`
	Wechat          WechatPayConfig `mapstructure:"wechat"`
}

type AlipayConfig struct {
	AppID        string `mapstructure:"app_id"`
	PrivateKey   string `mapstructure:"private_key"`   // 应用私钥
	PublicKey    string `mapstructure:"public_key"`    // 支付宝公钥 (不是应用公钥)
	NotifyURL    string `mapstructure:"notify_url"`    // 异步通知地址
	IsProduction bool   `mapstructure:"is_production"` // 是否生产环境
}

type WechatPayConfig struct {
	AppID                string `mapstructure:"app_id"`
	MchID                string `mapstructure:"mch_id"`
	MchCertificateSerial string `mapstructure:"mch_cert_serial"`
	MchPrivateKey        string `mapstructure:"mch_private_key"`
	APIv3Key             string `mapstructure:"apiv3_key"`
	NotifyURL            string `mapstructure:"notify_url"`
}

// HasCredentials 当前渠道是否配置了完整凭证
func (p PaymentConfig) HasCredentials() bool {
	switch p.Channel {
	case ChannelAlipay:
		return p.Alipay.AppID != "" && p.Alipay.PrivateKey != "" && p.Alipay.PublicKey != ""
	case ChannelWechat:
		w := p.Wechat
		return w.AppID != "" && w.MchID != "" && w.MchCertificateSerial != "" && w.MchPrivateKey != "" && w.APIv3Key != ""
	default:
		return false
	}
}

// ResolveMode 启动时确定支付模式，之后不再变化
func (p PaymentConfig) ResolveMode(env string) string {
	switch p.Mode {
	case PaymentModeFallback:
		return PaymentModeFallback
	case PaymentModeLive:
		return PaymentModeLive
	}
	if p.HasCredentials() && env == "prod" {
		return PaymentModeLive
	}
	return PaymentModeFallback
}

type RabbitMQConfig struct {
	URL       string `mapstructure:"url"`
	Exchange  string `mapstructure:"exchange"`
	Workers   int    `mapstructure:"workers"`
	QueueSize int    `mapstructure:"queue_size"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

var GlobalConfig Config

// Validate 验证配置
func (c *Config) Validate() error {
	// JWT 配置验证
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}

	// 数据库配置验证
	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database configuration is incomplete")
	}

	// 支付配置验证
	switch c.Payment.Mode {
	case "", PaymentModeFallback:
	case PaymentModeLive:
		if !c.Payment.HasCredentials() {
			return fmt.Errorf("payment mode live requires %q credentials", c.Payment.Channel)
		}
	default:
		return fmt.Errorf("unknown payment mode %q", c.Payment.Mode)
	}
	if c.Payment.Currency == "" {
		return errors.New("payment currency is required")
	}
	if c.Payment.ResolveMode(c.App.Env) == PaymentModeLive && !strings.EqualFold(c.Payment.Currency, LiveCurrency) {
		return fmt.Errorf("payment mode live only settles in %s, got %q", LiveCurrency, c.Payment.Currency)
	}
	if c.Payment.ProviderTimeout <= 0 {
		return errors.New("payment provider timeout must be positive")
	}
	if c.Payment.IntentTTL < 0 {
		return errors.New("payment intent ttl must not be negative")
	}

	return nil
}

// setDefaults 默认值同时让 AutomaticEnv 能覆盖嵌套键
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "event_marketplace")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expire", 24)
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.debug", true)
	v.SetDefault("payment.mode", "")
	v.SetDefault("payment.channel", ChannelAlipay)
	v.SetDefault("payment.currency", "bdt")
	v.SetDefault("payment.provider_timeout", "10s")
	v.SetDefault("payment.intent_lock_ttl", "30s")
	v.SetDefault("payment.intent_ttl", "30m")
	v.SetDefault("payment.accept_demo_refs", false)
	v.SetDefault("payment.breaker_failures", 5)
	v.SetDefault("payment.breaker_reset", "30s")
	v.SetDefault("payment.alipay.app_id", "")
	v.SetDefault("payment.alipay.private_key", "")
	v.SetDefault("payment.alipay.public_key", "")
	v.SetDefault("payment.alipay.notify_url", "")
	v.SetDefault("payment.alipay.is_production", false)
	v.SetDefault("payment.wechat.app_id", "")
	v.SetDefault("payment.wechat.mch_id", "")
	v.SetDefault("payment.wechat.mch_cert_serial", "")
	v.SetDefault("payment.wechat.mch_private_key", "")
	v.SetDefault("payment.wechat.apiv3_key", "")
	v.SetDefault("payment.wechat.notify_url", "")
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "marketplace.events")
	v.SetDefault("rabbitmq.workers", 2)
	v.SetDefault("rabbitmq.queue_size", 1024)
	v.SetDefault("ratelimit.rps", 20)
	v.SetDefault("ratelimit.burst", 40)
}

// LoadConfig 加载配置
func LoadConfig() (*Config, error) {
	// 获取环境变量，默认为dev
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	// 根据环境选择配置文件
	configName := "config"
	if env != "dev" {
		configName = "config." + env
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults or env vars: %v", err)
	}

	// 绑定环境变量，payment.mode -> PAYMENT_MODE
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.App.Env == "" {
		cfg.App.Env = env
	}

	// 验证配置
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	GlobalConfig = cfg
	return &cfg, nil
}
