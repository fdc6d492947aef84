package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Hosting  HostingConfig  `mapstructure:"hosting"`
	SiteEnv  SiteEnvConfig  `mapstructure:"site_env"`
	Core     CoreConfig     `mapstructure:"core"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name string `mapstructure:"name"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // mysql, postgres, sqlite
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	LogLevel        string `mapstructure:"log_level"`         // SQL日志级别: silent/error/warn/info
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

// JWTConfig 身份提供方签发 Token 的校验配置
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"` // 为空时不校验 iss
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`
}

// HostingConfig 托管平台配置
type HostingConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Token             string        `mapstructure:"token"`
	TeamID            string        `mapstructure:"team_id"`
	DashboardURL      string        `mapstructure:"dashboard_url"`
	SiteDomain        string        `mapstructure:"site_domain"` // 站点默认域名后缀
	Framework         string        `mapstructure:"framework"`
	DefaultRepository string        `mapstructure:"default_repository"`
	DefaultBranch     string        `mapstructure:"default_branch"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// SiteEnvConfig 推送到租户站点的运行时配置来源
type SiteEnvConfig struct {
	DataStoreURL        string `mapstructure:"data_store_url"`
	DataStoreAnonKey    string `mapstructure:"data_store_anon_key"`
	DataStoreProjectID  string `mapstructure:"data_store_project_id"`
	DataStoreServiceKey string `mapstructure:"data_store_service_key"`
	TwilioAccountSID    string `mapstructure:"twilio_account_sid"`
	TwilioAuthToken     string `mapstructure:"twilio_auth_token"`
	MongoDBURI          string `mapstructure:"mongodb_uri"`
	StripeSecretKey     string `mapstructure:"stripe_secret_key"`
}

// CoreConfig 编排配置
type CoreConfig struct {
	Deploy          DeployConfig       `mapstructure:"deploy"`
	Notification    NotificationConfig `mapstructure:"notification"`
	ReconcileCron   string             `mapstructure:"reconcile_cron"`   // 后台状态同步 cron（秒级）
	ReconcileWindow time.Duration      `mapstructure:"reconcile_window"` // 仅同步该时间窗口内创建的记录
}

// DeployConfig 部署触发配置
type DeployConfig struct {
	PropagationDelay time.Duration `mapstructure:"propagation_delay"` // 首次触发前等待 Git 连接生效
	RetryDelay       time.Duration `mapstructure:"retry_delay"`       // 同步类错误重试前等待
	TriggerTimeout   time.Duration `mapstructure:"trigger_timeout"`   // 触发步骤整体超时
	LockTTL          time.Duration `mapstructure:"lock_ttl"`          // 租户部署锁有效期
}

// NotificationConfig 通知配置
type NotificationConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	QueueSize   int    `mapstructure:"queue_size"`
	LarkWebhook string `mapstructure:"lark_webhook"` // 为空时不推送 Lark
}

// RedisConfig Redis 配置（租户部署锁）
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig 审计事件投递配置
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// envBindings 兼容站点约定的环境变量名
var envBindings = map[string]string{
	"hosting.token":                   "VERCEL_TOKEN",
	"hosting.team_id":                 "VERCEL_TEAM_ID",
	"auth.jwt.secret":                 "JWT_SECRET",
	"site_env.data_store_url":         "NEXT_PUBLIC_SUPABASE_URL",
	"site_env.data_store_anon_key":    "NEXT_PUBLIC_SUPABASE_ANON_KEY",
	"site_env.data_store_project_id":  "NEXT_PUBLIC_SUPABASE_PROJECT_ID",
	"site_env.data_store_service_key": "SUPABASE_SERVICE_ROLE_KEY",
	"site_env.twilio_account_sid":     "TWILIO_ACCOUNT_SID",
	"site_env.twilio_auth_token":      "TWILIO_AUTH_TOKEN",
	"site_env.mongodb_uri":            "MONGODB_URI",
	"site_env.stripe_secret_key":      "STRIPE_SECRET_KEY",
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	// 本地开发时允许使用 .env，文件不存在不报错
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// 读取环境变量
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("绑定环境变量 %s 失败: %w", env, err)
		}
	}

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析配置
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "tenant-deployer")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 3600)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("hosting.base_url", "https://api.vercel.com")
	v.SetDefault("hosting.dashboard_url", "https://vercel.com/dashboard")
	v.SetDefault("hosting.site_domain", "vercel.app")
	v.SetDefault("hosting.framework", "nextjs")
	v.SetDefault("hosting.default_repository", "https://github.com/onlineimmigrant/move-plan-next")
	v.SetDefault("hosting.default_branch", "main")
	v.SetDefault("hosting.timeout", "30s")
	v.SetDefault("core.deploy.propagation_delay", "3s")
	v.SetDefault("core.deploy.retry_delay", "5s")
	v.SetDefault("core.deploy.trigger_timeout", "30s")
	v.SetDefault("core.deploy.lock_ttl", "10m")
	v.SetDefault("core.notification.enabled", true)
	v.SetDefault("core.notification.queue_size", 256)
	v.SetDefault("core.reconcile_cron", "0 */2 * * * *")
	v.SetDefault("core.reconcile_window", "24h")
	v.SetDefault("kafka.topic", "tenant-deployments")
}

// GetDSN 获取数据库DSN
func (c *DatabaseConfig) GetDSN() string {
	switch c.Driver {
	case "postgres":
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
			c.Host, c.Username, c.Password, c.Database, c.Port, sslMode)
	case "sqlite":
		return c.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.Username,
			c.Password,
			c.Host,
			c.Port,
			c.Database,
		)
	}
}
