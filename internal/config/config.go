package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Store     StoreConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Report    ReportConfig
	Alert     AlertConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	AppEnv string
	Port   string
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type StoreConfig struct {
	Backend     string
	DatabaseURL string
	SeedFile    string // JSON snapshot loaded into empty stores at startup
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret     string
	AdminUsername string
	AdminPassword string
}

type ReportConfig struct {
	OperatingExpenseRate float64
	CacheTTL             time.Duration
	ExpiryWindowDays     int
	TopN                 int
	DefaultWindowDays    int
}

type AlertConfig struct {
	SMTPServer   string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	From         string
	To           string
}

// Enabled reports whether alert emails can be sent.
func (c AlertConfig) Enabled() bool {
	return c.SMTPServer != "" && c.To != ""
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_ENCODING", "")
	v.SetDefault("STORE_BACKEND", "memory")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SEED_FILE", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", "super-secret-key")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "admin")
	v.SetDefault("REPORT_OPEX_RATE", 0.15)
	v.SetDefault("REPORT_CACHE_TTL", "5m")
	v.SetDefault("REPORT_EXPIRY_WINDOW_DAYS", 90)
	v.SetDefault("REPORT_TOP_N", 10)
	v.SetDefault("REPORT_DEFAULT_WINDOW_DAYS", 30)
	v.SetDefault("SMTP_SERVER", "")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASS", "")
	v.SetDefault("ALERT_FROM", "")
	v.SetDefault("ALERT_TO", "")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
}

// Load reads the optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return FromViper(v)
}

func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv: v.GetString("APP_ENV"),
			Port:   v.GetString("APP_PORT"),
		},
		Logger: LoggerConfig{
			Level:    v.GetString("LOGGER_LEVEL"),
			Encoding: v.GetString("LOGGER_ENCODING"),
		},
		Store: StoreConfig{
			Backend:     v.GetString("STORE_BACKEND"),
			DatabaseURL: v.GetString("DATABASE_URL"),
			SeedFile:    v.GetString("SEED_FILE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			JWTSecret:     v.GetString("JWT_SECRET"),
			AdminUsername: v.GetString("ADMIN_USERNAME"),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
		},
		Report: ReportConfig{
			OperatingExpenseRate: v.GetFloat64("REPORT_OPEX_RATE"),
			CacheTTL:             v.GetDuration("REPORT_CACHE_TTL"),
			ExpiryWindowDays:     v.GetInt("REPORT_EXPIRY_WINDOW_DAYS"),
			TopN:                 v.GetInt("REPORT_TOP_N"),
			DefaultWindowDays:    v.GetInt("REPORT_DEFAULT_WINDOW_DAYS"),
		},
		Alert: AlertConfig{
			SMTPServer:   v.GetString("SMTP_SERVER"),
			SMTPPort:     v.GetString("SMTP_PORT"),
			SMTPUser:     v.GetString("SMTP_USER"),
			SMTPPassword: v.GetString("SMTP_PASS"),
			From:         v.GetString("ALERT_FROM"),
			To:           v.GetString("ALERT_TO"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
	}
}

// Default returns the configuration with every default applied and nothing
// read from the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return FromViper(v)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.AppEnv == "dev"
}
