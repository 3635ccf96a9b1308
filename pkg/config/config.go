package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	Session SessionConfig
	Catalog CatalogConfig
	Orders  OrdersConfig
	Events  EventsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Orders.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Session.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Events.validate(); err != nil {
		return nil, err
	}
	if cfg.App.IsProd() && cfg.Session.usesDefaultSecret() {
		return nil, fmt.Errorf("%s must be changed in %s", EnvSessionSecret, AppEnvProd)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"STORESHOP_APP_ENV" default:"dev"`
	Port         string   `envconfig:"STORESHOP_APP_PORT" default:"8501"`
	LogLevel     string   `envconfig:"STORESHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"STORESHOP_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool     `envconfig:"STORESHOP_AUTO_MIGRATE" default:"true"`
	StaticDir    string   `envconfig:"STORESHOP_STATIC_DIR" default:"static"`
	CORSOrigins  []string `envconfig:"STORESHOP_CORS_ORIGINS"`
	LogFormat    string   `envconfig:"STORESHOP_LOG_FORMAT"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// LogOutputFormat is the configured log format, console for dev otherwise json.
func (a AppConfig) LogOutputFormat() string {
	if f := strings.ToLower(strings.TrimSpace(a.LogFormat)); f != "" {
		return f
	}
	if a.IsDev() {
		return "console"
	}
	return "json"
}

type DBConfig struct {
	Driver string `envconfig:"STORESHOP_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"STORESHOP_DB_DSN"`
	Path   string `envconfig:"STORESHOP_DB_PATH" default:"data/bestellungen.db"`

	MaxOpenConns    int           `envconfig:"STORESHOP_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STORESHOP_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STORESHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STORESHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"STORESHOP_REDIS_URL"`
	Address      string        `envconfig:"STORESHOP_REDIS_ADDR"`
	Password     string        `envconfig:"STORESHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"STORESHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STORESHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STORESHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STORESHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STORESHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STORESHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type SessionConfig struct {
	Backend    string        `envconfig:"STORESHOP_SESSION_BACKEND" default:"cookie"`
	Secret     string        `envconfig:"STORESHOP_SESSION_SECRET" default:"change-me"`
	Issuer     string        `envconfig:"STORESHOP_SESSION_ISSUER" default:"storeshop"`
	CookieName string        `envconfig:"STORESHOP_SESSION_COOKIE" default:"storeshop_session"`
	TTL        time.Duration `envconfig:"STORESHOP_SESSION_TTL" default:"12h"`
}

const defaultSessionSecret = "change-me"

func (s SessionConfig) usesDefaultSecret() bool {
	return strings.EqualFold(strings.TrimSpace(s.Backend), SessionBackendCookie) && s.Secret == defaultSessionSecret
}

func (s SessionConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case SessionBackendCookie:
		if s.Secret == "" {
			return fmt.Errorf("%s is required for cookie sessions", EnvSessionSecret)
		}
	case SessionBackendRedis:
	default:
		return fmt.Errorf("invalid %s %q", EnvSessionBackend, s.Backend)
	}
	if s.TTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvSessionTTL)
	}
	return nil
}

type CatalogConfig struct {
	StoresPath          string `envconfig:"STORESHOP_CATALOG_STORES" default:"data/storelist_new.xlsx"`
	ProductsPath        string `envconfig:"STORESHOP_CATALOG_PRODUCTS" default:"data/produkte.xlsx"`
	SpecialProductsPath string `envconfig:"STORESHOP_CATALOG_SPECIAL_PRODUCTS" default:"data/produkte_special.xlsx"`
	GridColumns         int    `envconfig:"STORESHOP_CATALOG_GRID_COLUMNS" default:"3"`
}

type OrdersConfig struct {
	Sink       string `envconfig:"STORESHOP_ORDERS_SINK" default:"eventlog"`
	MatrixPath string `envconfig:"STORESHOP_ORDERS_MATRIX_PATH" default:"data/bestellungen.xlsx"`
	Audit      string `envconfig:"STORESHOP_ORDERS_AUDIT" default:"db"`
	AuditPath  string `envconfig:"STORESHOP_ORDERS_AUDIT_PATH" default:"data/order_logs.xlsx"`
}

func (o OrdersConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(o.Sink)) {
	case OrderSinkEventLog:
	case OrderSinkMatrix:
		if o.MatrixPath == "" {
			return fmt.Errorf("%s is required for the matrix sink", EnvOrdersMatrixPath)
		}
	default:
		return fmt.Errorf("invalid %s %q", EnvOrdersSink, o.Sink)
	}
	switch strings.ToLower(strings.TrimSpace(o.Audit)) {
	case AuditTargetDB, AuditTargetOff:
	case AuditTargetSpreadsheet:
		if o.AuditPath == "" {
			return fmt.Errorf("%s is required for the spreadsheet audit log", EnvOrdersAuditPath)
		}
	default:
		return fmt.Errorf("invalid %s %q", EnvOrdersAudit, o.Audit)
	}
	return nil
}

type EventsConfig struct {
	AMQPURL       string `envconfig:"STORESHOP_EVENTS_AMQP_URL"`
	Exchange      string `envconfig:"STORESHOP_EVENTS_EXCHANGE" default:"storeshop.events"`
	PubSubProject string `envconfig:"STORESHOP_EVENTS_PUBSUB_PROJECT"`
	PubSubTopic   string `envconfig:"STORESHOP_EVENTS_PUBSUB_TOPIC" default:"storeshop-events"`
}

// Enabled reports whether order events should be published.
func (e EventsConfig) Enabled() bool {
	return strings.TrimSpace(e.AMQPURL) != "" || strings.TrimSpace(e.PubSubProject) != ""
}

func (e EventsConfig) validate() error {
	if strings.TrimSpace(e.AMQPURL) != "" && strings.TrimSpace(e.PubSubProject) != "" {
		return fmt.Errorf("set only one of %s and %s", EnvEventsAMQPURL, EnvEventsPubSubProject)
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		if db.Path == "" {
			return fmt.Errorf("either %s or %s is required", EnvDBDSN, EnvDBPath)
		}
		db.DSN = db.Path
		return nil
	}
	return fmt.Errorf("%s is required for driver %q", EnvDBDSN, db.Driver)
}
