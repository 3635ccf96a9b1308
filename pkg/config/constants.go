package config

const EnvPrefix = "STORESHOP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

const (
	SessionBackendCookie = "cookie"
	SessionBackendRedis  = "redis"
)

const (
	OrderSinkEventLog = "eventlog"
	OrderSinkMatrix   = "matrix"
)

const (
	AuditTargetDB          = "db"
	AuditTargetSpreadsheet = "spreadsheet"
	AuditTargetOff         = "off"
)

// Environment variable names referenced in validation messages and tests.
const (
	EnvAppEnv              = "STORESHOP_APP_ENV"
	EnvPort                = "STORESHOP_APP_PORT"
	EnvDBDriver            = "STORESHOP_DB_DRIVER"
	EnvDBDSN               = "STORESHOP_DB_DSN"
	EnvDBPath              = "STORESHOP_DB_PATH"
	EnvRedisURL            = "STORESHOP_REDIS_URL"
	EnvSessionBackend      = "STORESHOP_SESSION_BACKEND"
	EnvSessionSecret       = "STORESHOP_SESSION_SECRET"
	EnvSessionTTL          = "STORESHOP_SESSION_TTL"
	EnvOrdersSink          = "STORESHOP_ORDERS_SINK"
	EnvOrdersMatrixPath    = "STORESHOP_ORDERS_MATRIX_PATH"
	EnvOrdersAudit         = "STORESHOP_ORDERS_AUDIT"
	EnvOrdersAuditPath     = "STORESHOP_ORDERS_AUDIT_PATH"
	EnvEventsAMQPURL       = "STORESHOP_EVENTS_AMQP_URL"
	EnvEventsPubSubProject = "STORESHOP_EVENTS_PUBSUB_PROJECT"
)
