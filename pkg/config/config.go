package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "LUXELEATHER"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "LUXELEATHER_APP_ENV"
	EnvPort                   = "LUXELEATHER_APP_PORT"
	EnvDBDSN                  = "LUXELEATHER_DB_DSN"
	EnvDBHost                 = "LUXELEATHER_DB_HOST"
	EnvDBUser                 = "LUXELEATHER_DB_USER"
	EnvDBName                 = "LUXELEATHER_DB_NAME"
	EnvRedisURL               = "LUXELEATHER_REDIS_URL"
	EnvJWTSecret              = "LUXELEATHER_JWT_SECRET"
	EnvJWTIssuer              = "LUXELEATHER_JWT_ISSUER"
	EnvJWTExpMins             = "LUXELEATHER_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "LUXELEATHER_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Checkout     CheckoutConfig
	Catalog      CatalogConfig
	CORS         CORSConfig
	RateLimit    AuthRateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LUXELEATHER_APP_ENV" required:"true"`
	Port         string `envconfig:"LUXELEATHER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LUXELEATHER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LUXELEATHER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LUXELEATHER_DB_DSN"`
	Driver string `envconfig:"LUXELEATHER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LUXELEATHER_DB_HOST"`
	LegacyPort     int    `envconfig:"LUXELEATHER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LUXELEATHER_DB_USER"`
	LegacyPassword string `envconfig:"LUXELEATHER_DB_PASSWORD"`
	LegacyName     string `envconfig:"LUXELEATHER_DB_NAME"`
	LegacySSLMode  string `envconfig:"LUXELEATHER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LUXELEATHER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LUXELEATHER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LUXELEATHER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LUXELEATHER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LUXELEATHER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LUXELEATHER_REDIS_ADDR"`
	Password     string        `envconfig:"LUXELEATHER_REDIS_PASSWORD"`
	DB           int           `envconfig:"LUXELEATHER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LUXELEATHER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LUXELEATHER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LUXELEATHER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LUXELEATHER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LUXELEATHER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"LUXELEATHER_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"LUXELEATHER_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"LUXELEATHER_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"LUXELEATHER_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LUXELEATHER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LUXELEATHER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LUXELEATHER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LUXELEATHER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LUXELEATHER_ARGON_KEY_LEN" default:"32"`
}

// CheckoutConfig holds the order totals rules. Rates arrive as strings so
// envconfig stays decoupled from the decimal type.
type CheckoutConfig struct {
	TaxRate              string `envconfig:"LUXELEATHER_CHECKOUT_TAX_RATE" default:"0.08"`
	ShippingFlat         string `envconfig:"LUXELEATHER_CHECKOUT_SHIPPING_FLAT" default:"0"`
	FreeShippingSubtotal string `envconfig:"LUXELEATHER_CHECKOUT_FREE_SHIPPING_SUBTOTAL" default:"0"`
}

func (c CheckoutConfig) validate() error {
	for name, raw := range map[string]string{
		"tax rate":               c.TaxRate,
		"shipping flat":          c.ShippingFlat,
		"free shipping subtotal": c.FreeShippingSubtotal,
	} {
		if _, err := decimal.NewFromString(raw); err != nil {
			return fmt.Errorf("checkout %s %q is not a decimal: %w", name, raw, err)
		}
	}
	return nil
}

// TaxRateDecimal returns the configured tax rate; validate() guarantees the
// parse succeeds after Load.
func (c CheckoutConfig) TaxRateDecimal() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.TaxRate)
	return rate
}

func (c CheckoutConfig) ShippingFlatDecimal() decimal.Decimal {
	flat, _ := decimal.NewFromString(c.ShippingFlat)
	return flat
}

func (c CheckoutConfig) FreeShippingSubtotalDecimal() decimal.Decimal {
	threshold, _ := decimal.NewFromString(c.FreeShippingSubtotal)
	return threshold
}

type CatalogConfig struct {
	FeaturedLimit int `envconfig:"LUXELEATHER_CATALOG_FEATURED_LIMIT" default:"8"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"LUXELEATHER_CORS_ALLOWED_ORIGINS" default:"*"`
}

// AuthRateLimitConfig throttles credential-guessing traffic. Zero limits
// disable the corresponding counter.
type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"LUXELEATHER_RATE_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit       int           `envconfig:"LUXELEATHER_RATE_LOGIN_IP_LIMIT" default:"30"`
	LoginEmailLimit    int           `envconfig:"LUXELEATHER_RATE_LOGIN_EMAIL_LIMIT" default:"10"`
	RegisterWindow     time.Duration `envconfig:"LUXELEATHER_RATE_REGISTER_WINDOW" default:"15m"`
	RegisterIPLimit    int           `envconfig:"LUXELEATHER_RATE_REGISTER_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"LUXELEATHER_RATE_REGISTER_EMAIL_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LUXELEATHER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LUXELEATHER_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
