package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendSQL   = "sql"
	BackendRedis = "redis"

	ReactivationReject        = "reject"
	ReactivationOversubscribe = "oversubscribe"
)

type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	StoreBackend string
	DBDriver     string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresDSN string
	SQLitePath  string

	RedisAddr     string
	RedisDB       int
	RedisPassword string

	IdempTTLSecs int
	IdempEnabled bool

	RateLimitRPS   float64
	RateLimitBurst int

	LoanPeriodDays     int
	ReactivationPolicy string
	CORSAllowedOrigins []string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

// LoadDotenv reads files into the environment without overriding variables
// that are already set. Missing files are skipped.
func LoadDotenv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

func Load() *Config {
	c := &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		AppEnv:   getenv("APP_ENV", "development"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		StoreBackend: strings.ToLower(getenv("STORE_BACKEND", BackendSQL)),
		DBDriver:     strings.ToLower(getenv("DB_DRIVER", "mysql")),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "library"),
		MySQLUser: getenv("MYSQL_USER", "library"),
		MySQLPass: getenv("MYSQL_PASS", "library"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		SQLitePath:  getenv("SQLITE_PATH", "library.db"),

		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:       getint("REDIS_DB", 0),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),
		IdempEnabled: true,

		RateLimitRPS:   10,
		RateLimitBurst: getint("RATE_LIMIT_BURST", 20),

		LoanPeriodDays:     getint("LOAN_PERIOD_DAYS", 14),
		ReactivationPolicy: strings.ToLower(getenv("REACTIVATION_POLICY", ReactivationReject)),
	}
	if v := os.Getenv("IDEMPOTENCY_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.IdempEnabled = b
		}
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimitRPS = f
		}
	}
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.CORSAllowedOrigins = append(c.CORSAllowedOrigins, o)
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.StoreBackend {
	case BackendSQL:
		if err := c.validateSQL(); err != nil {
			return err
		}
	case BackendRedis:
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q (want sql or redis)", c.StoreBackend)
	}
	if (c.StoreBackend == BackendRedis || c.IdempEnabled) && c.RedisAddr == "" {
		return errors.New("missing REDIS_ADDR")
	}
	if c.LoanPeriodDays < 1 {
		return fmt.Errorf("invalid LOAN_PERIOD_DAYS %d", c.LoanPeriodDays)
	}
	switch c.ReactivationPolicy {
	case ReactivationReject, ReactivationOversubscribe:
	default:
		return fmt.Errorf("invalid REACTIVATION_POLICY %q", c.ReactivationPolicy)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return errors.New("rate limit settings must not be negative")
	}
	return nil
}

func (c *Config) validateSQL() error {
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER %q (want mysql, postgres or sqlite)", c.DBDriver)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the configured DB_DRIVER.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return c.PostgresDSN
	case "sqlite":
		return c.SQLitePath
	}
	return c.MySQLDSN()
}
