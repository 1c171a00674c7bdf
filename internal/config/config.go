package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite3"

	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

const (
	defaultPort                 = 8080
	defaultLogMode              = "dev"
	defaultDBDriver             = DBDriverSQLite
	defaultDBURL                = "./quotes.db"
	defaultPostgresMaxOpenConns = 80
	defaultSQLiteMaxOpenConns   = 1
	defaultCacheType            = CacheMemory
	defaultCachePrefix          = "insurance"
	defaultShutdownTimeout      = 10 * time.Second
)

type Config struct {
	// API settings
	Port               int           `yaml:"port" envconfig:"PORT"`
	LogMode            string        `yaml:"log_mode" envconfig:"LOG_MODE"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" envconfig:"CORS_ALLOWED_ORIGINS"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`

	// DB settings
	DBDriver       string `yaml:"db_driver" envconfig:"DB_DRIVER"`
	DBURL          string `yaml:"db_url" envconfig:"DB_URL"`
	DBMaxOpenConns int    `yaml:"db_max_open_conns" envconfig:"DB_MAX_OPEN_CONNS"`

	// Cache settings
	CacheType     string        `yaml:"cache_type" envconfig:"CACHE_TYPE"`
	CacheTTL      time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL"`
	CacheMaxItems int           `yaml:"cache_max_items" envconfig:"CACHE_MAX_ITEMS"`
	CachePrefix   string        `yaml:"cache_prefix" envconfig:"CACHE_PREFIX"`
	RedisAddr     string        `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" envconfig:"REDIS_DB"`
}

// Load Config from a yaml file at path.
func (c *Config) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return err
	}

	c.applyDefaults()
	return nil
}

// Load Config from the environment.
func (c *Config) LoadFromEnv() error {
	if err := envconfig.Process("", c); err != nil {
		return err
	}

	c.applyDefaults()
	return nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.LogMode == "" {
		c.LogMode = defaultLogMode
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"*"}
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.DBDriver == "" {
		c.DBDriver = defaultDBDriver
	}
	if c.DBURL == "" && c.DBDriver == DBDriverSQLite {
		c.DBURL = defaultDBURL
	}
	if c.DBMaxOpenConns == 0 {
		// sqlite serializes writers, so a single connection avoids SQLITE_BUSY
		if c.DBDriver == DBDriverSQLite {
			c.DBMaxOpenConns = defaultSQLiteMaxOpenConns
		} else {
			c.DBMaxOpenConns = defaultPostgresMaxOpenConns
		}
	}
	if c.CacheType == "" {
		c.CacheType = defaultCacheType
	}
	if c.CachePrefix == "" {
		c.CachePrefix = defaultCachePrefix
	}
}

// CacheShared reports whether every process using this config sees the same
// cache, so a clear in one is observed by the others.
func (c *Config) CacheShared() bool {
	return c.CacheType != CacheMemory
}

// Validate reports settings that cannot be served.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		return fmt.Errorf("unsupported db_driver %q. must be one of 'postgres' or 'sqlite3'", c.DBDriver)
	}
	if c.DBURL == "" {
		return fmt.Errorf("must set db_url")
	}

	switch c.CacheType {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("cache_type redis requires redis_addr")
		}
	default:
		return fmt.Errorf("unsupported cache_type %q. must be one of 'redis', 'memory' or 'none'", c.CacheType)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative")
	}
	return nil
}
