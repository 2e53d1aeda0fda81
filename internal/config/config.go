package config

import (
	"errors"
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"io/fs"
	"time"
)

var (
	ErrConfigNotLoaded = errors.New("config not loaded")
)

type Environment string

const (
	Production  Environment = "prod"
	Development Environment = "dev"
)

func (e *Environment) SetValue(s string) error {
	*e = Environment(s)
	if *e != Production && *e != Development {
		return configNotLoadedErr(`only "prod" and "dev" environments are allowed`)
	}
	return nil
}

type StoreDriver string

const (
	DriverPostgres StoreDriver = "postgres"
	DriverWebAPI   StoreDriver = "webapi"
)

func (d *StoreDriver) SetValue(s string) error {
	*d = StoreDriver(s)
	if *d != DriverPostgres && *d != DriverWebAPI {
		return configNotLoadedErr(`only "postgres" and "webapi" record store drivers are allowed`)
	}
	return nil
}

type Config struct {
	App struct {
		Env Environment `yaml:"env" env:"ENV" env-required:""`
	} `yaml:"app" env-prefix:"APP_" env-required:""`

	Server struct {
		Host              string        `yaml:"host" env:"HOST" env-default:"localhost"`
		Port              int           `yaml:"port" env:"PORT" env-default:"8080"`
		AllowedOrigins    []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:","`
		ReadTimeout       time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" env-default:"10s"`
		WriteTimeout      time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" env-default:"10s"`
		IdleTimeout       time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT" env-default:"10s"`
		ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"READ_HEADER_TIMEOUT" env-default:"5s"`
		ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	} `yaml:"server" env-prefix:"SERVER_"`

	RecordStore struct {
		Driver  StoreDriver   `yaml:"driver" env:"DRIVER" env-default:"postgres"`
		DSN     string        `yaml:"dsn" env:"DSN"`
		BaseURL string        `yaml:"base_url" env:"BASE_URL"`
		Token   string        `yaml:"token" env:"TOKEN"`
		Timeout time.Duration `yaml:"timeout" env:"TIMEOUT" env-default:"10s"`
	} `yaml:"record_store" env-prefix:"RECORD_STORE_"`

	Notify struct {
		WebhookURL string        `yaml:"webhook_url" env:"WEBHOOK_URL"`
		Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT" env-default:"5s"`
	} `yaml:"notify" env-prefix:"NOTIFY_"`

	Bus struct {
		Buffer int `yaml:"buffer" env:"BUFFER" env-default:"64"`
	} `yaml:"bus" env-prefix:"BUS_"`
}

// Validate checks that the selected record store driver has what it needs.
func (c *Config) Validate() error {
	switch c.RecordStore.Driver {
	case DriverPostgres:
		if c.RecordStore.DSN == "" {
			return configNotLoadedErr("record_store.dsn is required for the postgres driver")
		}
	case DriverWebAPI:
		if c.RecordStore.BaseURL == "" {
			return configNotLoadedErr("record_store.base_url is required for the webapi driver")
		}
	}
	if c.Bus.Buffer < 0 {
		return configNotLoadedErr("bus.buffer must not be negative")
	}
	return nil
}

// LoadDotEnv populates the environment from the given files. Missing files
// are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return configNotLoadedErr("dotenv %s: %w", f, err)
		}
	}
	return nil
}

func Load(filePath string) (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadConfig(filePath, cfg); err != nil {
		return nil, configNotLoadedErr("config not loaded: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad(filePath string) *Config {
	cfg, err := Load(filePath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func configNotLoadedErr(format string, args ...any) error {
	return errors.Join(fmt.Errorf(format, args...), ErrConfigNotLoaded)
}
