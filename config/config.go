package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Поддерживаемые драйверы хранилища
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config представляет конфигурацию приложения
type Config struct {
	Store struct {
		Driver string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
		Path   string `mapstructure:"path"`
		DSN    string `mapstructure:"dsn" validate:"omitempty,url,startswith=postgres"` // postgres://... для миграций
	} `mapstructure:"store"`
	Card struct {
		IssuerPrefix string `mapstructure:"issuer_prefix" validate:"len=6,number"`
	} `mapstructure:"card"`
	Security struct {
		PINCost         int           `mapstructure:"pin_cost" validate:"gte=4,lte=31"`   // стоимость bcrypt
		MaxFailedLogins int           `mapstructure:"max_failed_logins" validate:"gte=0"` // 0 отключает ограничение
		LockoutWindow   time.Duration `mapstructure:"lockout_window" validate:"gte=0"`
	} `mapstructure:"security"`
	Log struct {
		Dir   string `mapstructure:"dir"`
		Level string `mapstructure:"level" validate:"oneof=debug info error"`
	} `mapstructure:"log"`
}

// NewConfig создает новый экземпляр конфигурации из аргументов командной строки,
// переменных окружения BANK_* и необязательного файла конфигурации
func NewConfig(args []string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	flags := pflag.NewFlagSet("cardbank", pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to an optional config file")
	flags.String("db", "", "path to the SQLite card database")
	flags.String("driver", "", "store driver: sqlite or postgres")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("неверные аргументы командной строки: %w", err)
	}
	if err := v.BindPFlag("store.path", flags.Lookup("db")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("store.driver", flags.Lookup("driver")); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("BANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// значения по умолчанию всегда декодируются
	_ = v.Unmarshal(cfg)
	return cfg
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, fmt.Sprintf("поле %s не прошло проверку %s", e.Namespace(), e.Tag()))
		}
		return fmt.Errorf("неверная конфигурация: %s", strings.Join(messages, "; "))
	}
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			return errors.New("неверная конфигурация: для sqlite требуется store.path")
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("неверная конфигурация: для postgres требуется store.dsn")
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.path", "card.s3db")
	v.SetDefault("store.dsn", "")
	v.SetDefault("card.issuer_prefix", "400000")
	v.SetDefault("security.pin_cost", bcrypt.DefaultCost)
	v.SetDefault("security.max_failed_logins", 5)
	v.SetDefault("security.lockout_window", 5*time.Minute)
	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.level", "info")
}
