package database

import (
	"cardbank/config"
	"cardbank/models"
	"cardbank/utils"
	"embed"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrStorageUnavailable означает, что хранилище нельзя открыть или к нему нельзя подключиться
var ErrStorageUnavailable = errors.New("хранилище недоступно")

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Database представляет подключение к базе данных
type Database struct {
	DB     *gorm.DB
	driver string
}

// NewDatabase создает подключение к базе данных и приводит схему к актуальному виду
func NewDatabase(cfg *config.Config, appLogger *utils.Logger) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(cfg.Store.Path))
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.Store.DSN)
	default:
		return nil, fmt.Errorf("%w: неизвестный драйвер %q", ErrStorageUnavailable, cfg.Store.Driver)
	}

	// Настраиваем логгер
	gormLogger := logger.New(
		log.New(appLogger.Writer(), "GORM: ", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(cfg.Log.Level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// Открываем подключение
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	// Настраиваем пул соединений
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if cfg.Store.Driver == config.DriverSQLite {
		// SQLite допускает одного писателя, поэтому внутри процесса держим одно соединение
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	d := &Database{DB: db, driver: cfg.Store.Driver}
	if err := d.migrate(cfg); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	appLogger.Info("Connected to %s store", cfg.Store.Driver)
	return d, nil
}

// GetDB возвращает экземпляр GORM
func (d *Database) GetDB() *gorm.DB {
	return d.DB
}

// Close закрывает подключение к базе данных
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) migrate(cfg *config.Config) error {
	if d.driver == config.DriverPostgres {
		return runMigrations(cfg.Store.DSN)
	}
	return autoMigrate(d.DB)
}

// runMigrations выполняет SQL миграции из встроенного каталога migrations
func runMigrations(dsn string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("ошибка открытия миграций: %w", err)
	}

	// Создаем экземпляр миграции
	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("ошибка создания миграции: %w", err)
	}
	defer m.Close()

	// Выполняем миграции
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}
	return nil
}

// autoMigrate выполняет автоматическую миграцию моделей
func autoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Card{}); err != nil {
		return fmt.Errorf("ошибка автоматической миграции: %w", err)
	}
	return nil
}

func sqliteDSN(path string) string {
	// транзакции начинаются с BEGIN IMMEDIATE и ждут блокировку записи до busy_timeout
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case utils.LevelDebug:
		return logger.Info
	case utils.LevelError:
		return logger.Error
	default:
		return logger.Warn
	}
}
