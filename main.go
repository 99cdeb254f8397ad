package main

import (
	"cardbank/cli"
	"cardbank/config"
	"cardbank/database"
	"cardbank/repository"
	"cardbank/services"
	"cardbank/utils"
	"context"
	"io"
	"log"
	"os"
)

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	appLogger, err := utils.NewFileLogger(cfg.Log.Dir, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer appLogger.Close()

	if err := run(context.Background(), cfg, appLogger, os.Stdin, os.Stdout); err != nil {
		appLogger.Error("Application stopped: %v", err)
		log.Printf("Ошибка: %v", err)
		appLogger.Close()
		os.Exit(1)
	}
}

// run собирает зависимости и запускает меню поверх in и out
func run(ctx context.Context, cfg *config.Config, appLogger *utils.Logger, in io.Reader, out io.Writer) error {
	// Инициализируем подключение к базе данных
	db, err := database.NewDatabase(cfg, appLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	store := repository.NewCardRepository(db.GetDB(), cfg.Security.PINCost)

	rnd, err := services.NewSecureRand()
	if err != nil {
		return err
	}
	generator, err := services.NewGenerator(cfg.Card.IssuerPrefix, rnd, store)
	if err != nil {
		return err
	}

	metrics := utils.NewMetrics()
	bank := services.NewBankService(store, generator, appLogger, metrics)
	if cfg.Security.MaxFailedLogins > 0 {
		bank.SetLoginLimiter(utils.NewLoginLimiter(cfg.Security.MaxFailedLogins, cfg.Security.LockoutWindow))
	}

	app, err := cli.NewApp(bank, in, out, appLogger)
	if err != nil {
		return err
	}

	appLogger.Info("Card bank started with %s store", cfg.Store.Driver)
	err = app.Run(ctx)
	appLogger.Info("Card bank stopped, metrics: %v", metrics.Snapshot())
	return err
}
