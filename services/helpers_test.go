package services

import (
	"cardbank/config"
	"cardbank/database"
	"cardbank/repository"
	"cardbank/utils"
	"context"
	"io"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	path    string
	store   *repository.CardRepository
	bank    *BankService
	logger  *utils.Logger
	metrics *utils.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Default()
	path := filepath.Join(t.TempDir(), "card.s3db")
	logger := utils.NewLogger(io.Discard, utils.LevelDebug)

	store := openStore(t, path, logger)
	generator, err := NewGenerator(cfg.Card.IssuerPrefix, newTestRand(), store)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	metrics := utils.NewMetrics()
	return &testEnv{
		path:    path,
		store:   store,
		bank:    NewBankService(store, generator, logger, metrics),
		logger:  logger,
		metrics: metrics,
	}
}

// openStore открывает отдельное подключение к файлу хранилища, как второй процесс
func openStore(t *testing.T, path string, logger *utils.Logger) *repository.CardRepository {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Path = path
	db, err := database.NewDatabase(cfg, logger)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewCardRepository(db.GetDB(), bcrypt.MinCost)
}

func newTestRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

// openAccount выпускает карту и пополняет ее напрямую через хранилище
func (e *testEnv) openAccount(t *testing.T, balance int64) *Credentials {
	t.Helper()
	ctx := context.Background()
	creds, err := e.bank.CreateAccount(ctx)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if balance != 0 {
		if err := e.store.AddBalance(ctx, creds.Number, balance); err != nil {
			t.Fatalf("seed balance: %v", err)
		}
	}
	return creds
}

func (e *testEnv) login(t *testing.T, creds *Credentials) *Session {
	t.Helper()
	session, err := e.bank.Authenticate(context.Background(), creds.Number, creds.PIN)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	return session
}

func (e *testEnv) balance(t *testing.T, number string) int64 {
	t.Helper()
	balance, err := e.store.Balance(context.Background(), number)
	if err != nil {
		t.Fatalf("Balance(%s): %v", number, err)
	}
	return balance
}
