package main

import (
	"bytes"
	"cardbank/config"
	"cardbank/database"
	"cardbank/utils"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestRunPersistsCardsBetweenStarts(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "card.s3db")
	cfg.Security.PINCost = bcrypt.MinCost
	logger := utils.NewLogger(io.Discard, utils.LevelError)

	var out bytes.Buffer
	if err := run(context.Background(), cfg, logger, strings.NewReader("1\n0\n"), &out); err != nil {
		t.Fatalf("first run: %v", err)
	}
	lines := strings.Split(out.String(), "\n")
	var number, pin string
	for i, line := range lines {
		if line == "Your card number:" && i+3 < len(lines) {
			number, pin = lines[i+1], lines[i+3]
		}
	}
	if number == "" {
		t.Fatalf("no credentials printed:\n%s", out.String())
	}

	out.Reset()
	input := strings.Join([]string{"2", number, pin, "1", "0"}, "\n") + "\n"
	if err := run(context.Background(), cfg, logger, strings.NewReader(input), &out); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(out.String(), "Balance: 0") {
		t.Fatalf("card from first run not usable:\n%s", out.String())
	}
}

func TestRunReportsUnavailableStorage(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "missing", "dir", "card.s3db")
	logger := utils.NewLogger(io.Discard, utils.LevelError)

	err := run(context.Background(), cfg, logger, strings.NewReader(""), io.Discard)
	if !errors.Is(err, database.ErrStorageUnavailable) {
		t.Fatalf("run = %v, want ErrStorageUnavailable", err)
	}
}
