package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
)

// memoryChecker имитирует уникальность номеров в хранилище
type memoryChecker struct {
	taken map[string]bool
	calls int
}

func newMemoryChecker() *memoryChecker {
	return &memoryChecker{taken: make(map[string]bool)}
}

func (m *memoryChecker) Exists(_ context.Context, number string) (bool, error) {
	m.calls++
	return m.taken[number], nil
}

func newSeededGenerator(t *testing.T, cards NumberChecker) *Generator {
	t.Helper()
	g, err := NewGenerator("400000", rand.New(rand.NewPCG(1, 2)), cards)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return g
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

func TestGenerateProducesValidUniqueNumbers(t *testing.T) {
	ctx := context.Background()
	cards := newMemoryChecker()
	g := newSeededGenerator(t, cards)

	for i := 0; i < 1000; i++ {
		number, pin, err := g.Generate(ctx)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(number) != 16 || !strings.HasPrefix(number, "400000") || !isDigits(number) {
			t.Fatalf("malformed card number %q", number)
		}
		if !IsValidCardNumber(number) {
			t.Fatalf("generated number %s fails the checksum", number)
		}
		if len(pin) != 4 || !isDigits(pin) {
			t.Fatalf("malformed pin %q", pin)
		}
		if cards.taken[number] {
			t.Fatalf("duplicate card number %s", number)
		}
		cards.taken[number] = true
	}
	if len(cards.taken) != 1000 {
		t.Fatalf("expected 1000 distinct numbers, got %d", len(cards.taken))
	}
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	ctx := context.Background()
	first := newSeededGenerator(t, newMemoryChecker())
	second := newSeededGenerator(t, newMemoryChecker())

	for i := 0; i < 20; i++ {
		n1, p1, _ := first.Generate(ctx)
		n2, p2, _ := second.Generate(ctx)
		if n1 != n2 || p1 != p2 {
			t.Fatalf("draw %d differs: %s/%s vs %s/%s", i, n1, p1, n2, p2)
		}
	}
}

func TestGenerateSkipsTakenNumbers(t *testing.T) {
	ctx := context.Background()

	// Первый номер той же последовательности помечаем занятым
	probe := newSeededGenerator(t, newMemoryChecker())
	cards := newMemoryChecker()
	first, _, err := probe.Generate(ctx)
	if err != nil {
		t.Fatalf("probe Generate: %v", err)
	}
	cards.taken[first] = true

	g := newSeededGenerator(t, cards)
	number, _, err := g.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if cards.taken[number] {
		t.Fatalf("Generate returned taken number %s", number)
	}
	if cards.calls < 2 {
		t.Fatalf("expected the taken number to be redrawn, got %d uniqueness checks", cards.calls)
	}
}

type failingChecker struct{ err error }

func (f failingChecker) Exists(context.Context, string) (bool, error) { return false, f.err }

func TestGeneratePropagatesStoreError(t *testing.T) {
	storeErr := errors.New("disk I/O error")
	g := newSeededGenerator(t, failingChecker{err: storeErr})

	if _, _, err := g.Generate(context.Background()); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestGenerateHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := newSeededGenerator(t, newMemoryChecker())

	if _, _, err := g.Generate(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewGeneratorRejectsBadPrefix(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	if _, err := NewGenerator("40a000", rnd, newMemoryChecker()); err == nil {
		t.Error("expected non-digit prefix to be rejected")
	}
	if _, err := NewGenerator("4000000000000000", rnd, newMemoryChecker()); err == nil {
		t.Error("expected full-length prefix to be rejected")
	}
}

func TestNewSecureRand(t *testing.T) {
	rnd, err := NewSecureRand()
	if err != nil {
		t.Fatalf("NewSecureRand: %v", err)
	}
	g, err := NewGenerator("400000", rnd, newMemoryChecker())
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	number, _, err := g.Generate(context.Background())
	if err != nil || !IsValidCardNumber(number) {
		t.Fatalf("Generate = %q, %v", number, err)
	}
}

func TestGenerateAppendsCheckDigit(t *testing.T) {
	ctx := context.Background()
	cards := newMemoryChecker()
	g := newSeededGenerator(t, cards)

	const draws = 100
	for i := 0; i < draws; i++ {
		number, _, err := g.Generate(ctx)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if want := byte('0' + CheckDigit(number[:15])); number[15] != want {
			t.Fatalf("check digit of %s = %c, want %c", number, number[15], want)
		}
	}
	// каждый номер собирается с первой попытки
	if cards.calls != draws {
		t.Fatalf("uniqueness checks = %d, want %d", cards.calls, draws)
	}
}
