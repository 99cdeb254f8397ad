package services

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

const (
	cardNumberLength = 16
	pinLength        = 4
)

// NumberChecker сообщает, занят ли номер карты
type NumberChecker interface {
	Exists(ctx context.Context, number string) (bool, error)
}

// Generator генерирует уникальные номера карт, проходящие проверку Луна, и PIN-коды
type Generator struct {
	prefix string
	rnd    *rand.Rand
	cards  NumberChecker
}

// NewGenerator создает генератор с префиксом эмитента prefix и источником случайности rnd
func NewGenerator(prefix string, rnd *rand.Rand, cards NumberChecker) (*Generator, error) {
	if len(prefix) >= cardNumberLength {
		return nil, fmt.Errorf("префикс эмитента %q слишком длинный", prefix)
	}
	for _, c := range prefix {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("префикс эмитента %q должен состоять из цифр", prefix)
		}
	}
	return &Generator{prefix: prefix, rnd: rnd, cards: cards}, nil
}

// NewSecureRand возвращает генератор ChaCha8, засеянный из crypto/rand
func NewSecureRand() (*rand.Rand, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("ошибка инициализации генератора случайных чисел: %w", err)
	}
	return rand.New(rand.NewChaCha8(seed)), nil
}

// Generate возвращает свободный номер карты и PIN-код.
// Номер собирается из префикса, случайных цифр и контрольной цифры Луна;
// занятые номера отбрасываются. Число попыток не ограничено, но цикл прерывается по ctx.
func (g *Generator) Generate(ctx context.Context) (string, string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}

		body := g.prefix + g.digits(cardNumberLength-1-len(g.prefix))
		number := body + strconv.Itoa(CheckDigit(body))

		taken, err := g.cards.Exists(ctx, number)
		if err != nil {
			return "", "", err
		}
		if taken {
			continue
		}

		return number, g.digits(pinLength), nil
	}
}

func (g *Generator) digits(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + g.rnd.IntN(10)))
	}
	return b.String()
}
