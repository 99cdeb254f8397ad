package utils

import (
	"sync"
	"time"
)

// LoginLimiter ограничивает число неудачных попыток входа по ключу (номеру карты)
// в скользящем окне
type LoginLimiter struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

// NewLoginLimiter создает новый LoginLimiter
func NewLoginLimiter(limit int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		failures: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow проверяет, разрешена ли попытка входа
func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pruneLocked(key)) < l.limit
}

// Fail записывает неудачную попытку
func (l *LoginLimiter) Fail(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[key] = append(l.pruneLocked(key), l.now())
}

// Reset сбрасывает счетчик для ключа
func (l *LoginLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, key)
}

// RetryAt возвращает время, когда станет доступна следующая попытка
func (l *LoginLimiter) RetryAt(key string) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	failures := l.pruneLocked(key)
	if len(failures) < l.limit {
		return l.now()
	}
	return failures[len(failures)-l.limit].Add(l.window)
}

// pruneLocked отбрасывает попытки за пределами окна
func (l *LoginLimiter) pruneLocked(key string) []time.Time {
	failures, ok := l.failures[key]
	if !ok {
		return nil
	}
	windowStart := l.now().Add(-l.window)
	valid := failures[:0]
	for _, t := range failures {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(l.failures, key)
		return nil
	}
	l.failures[key] = valid
	return valid
}
