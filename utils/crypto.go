package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPIN создает bcrypt-хеш PIN-кода с заданной стоимостью
func HashPIN(pin string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", fmt.Errorf("ошибка хеширования PIN-кода: %w", err)
	}
	return string(hashed), nil
}

// CheckPIN проверяет PIN-код по хешу
func CheckPIN(pin, hashed string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pin))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("ошибка проверки PIN-кода: %w", err)
	}
}
