package services

import (
	"cardbank/database"
	"cardbank/repository"
	"errors"
)

var (
	// ErrAuthenticationFailed - неверная пара номер карты/PIN
	ErrAuthenticationFailed = errors.New("неверный номер карты или PIN-код")

	// ErrNotFound - операция над несуществующей картой
	ErrNotFound = repository.ErrNotFound

	// ErrStorageUnavailable - хранилище недоступно, операция прерывается
	ErrStorageUnavailable = database.ErrStorageUnavailable

	// ErrTooManyAttempts - слишком много неудачных попыток входа для карты
	ErrTooManyAttempts = errors.New("слишком много неудачных попыток входа")

	// ErrSessionInactive - сессия не авторизована или уже завершена
	ErrSessionInactive = errors.New("сессия не авторизована")

	// ErrInvalidAmount - сумма должна быть больше нуля
	ErrInvalidAmount = errors.New("сумма должна быть больше нуля")
)

// Отказы в переводе. Это ожидаемые исходы, а не сбои.
var (
	ErrSelfTransfer      = errors.New("нельзя перевести деньги на тот же счет")
	ErrInvalidCardNumber = errors.New("номер карты не прошел проверку контрольной суммы")
	ErrUnknownRecipient  = errors.New("такой карты не существует")
	ErrInsufficientFunds = repository.ErrInsufficientFunds
	ErrBalanceOverflow   = repository.ErrBalanceOverflow
)

// IsRejection сообщает, является ли ошибка штатным отказом в переводе
func IsRejection(err error) bool {
	return errors.Is(err, ErrSelfTransfer) ||
		errors.Is(err, ErrInvalidCardNumber) ||
		errors.Is(err, ErrUnknownRecipient) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrBalanceOverflow) ||
		errors.Is(err, ErrInvalidAmount)
}
