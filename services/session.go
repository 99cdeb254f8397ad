package services

import (
	"cardbank/repository"
	"cardbank/utils"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionState - состояние сессии
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateAuthenticated
	StateClosed
	StateLoggedOut
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	case StateLoggedOut:
		return "logged out"
	default:
		return "unknown"
	}
}

// Session связывает пользователя с одной картой на время работы с меню.
// Сессия не держит соединений с хранилищем: каждая операция получает
// и освобождает соединение сама, поэтому завершение сессии ничего не освобождает.
type Session struct {
	ID uuid.UUID

	store   repository.Store
	logger  *utils.Logger
	metrics *utils.Metrics

	state  SessionState
	number string
}

// NewSession создает неавторизованную сессию
func NewSession(store repository.Store, logger *utils.Logger, metrics *utils.Metrics) *Session {
	return &Session{
		ID:      uuid.New(),
		store:   store,
		logger:  logger,
		metrics: metrics,
		state:   StateUnauthenticated,
	}
}

// State возвращает текущее состояние сессии
func (s *Session) State() SessionState {
	return s.state
}

// Login переводит сессию в состояние Authenticated, если пара номер/PIN существует
func (s *Session) Login(ctx context.Context, number, pin string) error {
	if s.state != StateUnauthenticated {
		return ErrSessionInactive
	}

	ok, err := s.store.Verify(ctx, number, pin)
	if err != nil {
		s.metrics.RecordError(err)
		s.logger.Error("Session %s: credential check failed: %v", s.ID, err)
		return err
	}
	if !ok {
		s.metrics.RecordCardOperation(utils.OpLogin, ErrAuthenticationFailed)
		s.logger.Info("Session %s: failed login for %s", s.ID, maskCardNumber(number))
		return ErrAuthenticationFailed
	}

	s.state = StateAuthenticated
	s.number = number
	s.metrics.RecordCardOperation(utils.OpLogin, nil)
	s.logger.Info("Session %s: logged in as %s", s.ID, maskCardNumber(number))
	return nil
}

// Balance возвращает баланс карты
func (s *Session) Balance(ctx context.Context) (int64, error) {
	if s.state != StateAuthenticated {
		return 0, ErrSessionInactive
	}
	return s.store.Balance(ctx, s.number)
}

// Deposit зачисляет положительную сумму на карту
func (s *Session) Deposit(ctx context.Context, amount int64) error {
	if s.state != StateAuthenticated {
		return ErrSessionInactive
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	startTime := time.Now()
	err := s.store.AddBalance(ctx, s.number, amount)
	if errors.Is(err, ErrBalanceOverflow) {
		s.logger.Info("Session %s: deposit of %d rejected: %v", s.ID, amount, err)
		return err
	}
	s.metrics.RecordCardOperation(utils.OpDeposit, err)
	s.logger.Operation("deposit", startTime, err)
	return err
}

// CheckRecipient проверяет получателя до запроса суммы перевода
func (s *Session) CheckRecipient(ctx context.Context, to string) error {
	if s.state != StateAuthenticated {
		return ErrSessionInactive
	}
	return CheckRecipient(ctx, s.store, s.number, to)
}

// Transfer переводит amount на карту to
func (s *Session) Transfer(ctx context.Context, to string, amount int64) error {
	if s.state != StateAuthenticated {
		return ErrSessionInactive
	}

	startTime := time.Now()
	err := Transfer(ctx, s.store, s.number, to, amount)
	switch {
	case err == nil:
		s.metrics.RecordCardOperation(utils.OpTransfer, nil)
		s.logger.Info("Session %s: transferred %d to %s", s.ID, amount, maskCardNumber(to))
	case IsRejection(err):
		s.metrics.RecordRejection(err)
		s.logger.Info("Session %s: transfer to %s rejected: %v", s.ID, maskCardNumber(to), err)
	default:
		s.metrics.RecordCardOperation(utils.OpTransfer, err)
		s.logger.Operation("transfer", startTime, err)
	}
	return err
}

// Close удаляет карту и завершает сессию.
// Если карту уже удалили, сессия все равно закрывается, а вызывающий получает ErrNotFound.
func (s *Session) Close(ctx context.Context) error {
	if s.state != StateAuthenticated {
		return ErrSessionInactive
	}

	err := s.store.Delete(ctx, s.number)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.metrics.RecordCardOperation(utils.OpClose, err)
		s.logger.Error("Session %s: failed to close %s: %v", s.ID, maskCardNumber(s.number), err)
		return err
	}

	s.metrics.RecordCardOperation(utils.OpClose, nil)
	s.logger.Info("Session %s: closed %s", s.ID, maskCardNumber(s.number))
	s.state = StateClosed
	return err
}

// Logout завершает сессию, не затрагивая хранилище
func (s *Session) Logout() {
	if s.state != StateAuthenticated {
		return
	}
	s.state = StateLoggedOut
	s.logger.Info("Session %s: logged out", s.ID)
}
