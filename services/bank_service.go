package services

import (
	"cardbank/repository"
	"cardbank/utils"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Credentials - номер карты и PIN-код
type Credentials struct {
	Number string `json:"number" validate:"required,len=16,number"`
	PIN    string `json:"pin" validate:"required,len=4,number"`
}

// BankService предоставляет операции создания карт и входа в систему
type BankService struct {
	store     repository.Store
	generator *Generator
	validator *validator.Validate
	logger    *utils.Logger
	metrics   *utils.Metrics
	limiter   *utils.LoginLimiter
}

// NewBankService создает новый экземпляр BankService
func NewBankService(store repository.Store, generator *Generator, logger *utils.Logger, metrics *utils.Metrics) *BankService {
	return &BankService{
		store:     store,
		generator: generator,
		validator: validator.New(),
		logger:    logger,
		metrics:   metrics,
	}
}

// CreateAccount выпускает новую карту с нулевым балансом.
// Если номер заняли между генерацией и вставкой, генерация повторяется.
func (s *BankService) CreateAccount(ctx context.Context) (*Credentials, error) {
	startTime := time.Now()
	for {
		number, pin, err := s.generator.Generate(ctx)
		if err != nil {
			s.metrics.RecordCardOperation(utils.OpCreate, err)
			s.logger.Operation("create", startTime, err)
			return nil, fmt.Errorf("ошибка генерации номера карты: %w", err)
		}

		created, err := s.store.Create(ctx, number, pin)
		if err != nil {
			s.metrics.RecordCardOperation(utils.OpCreate, err)
			s.logger.Operation("create", startTime, err)
			return nil, err
		}
		if !created {
			s.logger.Debug("Card %s was taken concurrently, regenerating", maskCardNumber(number))
			continue
		}

		s.metrics.RecordCardOperation(utils.OpCreate, nil)
		s.logger.Info("Card %s created", maskCardNumber(number))
		return &Credentials{Number: number, PIN: pin}, nil
	}
}

// SetLoginLimiter включает ограничение неудачных попыток входа; nil отключает его
func (s *BankService) SetLoginLimiter(limiter *utils.LoginLimiter) {
	s.limiter = limiter
}

// NewSession создает неавторизованную сессию поверх хранилища сервиса
func (s *BankService) NewSession() *Session {
	return NewSession(s.store, s.logger, s.metrics)
}

// Authenticate проверяет учетные данные и возвращает авторизованную сессию.
// Данные неверного формата отклоняются без обращения к хранилищу.
func (s *BankService) Authenticate(ctx context.Context, number, pin string) (*Session, error) {
	creds := Credentials{Number: number, PIN: pin}
	if err := s.validator.Struct(creds); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			s.metrics.RecordCardOperation(utils.OpLogin, ErrAuthenticationFailed)
			s.logger.Debug("Rejected malformed credentials: %v", validationErrors)
			return nil, ErrAuthenticationFailed
		}
		return nil, err
	}

	if s.limiter != nil && !s.limiter.Allow(number) {
		s.logger.Info("Login for %s blocked until %s", maskCardNumber(number), s.limiter.RetryAt(number).Format(time.TimeOnly))
		return nil, ErrTooManyAttempts
	}

	session := s.NewSession()
	err := session.Login(ctx, number, pin)
	if s.limiter != nil {
		switch {
		case err == nil:
			s.limiter.Reset(number)
		case errors.Is(err, ErrAuthenticationFailed):
			s.limiter.Fail(number)
		}
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// maskCardNumber маскирует номер карты
func maskCardNumber(number string) string {
	if len(number) != cardNumberLength {
		return number
	}
	return number[:4] + " **** **** " + number[12:]
}
