// Package repository реализует хранилище карт поверх GORM.
package repository

import (
	"cardbank/models"
	"cardbank/utils"
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound возвращается для операций над несуществующей картой
	ErrNotFound = errors.New("карта не найдена")

	// ErrInsufficientFunds - на карте меньше средств, чем требуется списать
	ErrInsufficientFunds = errors.New("недостаточно средств")

	// ErrBalanceOverflow - баланс вышел бы за пределы int64
	ErrBalanceOverflow = errors.New("баланс вышел бы за допустимые пределы")
)

// Store описывает атомарные операции над картами.
// Каждая операция выполняется отдельной транзакцией хранилища,
// а Transaction объединяет несколько операций в одну.
type Store interface {
	Create(ctx context.Context, number, pin string) (bool, error)
	Exists(ctx context.Context, number string) (bool, error)
	Balance(ctx context.Context, number string) (int64, error)
	Verify(ctx context.Context, number, pin string) (bool, error)
	AddBalance(ctx context.Context, number string, delta int64) error
	Debit(ctx context.Context, number string, amount int64) error
	Delete(ctx context.Context, number string) error
	Transaction(ctx context.Context, fn func(Store) error) error
}

// CardRepository хранит карты в таблице card
type CardRepository struct {
	db      *gorm.DB
	pinCost int
}

// NewCardRepository создает репозиторий; pinCost задает стоимость bcrypt для PIN-кодов
func NewCardRepository(db *gorm.DB, pinCost int) *CardRepository {
	return &CardRepository{db: db, pinCost: pinCost}
}

// Create добавляет карту с нулевым балансом. Если номер уже занят, возвращает false
// и ничего не меняет: уникальность обеспечивает ограничение UNIQUE, а не предварительная проверка.
func (r *CardRepository) Create(ctx context.Context, number, pin string) (bool, error) {
	hashed, err := utils.HashPIN(pin, r.pinCost)
	if err != nil {
		return false, err
	}

	card := &models.Card{Number: number, PIN: hashed}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "number"}}, DoNothing: true}).
		Create(card)
	if result.Error != nil {
		return false, fmt.Errorf("ошибка создания карты: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Exists проверяет наличие карты
func (r *CardRepository) Exists(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Card{}).Where("number = ?", number).Count(&count).Error; err != nil {
		return false, fmt.Errorf("ошибка поиска карты: %w", err)
	}
	return count > 0, nil
}

// Balance возвращает баланс карты
func (r *CardRepository) Balance(ctx context.Context, number string) (int64, error) {
	var card models.Card
	err := r.db.WithContext(ctx).Select("balance").Where("number = ?", number).Take(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("ошибка получения баланса: %w", err)
	}
	return card.Balance, nil
}

// Verify сообщает, существует ли карта с такой парой номер/PIN
func (r *CardRepository) Verify(ctx context.Context, number, pin string) (bool, error) {
	var card models.Card
	err := r.db.WithContext(ctx).Select("pin").Where("number = ?", number).Take(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("ошибка получения учетных данных: %w", err)
	}
	return utils.CheckPIN(pin, card.PIN)
}

// AddBalance атомарно прибавляет delta к балансу; delta может быть отрицательной.
// Если результат не помещается в int64, баланс не меняется и возвращается ErrBalanceOverflow.
func (r *CardRepository) AddBalance(ctx context.Context, number string, delta int64) error {
	query := r.db.WithContext(ctx).Model(&models.Card{}).Where("number = ?", number)
	switch {
	case delta > 0:
		query = query.Where("balance <= ?", math.MaxInt64-delta)
	case delta < 0:
		query = query.Where("balance >= ?", math.MinInt64-delta)
	}

	result := query.UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("ошибка обновления баланса: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missOrReject(ctx, number, ErrBalanceOverflow)
	}
	return nil
}

// Debit списывает amount, только если на карте достаточно средств.
// Проверка и списание выполняются одним UPDATE, поэтому конкурентные списания не уводят баланс в минус.
func (r *CardRepository) Debit(ctx context.Context, number string, amount int64) error {
	result := r.db.WithContext(ctx).Model(&models.Card{}).
		Where("number = ? AND balance >= ?", number, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return fmt.Errorf("ошибка списания с баланса: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missOrReject(ctx, number, ErrInsufficientFunds)
	}
	return nil
}

// missOrReject различает отсутствующую карту и невыполненное условие UPDATE
func (r *CardRepository) missOrReject(ctx context.Context, number string, reject error) error {
	exists, err := r.Exists(ctx, number)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return reject
}

// Delete удаляет карту. Для отсутствующей карты возвращает ErrNotFound.
func (r *CardRepository) Delete(ctx context.Context, number string) error {
	result := r.db.WithContext(ctx).Where("number = ?", number).Delete(&models.Card{})
	if result.Error != nil {
		return fmt.Errorf("ошибка удаления карты: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Transaction выполняет fn в одной транзакции. Ошибка или паника в fn откатывает все изменения.
func (r *CardRepository) Transaction(ctx context.Context, fn func(Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CardRepository{db: tx, pinCost: r.pinCost})
	})
}
