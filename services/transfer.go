package services

import (
	"cardbank/repository"
	"context"
	"errors"
	"fmt"
)

// Transfer переводит amount с карты from на карту to.
//
// Проверки выполняются по порядку, и первая неудачная прерывает перевод:
// перевод самому себе, контрольная сумма получателя, существование получателя,
// положительность суммы, достаточность средств. Списание и зачисление
// выполняются в одной транзакции, поэтому сбой зачисления откатывает списание.
// Если баланс получателя переполнился бы, перевод отклоняется с ErrBalanceOverflow.
func Transfer(ctx context.Context, store repository.Store, from, to string, amount int64) error {
	return store.Transaction(ctx, func(tx repository.Store) error {
		if err := CheckRecipient(ctx, tx, from, to); err != nil {
			return err
		}

		if amount <= 0 {
			return ErrInvalidAmount
		}

		// Достаточность средств проверяется условным списанием
		if err := tx.Debit(ctx, from, amount); err != nil {
			if errors.Is(err, ErrInsufficientFunds) {
				return err
			}
			return fmt.Errorf("ошибка списания средств: %w", err)
		}
		if err := tx.AddBalance(ctx, to, amount); err != nil {
			if errors.Is(err, ErrBalanceOverflow) {
				return err
			}
			return fmt.Errorf("ошибка зачисления средств: %w", err)
		}
		return nil
	})
}

// CheckRecipient выполняет проверки получателя без изменения балансов:
// перевод самому себе, контрольная сумма и существование карты to.
func CheckRecipient(ctx context.Context, store repository.Store, from, to string) error {
	if to == from {
		return ErrSelfTransfer
	}
	if !IsValidCardNumber(to) {
		return ErrInvalidCardNumber
	}
	exists, err := store.Exists(ctx, to)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUnknownRecipient
	}
	return nil
}
