package cli

import (
	"bufio"
	"cardbank/services"
	"cardbank/utils"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type mainHandler func(ctx context.Context) (signal, error)

type accountHandler func(ctx context.Context, session *services.Session) (signal, error)

// App - текстовый интерфейс банка поверх произвольного ввода и вывода
type App struct {
	bank   *services.BankService
	in     *bufio.Scanner
	out    io.Writer
	logger *utils.Logger

	mainHandlers    map[Command]mainHandler
	accountHandlers map[Command]accountHandler
}

// NewApp создает интерфейс и проверяет, что каждому пункту меню назначен обработчик
func NewApp(bank *services.BankService, in io.Reader, out io.Writer, logger *utils.Logger) (*App, error) {
	a := &App{
		bank:   bank,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
	a.mainHandlers = map[Command]mainHandler{
		CommandCreateAccount: a.createAccount,
		CommandLogIn:         a.logIn,
		CommandExit:          a.exit,
	}
	a.accountHandlers = map[Command]accountHandler{
		CommandBalance:      a.balance,
		CommandAddIncome:    a.addIncome,
		CommandTransfer:     a.transfer,
		CommandCloseAccount: a.closeAccount,
		CommandLogOut:       a.logOut,
		CommandExit:         a.exitAccount,
	}

	if err := checkHandlers(mainMenu, a.mainHandlers); err != nil {
		return nil, fmt.Errorf("главное меню: %w", err)
	}
	if err := checkHandlers(accountMenu, a.accountHandlers); err != nil {
		return nil, fmt.Errorf("меню карты: %w", err)
	}
	return a, nil
}

// Run показывает главное меню, пока пользователь не выберет выход или не закончится ввод.
// Ошибки хранилища прерывают работу и возвращаются вызывающему.
func (a *App) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		a.print(mainMenu.String())
		line, ok := a.readLine()
		if !ok {
			a.println("\nBye!")
			return a.in.Err()
		}

		command, ok := mainMenu.parse(line)
		if !ok {
			a.println("\nUnknown option.\n")
			continue
		}

		a.logger.Debug("Main menu command: %s", command)
		sig, err := a.mainHandlers[command](ctx)
		if err != nil {
			return err
		}
		if sig == signalExit {
			return nil
		}
	}
}

func (a *App) createAccount(ctx context.Context) (signal, error) {
	creds, err := a.bank.CreateAccount(ctx)
	if err != nil {
		return signalExit, fmt.Errorf("ошибка создания счета: %w", err)
	}
	a.println("\nYour card has been created")
	a.println("Your card number:")
	a.println(creds.Number)
	a.println("Your card PIN:")
	a.println(creds.PIN)
	a.println("")
	return signalContinue, nil
}

func (a *App) logIn(ctx context.Context) (signal, error) {
	a.println("\nEnter your card number:")
	number, ok := a.readLine()
	if !ok {
		return a.exit(ctx)
	}
	a.println("Enter your PIN:")
	pin, ok := a.readLine()
	if !ok {
		return a.exit(ctx)
	}

	session, err := a.bank.Authenticate(ctx, strings.TrimSpace(number), strings.TrimSpace(pin))
	if errors.Is(err, services.ErrAuthenticationFailed) {
		a.println("\nWrong card number or PIN!\n")
		return signalContinue, nil
	}
	if errors.Is(err, services.ErrTooManyAttempts) {
		a.println("\nToo many failed attempts. Try again later!\n")
		return signalContinue, nil
	}
	if err != nil {
		return signalExit, fmt.Errorf("ошибка входа: %w", err)
	}

	a.println("\nYou have successfully logged in!\n")
	return a.runAccount(ctx, session)
}

func (a *App) exit(context.Context) (signal, error) {
	a.println("\nBye!")
	return signalExit, nil
}

// runAccount показывает меню карты, пока сессия авторизована
func (a *App) runAccount(ctx context.Context, session *services.Session) (signal, error) {
	defer session.Logout()

	for {
		if err := ctx.Err(); err != nil {
			return signalExit, err
		}

		a.print(accountMenu.String())
		line, ok := a.readLine()
		if !ok {
			return a.exitAccount(ctx, session)
		}

		command, ok := accountMenu.parse(line)
		if !ok {
			a.println("\nUnknown option.\n")
			continue
		}

		a.logger.Debug("Session %s: account menu command: %s", session.ID, command)
		sig, err := a.accountHandlers[command](ctx, session)
		if errors.Is(err, services.ErrNotFound) {
			// Карту удалили в другом процессе
			a.println("\nSuch a card does not exist.\n")
			return signalContinue, nil
		}
		if err != nil {
			return signalExit, err
		}
		switch sig {
		case signalLeave:
			return signalContinue, nil
		case signalExit:
			return signalExit, nil
		}
	}
}

func (a *App) balance(ctx context.Context, session *services.Session) (signal, error) {
	balance, err := session.Balance(ctx)
	if err != nil {
		return signalExit, err
	}
	a.printf("\nBalance: %d\n\n", balance)
	return signalContinue, nil
}

func (a *App) addIncome(ctx context.Context, session *services.Session) (signal, error) {
	a.println("\nEnter income:")
	amount, ok := a.readAmount()
	if !ok {
		a.println("Income must be a positive whole number.\n")
		return signalContinue, nil
	}

	err := session.Deposit(ctx, amount)
	if errors.Is(err, services.ErrInvalidAmount) {
		a.println("Income must be a positive whole number.\n")
		return signalContinue, nil
	}
	if errors.Is(err, services.ErrBalanceOverflow) {
		a.println("Balance limit exceeded!\n")
		return signalContinue, nil
	}
	if err != nil {
		return signalExit, err
	}
	a.println("Income was added!\n")
	return signalContinue, nil
}

func (a *App) transfer(ctx context.Context, session *services.Session) (signal, error) {
	a.println("\nTransfer")
	a.println("Enter card number:")
	line, ok := a.readLine()
	if !ok {
		return a.exitAccount(ctx, session)
	}
	to := strings.TrimSpace(line)

	if err := session.CheckRecipient(ctx, to); err != nil {
		return a.transferOutcome(err)
	}

	a.println("Enter how much money you want to transfer:")
	amount, ok := a.readAmount()
	if !ok {
		return a.transferOutcome(services.ErrInvalidAmount)
	}
	return a.transferOutcome(session.Transfer(ctx, to, amount))
}

// transferOutcome печатает результат перевода; отказы не прерывают работу меню
func (a *App) transferOutcome(err error) (signal, error) {
	switch {
	case err == nil:
		a.println("Success!\n")
	case errors.Is(err, services.ErrSelfTransfer):
		a.println("You can't transfer money to the same account!\n")
	case errors.Is(err, services.ErrInvalidCardNumber):
		a.println("Probably you made a mistake in the card number. Please try again!\n")
	case errors.Is(err, services.ErrUnknownRecipient):
		a.println("Such a card does not exist.\n")
	case errors.Is(err, services.ErrInsufficientFunds):
		a.println("Not enough money!\n")
	case errors.Is(err, services.ErrInvalidAmount):
		a.println("Amount must be a positive whole number.\n")
	case errors.Is(err, services.ErrBalanceOverflow):
		a.println("The recipient's balance limit would be exceeded!\n")
	default:
		return signalExit, err
	}
	return signalContinue, nil
}

func (a *App) closeAccount(ctx context.Context, session *services.Session) (signal, error) {
	if err := session.Close(ctx); err != nil {
		return signalExit, err
	}
	a.println("\nThe account has been closed!\n")
	return signalLeave, nil
}

func (a *App) logOut(_ context.Context, session *services.Session) (signal, error) {
	session.Logout()
	a.println("\nYou have successfully logged out!\n")
	return signalLeave, nil
}

func (a *App) exitAccount(ctx context.Context, session *services.Session) (signal, error) {
	session.Logout()
	return a.exit(ctx)
}

// readLine читает следующую строку; false означает конец ввода
func (a *App) readLine() (string, bool) {
	if !a.in.Scan() {
		return "", false
	}
	return a.in.Text(), true
}

// readAmount читает целую сумму; false при конце ввода или нечисловой строке
func (a *App) readAmount() (int64, bool) {
	line, ok := a.readLine()
	if !ok {
		return 0, false
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

func (a *App) print(s string) {
	fmt.Fprint(a.out, s)
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}
