package cli

import (
	"fmt"
	"strings"
)

// Command - пункт меню
type Command int

const (
	CommandExit Command = iota
	CommandCreateAccount
	CommandLogIn
	CommandBalance
	CommandAddIncome
	CommandTransfer
	CommandCloseAccount
	CommandLogOut
)

func (c Command) String() string {
	switch c {
	case CommandExit:
		return "exit"
	case CommandCreateAccount:
		return "create account"
	case CommandLogIn:
		return "log in"
	case CommandBalance:
		return "balance"
	case CommandAddIncome:
		return "add income"
	case CommandTransfer:
		return "transfer"
	case CommandCloseAccount:
		return "close account"
	case CommandLogOut:
		return "log out"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// signal сообщает циклу меню, что делать после обработчика
type signal int

const (
	signalContinue signal = iota
	signalLeave
	signalExit
)

type entry struct {
	key     string
	command Command
	label   string
}

type menu []entry

var mainMenu = menu{
	{"1", CommandCreateAccount, "Create an account"},
	{"2", CommandLogIn, "Log into account"},
	{"0", CommandExit, "Exit"},
}

var accountMenu = menu{
	{"1", CommandBalance, "Balance"},
	{"2", CommandAddIncome, "Add income"},
	{"3", CommandTransfer, "Do transfer"},
	{"4", CommandCloseAccount, "Close account"},
	{"5", CommandLogOut, "Log out"},
	{"0", CommandExit, "Exit"},
}

func (m menu) String() string {
	var b strings.Builder
	for _, e := range m {
		fmt.Fprintf(&b, "%s. %s\n", e.key, e.label)
	}
	return b.String()
}

// parse возвращает команду по введенной строке
func (m menu) parse(input string) (Command, bool) {
	input = strings.TrimSpace(input)
	for _, e := range m {
		if e.key == input {
			return e.command, true
		}
	}
	return 0, false
}

// checkHandlers проверяет, что у каждого пункта меню есть обработчик и лишних обработчиков нет
func checkHandlers[H any](m menu, handlers map[Command]H) error {
	seen := make(map[string]bool, len(m))
	for _, e := range m {
		if seen[e.key] {
			return fmt.Errorf("повторяющийся пункт меню %q", e.key)
		}
		seen[e.key] = true
		if _, ok := handlers[e.command]; !ok {
			return fmt.Errorf("нет обработчика для команды %s", e.command)
		}
	}
	if len(handlers) != len(m) {
		return fmt.Errorf("в меню %d команд, а обработчиков %d", len(m), len(handlers))
	}
	return nil
}
