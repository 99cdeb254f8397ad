package services

// IsValidCardNumber проверяет номер карты по алгоритму Луна.
// Цифры на нечетных позициях (считая слева с единицы) удваиваются,
// из результата больше 9 вычитается 9; номер корректен, если сумма кратна 10.
// Пустая строка и строка с нецифровыми символами некорректны.
func IsValidCardNumber(number string) bool {
	if number == "" {
		return false
	}
	sum := 0
	for i := 0; i < len(number); i++ {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += luhnDigit(int(c-'0'), i)
	}
	return sum%10 == 0
}

// CheckDigit возвращает цифру, дополняющую prefix до корректного номера.
// prefix должен состоять из цифр.
func CheckDigit(prefix string) int {
	sum := 0
	for i := 0; i < len(prefix); i++ {
		sum += luhnDigit(int(prefix[i]-'0'), i)
	}
	// позиция контрольной цифры: len(prefix), индексация с нуля
	for d := 0; d <= 9; d++ {
		if (sum+luhnDigit(d, len(prefix)))%10 == 0 {
			return d
		}
	}
	return 0
}

// luhnDigit возвращает вклад цифры digit, стоящей по индексу i (с нуля)
func luhnDigit(digit, i int) int {
	if i%2 != 0 {
		return digit
	}
	digit *= 2
	if digit > 9 {
		digit -= 9
	}
	return digit
}
