package models

// Card представляет банковскую карту и счет, привязанный к ней
type Card struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"`
	Number  string `gorm:"column:number;type:text;uniqueIndex;not null"`
	PIN     string `gorm:"column:pin;type:text;not null"`
	Balance int64  `gorm:"column:balance;not null;default:0"`
}

// TableName возвращает имя таблицы для модели Card
func (Card) TableName() string {
	return "card"
}
