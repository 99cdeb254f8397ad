package utils

import (
	"sync"
	"time"
)

// Операции с картами, учитываемые в метриках
const (
	OpCreate   = "create"
	OpClose    = "close"
	OpDeposit  = "deposit"
	OpTransfer = "transfer"
	OpLogin    = "login"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики карт
	CardsCreated      int64
	CardsClosed       int64
	Deposits          int64
	Transfers         int64
	FailedLogins      int64
	LastCardOperation time.Time

	// Отказы в переводе по причинам
	TransferRejections map[string]int64

	// Метрики ошибок
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

// NewMetrics создает пустой набор метрик
func NewMetrics() *Metrics {
	return &Metrics{
		TransferRejections: make(map[string]int64),
		ErrorTypes:         make(map[string]int64),
	}
}

// RecordCardOperation записывает метрики операции с картой
func (m *Metrics) RecordCardOperation(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastCardOperation = time.Now()
	if err != nil {
		if operation == OpLogin {
			m.FailedLogins++
			return
		}
		m.recordErrorLocked(err)
		return
	}

	switch operation {
	case OpCreate:
		m.CardsCreated++
	case OpClose:
		m.CardsClosed++
	case OpDeposit:
		m.Deposits++
	case OpTransfer:
		m.Transfers++
	}
}

// RecordRejection записывает отказ в переводе
func (m *Metrics) RecordRejection(reason error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastCardOperation = time.Now()
	m.TransferRejections[reason.Error()]++
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErrorLocked(err)
}

func (m *Metrics) recordErrorLocked(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}
	m.ErrorTypes[errorType]++
}

// Snapshot возвращает снимок текущих метрик
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rejections := make(map[string]int64, len(m.TransferRejections))
	for k, v := range m.TransferRejections {
		rejections[k] = v
	}
	errorTypes := make(map[string]int64, len(m.ErrorTypes))
	for k, v := range m.ErrorTypes {
		errorTypes[k] = v
	}

	return map[string]interface{}{
		"cards_created":       m.CardsCreated,
		"cards_closed":        m.CardsClosed,
		"deposits":            m.Deposits,
		"transfers":           m.Transfers,
		"failed_logins":       m.FailedLogins,
		"transfer_rejections": rejections,
		"error_count":         m.ErrorCount,
		"last_error_time":     m.LastErrorTime,
		"error_types":         errorTypes,
	}
}
