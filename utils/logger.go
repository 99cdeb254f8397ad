package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Уровни логирования
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelError = "error"
)

// Logger объединяет логгеры по уровням
type Logger struct {
	info  *log.Logger
	err   *log.Logger
	debug *log.Logger
	level string
	files []*os.File
}

// NewLogger создает логгер, пишущий все уровни в w
func NewLogger(w io.Writer, level string) *Logger {
	return &Logger{
		info:  log.New(w, "INFO: ", log.Ldate|log.Ltime),
		err:   log.New(w, "ERROR: ", log.Ldate|log.Ltime),
		debug: log.New(w, "DEBUG: ", log.Ldate|log.Ltime),
		level: level,
	}
}

// NewFileLogger создает логгер, пишущий в info.log, error.log и debug.log в каталоге dir
func NewFileLogger(dir, level string) (*Logger, error) {
	// Создаем директорию для логов, если она не существует
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога логов: %w", err)
	}

	l := &Logger{level: level}
	open := func(name string) (*os.File, error) {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия %s: %w", name, err)
		}
		l.files = append(l.files, f)
		return f, nil
	}

	infoFile, err := open("info.log")
	if err != nil {
		l.Close()
		return nil, err
	}
	errorFile, err := open("error.log")
	if err != nil {
		l.Close()
		return nil, err
	}
	debugFile, err := open("debug.log")
	if err != nil {
		l.Close()
		return nil, err
	}

	l.info = log.New(infoFile, "INFO: ", log.Ldate|log.Ltime)
	l.err = log.New(errorFile, "ERROR: ", log.Ldate|log.Ltime)
	l.debug = log.New(debugFile, "DEBUG: ", log.Ldate|log.Ltime)
	return l, nil
}

// Writer возвращает приемник информационного уровня, например для логгера GORM
func (l *Logger) Writer() io.Writer {
	return l.info.Writer()
}

// Close закрывает файлы логов
func (l *Logger) Close() error {
	var firstErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.files = nil
	return firstErr
}

// Info логирует информационное сообщение
func (l *Logger) Info(format string, v ...interface{}) {
	if l.level == LevelError {
		return
	}
	l.info.Printf("%s - %s", caller(), fmt.Sprintf(format, v...))
}

// Error логирует сообщение об ошибке
func (l *Logger) Error(format string, v ...interface{}) {
	l.err.Printf("%s - %s", caller(), fmt.Sprintf(format, v...))
}

// Debug логирует отладочное сообщение
func (l *Logger) Debug(format string, v ...interface{}) {
	if l.level != LevelDebug {
		return
	}
	l.debug.Printf("%s - %s", caller(), fmt.Sprintf(format, v...))
}

// Operation логирует операцию с длительностью
func (l *Logger) Operation(operation string, startTime time.Time, err error) {
	duration := time.Since(startTime)
	if err != nil {
		l.Error("Operation %s failed after %v: %v", operation, duration, err)
	} else {
		l.Info("Operation %s completed in %v", operation, duration)
	}
}

func caller() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "???"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
