package jobs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const logbookTimeLayout = "2006-01-02 15:04:05"

// Logbook пишет строки задач в append-only файл. Каждая запись — одна
// строка вида "<timestamp> - <message>".
type Logbook struct {
	path string

	mu  sync.Mutex
	now func() time.Time
}

// NewLogbook создаёт журнал задачи по заданному пути.
func NewLogbook(path string) *Logbook {
	return &Logbook{
		path: path,
		now:  time.Now,
	}
}

// Append добавляет строку "<timestamp> - <message>".
func (l *Logbook) Append(message string) error {
	return l.AppendRaw(fmt.Sprintf("%s - %s", l.Now().Format(logbookTimeLayout), message))
}

// AppendRaw добавляет строку как есть; перевод строки дописывается.
func (l *Logbook) AppendRaw(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open logbook %s: %w", l.path, err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append logbook line: %w", err)
	}

	return nil
}

// Now возвращает текущее время журнала; часы подменяются в тестах.
func (l *Logbook) Now() time.Time {
	return l.now()
}
