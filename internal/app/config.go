package app

import "time"

// Config описывает настройки запуска приложения.
type Config struct {
	// HTTPAddr — адрес REST API.
	HTTPAddr string
	// MetricsAddr — адрес HTTP-сервера метрик и health-проверок.
	MetricsAddr string
	// PostgresDSN — строка подключения к Postgres. Пустая строка
	// переключает приложение на in-memory хранилище.
	PostgresDSN string
	// KafkaBrokers — список брокеров через запятую. Пустая строка
	// отключает публикацию событий.
	KafkaBrokers string
	// APIBaseURL — базовый URL, по которому периодические задачи
	// обращаются к REST API. Пустая строка выводится из HTTPAddr.
	APIBaseURL string
	// LogDir — каталог для файлов журналов периодических задач.
	LogDir string
	// JobsEnabled включает периодические задачи.
	JobsEnabled bool

	HeartbeatInterval time.Duration
	LowStockInterval  time.Duration
	ReminderInterval  time.Duration
	ReportInterval    time.Duration

	OutboxPollInterval time.Duration
}

// DefaultConfig возвращает базовые настройки для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:           ":8080",
		MetricsAddr:        ":9090",
		LogDir:             "logs",
		JobsEnabled:        true,
		HeartbeatInterval:  1 * time.Minute,
		LowStockInterval:   5 * time.Minute,
		ReminderInterval:   10 * time.Minute,
		ReportInterval:     15 * time.Minute,
		OutboxPollInterval: 1 * time.Second,
	}
}

// apiBaseURL выводит адрес API для задач из конфигурации.
func apiBaseURL(cfg Config) string {
	if cfg.APIBaseURL != "" {
		return cfg.APIBaseURL
	}
	addr := cfg.HTTPAddr
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
