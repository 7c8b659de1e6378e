package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB string `yaml:"db_dsn"`

	AccountID string `yaml:"account_id"`

	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	Quotes struct {
		URL string `yaml:"url"` // websocket-фид котировок; пусто => симулятор

		// TTL — допустимый возраст котировки в кеше. env: QUOTE_TTL
		TTL time.Duration
	} `yaml:"quotes"`

	// Шедулер цикла. CronSpec с секундами, например "*/30 * 9-15 * * MON-FRI"
	// чтобы сканировать только в торговые часы.
	CycleCron string `yaml:"cycle_cron"`

	// Порог actionability по умолчанию (score 0..100), если стратегия
	// не задала свой.
	EntryThreshold float64 `yaml:"entry_threshold"`

	// Сколько воркеров оценивает пары (ограничивает исходящие запросы котировок).
	MonitorWorkers int `yaml:"monitor_workers"`

	// Дальше длительности — только из env, yaml.v2 не умеет time.Duration.

	// Таймаут на один запрос котировки внутри цикла. env: QUOTE_TIMEOUT
	QuoteTimeout time.Duration

	// Реконсилер: после какого возраста снапшот счёта считается STALE
	// и сколько максимум ждём FRESH перед скипом цикла.
	// env: STALENESS_THRESHOLD / MAX_FRESH_WAIT
	StalenessThreshold time.Duration
	MaxFreshWait       time.Duration

	// Кулдаун по паре после отправленного/отклонённого ордера.
	// env: COOLDOWN_PER_PAIR
	CooldownPerPair time.Duration

	// Какую долю позиции продаём по сигналу выхода (0..1].
	SellFraction float64 `yaml:"sell_fraction"`

	// Интервал health-сообщений оператору. env: HEALTH_INTERVAL
	HealthInterval time.Duration

	// Paper-режим: стартовый кеш счёта.
	PaperInitialCash int64 `yaml:"paper_initial_cash"`
}

func NewConfig() (*Config, error) {

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Defaults()
	err = decoder.Decode(config)
	if err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	return config, nil
}

// Defaults — конфиг с дефолтами и env-переопределениями, без yaml-файла.
// Используется paper-бинарём и тестами.
func Defaults() *Config {
	cfg := &Config{
		AccountID:          getenvDefault("ACCOUNT_ID", "main"),
		CycleCron:          getenvDefault("CYCLE_CRON", "*/30 * * * * *"),
		EntryThreshold:     floatFromEnv("ENTRY_THRESHOLD", 80),
		MonitorWorkers:     intFromEnv("MONITOR_WORKERS", 8),
		QuoteTimeout:       durationFromEnv("QUOTE_TIMEOUT", "3s"),
		StalenessThreshold: durationFromEnv("STALENESS_THRESHOLD", "3m"),
		MaxFreshWait:       durationFromEnv("MAX_FRESH_WAIT", "10s"),
		CooldownPerPair:    durationFromEnv("COOLDOWN_PER_PAIR", "90s"),
		SellFraction:       floatFromEnv("SELL_FRACTION", 1.0),
		HealthInterval:     durationFromEnv("HEALTH_INTERVAL", "30s"),
		PaperInitialCash:   int64(intFromEnv("PAPER_INITIAL_CASH", 10_000_000)),
	}
	cfg.Quotes.TTL = durationFromEnv("QUOTE_TTL", "10s")
	return cfg
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
