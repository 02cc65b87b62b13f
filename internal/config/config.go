package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken string
	// Бот обслуживает только один чат
	ChatID int64
	Debug  bool
}

// FromEnv читает настройки из окружения, предварительно подгружая .env если он есть
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return parse(os.Getenv)
}

func parse(getenv func(string) string) (Config, error) {
	cfg := Config{BotToken: getenv("TELEGRAM_BOT_TOKEN")}
	if cfg.BotToken == "" {
		return cfg, errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
	}

	chat := getenv("TELEGRAM_CHAT_ID")
	if chat == "" {
		return cfg, errors.New("TELEGRAM_CHAT_ID environment variable is required")
	}
	id, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return cfg, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", chat, err)
	}
	cfg.ChatID = id

	if v := getenv("BOT_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid BOT_DEBUG %q: %w", v, err)
		}
		cfg.Debug = debug
	}
	return cfg, nil
}
