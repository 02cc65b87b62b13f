package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/PoluyanbIch/TimedQuizBot/internal/config"
	"github.com/PoluyanbIch/TimedQuizBot/internal/telegram"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := telegram.NewBot(cfg)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("🤖 Bot is starting for chat %d...", cfg.ChatID)
	bot.Start(ctx)
	log.Println("⏹️ Bot stopped")
}
