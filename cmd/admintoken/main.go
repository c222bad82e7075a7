// Command admintoken выпускает JWT организатора для REST API.
package main

import (
	"flag"
	"fmt"
	"os"

	"giftbot/internal/config"
	"giftbot/internal/services"
)

func main() {
	telegramID := flag.Int64("id", 0, "Telegram ID организатора (по умолчанию ADMIN_TELEGRAM_ID)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	id := *telegramID
	if id == 0 {
		id = cfg.AdminTelegramID
	}
	if id == 0 {
		fmt.Fprintln(os.Stderr, "telegram id is required: set ADMIN_TELEGRAM_ID or pass -id")
		os.Exit(2)
	}

	auth := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpiration, cfg.AdminTelegramID, cfg.TelegramBotToken)
	token, err := auth.IssueToken(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
