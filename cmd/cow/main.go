package main

import (
	"log"

	corecmd "github.com/sh0von/cow/core/cmd"
	"github.com/sh0von/cow/internal/bot"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return bot.LoadConfig(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			return bot.NewApp(cfg.(*bot.Config))
		},
	})
	if err != nil {
		log.Fatalf("cow: %v", err)
	}
}
