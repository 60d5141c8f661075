package main

import (
	"log"

	"github.com/m3rciful/quizbot/core/bootstrap"
	"github.com/m3rciful/quizbot/core/cmd"
	coredatabase "github.com/m3rciful/quizbot/core/database"
	"github.com/m3rciful/quizbot/internal/bot"
)

func main() {
	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config/config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return bot.LoadConfig(path)
		},
		Bootstrap: func(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			cfg := carrier.(*bot.Config)

			// Only the sqlite and postgres backends need a database.
			var dbCfg *coredatabase.Config
			if cfg.Store.Backend != bot.BackendFile {
				dbCfg = &cfg.Database
			}

			res, err := bootstrap.Run(bootstrap.Options{
				Config:   cfg.CoreConfig(),
				Database: dbCfg,
			})
			if err != nil {
				return nil, err
			}
			return bot.NewApp(cfg, res.DB)
		},
	})
	if err != nil {
		log.Fatalf("quizbot: %v", err)
	}
}
