package main

import (
	"log"
	_ "time/tzdata"

	"github.com/m3rciful/eventbot/core/cmd"
	"github.com/m3rciful/eventbot/internal/bot"
	"github.com/m3rciful/eventbot/internal/config"
)

func main() {
	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			cfg, err := config.Load(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: bot.Bootstrap,
	})
	if err != nil {
		log.Fatal(err)
	}
}
