package main

import (
	"log"

	corecmd "github.com/m3rciful/leadbot/core/cmd"
	"github.com/m3rciful/leadbot/leadbot/app"
)

func main() {
	if err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig:        app.Load,
		Bootstrap:         app.Bootstrap,
	}); err != nil {
		log.Fatal(err)
	}
}
