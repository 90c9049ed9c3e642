package main

import (
	"log"
	"os"

	corecmd "github.com/m3rciful/linkbot/core/cmd"
	"github.com/m3rciful/linkbot/internal/app"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		EnvFiles:          []string{".env"},
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.LoadConfig(path)
		},
		Bootstrap: app.Bootstrap,
	})
	if err != nil {
		log.Printf("linkbot: %v", err)
		os.Exit(1)
	}
}
