package main

import (
	"embed"
	"flag"
	"log"

	"github.com/chazu/brepview/pkg/config"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	configPath := flag.String("config", "", "path to a brepview TOML config")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("brepview: %v", err)
		}
		cfg = c
	}

	app := NewAppWithConfig(cfg)
	err := wails.Run(&options.App{
		Title:  "brepview",
		Width:  cfg.Render.Width + 420,
		Height: cfg.Render.Height + 80,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup: app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		log.Fatalf("brepview: %v", err)
	}
}
