package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"autosonic/internal/config"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, cfgErr := config.Load()
	log := newLogger(cfg.Log)
	app := NewApp(cfg, cfgErr, log)

	err := wails.Run(&options.App{
		Title:     "AutoSonic",
		Width:     1024,
		Height:    768,
		MinWidth:  720,
		MinHeight: 560,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Logger:             log,
		LogLevel:           logLevel(cfg.Log.Level),
		LogLevelProduction: logLevel(cfg.Log.Level),
		OnStartup:          app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "autosonic: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) logger.Logger {
	if cfg.File != "" {
		return logger.NewFileLogger(cfg.File)
	}
	return logger.NewDefaultLogger()
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "trace":
		return logger.TRACE
	case "debug":
		return logger.DEBUG
	case "warning":
		return logger.WARNING
	case "error":
		return logger.ERROR
	default:
		return logger.INFO
	}
}
