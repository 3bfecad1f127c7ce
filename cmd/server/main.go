package main

import (
	"os"

	"heic-converter/internal/app"
	"heic-converter/internal/codec"
	"heic-converter/internal/config"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	zlog.Init()

	cfg, err := config.MustLoad()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Logger.Level)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Str("level", cfg.Logger.Level).Msg("Invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	codec.Register()
	zlog.Logger.Info().Strs("decoders", codec.Formats()).Msg("Image decoders registered")

	application, err := app.NewApp(cfg, &zlog.Logger)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to create app")
	}

	if err := application.Run(); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Server failed")
	}

	zlog.Logger.Info().Msg("Server exited successfully")
	os.Exit(0)
}
