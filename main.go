package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/honey-shop/cart/cmd"
	"github.com/honey-shop/cart/internal/core"
	logx "github.com/honey-shop/cart/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func main() {
	// Load .env file
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		logx.Warn().Err(err).Msg("could not load .env file")
	}

	// Load structured config from env
	var cfg cmd.AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("failed to process environment config")
	}
	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cmd.App{Config: cfg}
	err := cmd.NewRootCommand(app).ExecuteContext(ctx)
	if cerr := app.Close(); cerr != nil {
		logx.Warn().Err(cerr).Msg("failed to close connections")
	}
	if err != nil {
		logx.Error().Err(err).Msg("cartctl failed")
		stop()
		os.Exit(1)
	}
}
