package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/clipshelf/internal/buildinfo"
	"github.com/dmitrijs2005/clipshelf/internal/client/cli"
	"github.com/dmitrijs2005/clipshelf/internal/client/config"
	"github.com/dmitrijs2005/clipshelf/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger, closer := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	})
	defer closer.Close()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
