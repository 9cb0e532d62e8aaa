package main

import (
	"context"
	"errors"
	"io/fs"
	"log"

	"github.com/dmitrijs2005/itemkeeper/internal/server"
	"github.com/dmitrijs2005/itemkeeper/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; real environment variables still win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
