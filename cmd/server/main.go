package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"

	"fertplan/config"
	"fertplan/database"
	"fertplan/router"
)

func main() {
	// 1) Config
	cfg := config.Load()
	log.SetLevel(cfg.Level())
	log.SetHeader("${time_rfc3339} ${level}")

	// 2) DB + automigrate
	db, err := database.NewFactory(cfg)()
	if err != nil {
		log.Fatalf("[boot] database: %v", err)
	}

	// 3) Echo with every route wired
	e := router.NewServer(cfg, db)

	// 4) Graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c
		log.Infof("[boot] received signal: %v; shutting down...", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			log.Errorf("[boot] shutdown: %v", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	// 5) Start
	log.Infof("[boot] listening on :%s (%s)", cfg.Port, db.Dialector.Name())
	if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
