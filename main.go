package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"cleanmachine/app/config"
	"cleanmachine/app/service/engine"
	"cleanmachine/app/service/mcpserver"
	"cleanmachine/app/service/queue"
	"cleanmachine/app/service/sandbox"
	"cleanmachine/app/service/timer"
	"cleanmachine/app/service/transcript"
	"cleanmachine/app/service/web"
	"cleanmachine/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, timer.New)
	do.Provide(di, transcript.New)
	do.Provide(di, queue.New)
	do.Provide(di, sandbox.New)
	do.Provide(di, web.New)
	do.Provide(di, mcpserver.New)
	do.Provide(di, engine.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go do.MustInvoke[*engine.Service](di).Run(appCtx)

	<-appCtx.Done()
}
