package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Hubmakerlabs/relayr/app"
	"github.com/Hubmakerlabs/relayr/pkg/slog"
	"github.com/alexflint/go-arg"
)

var args app.Config

func main() {
	log, chk := slog.New(os.Stderr)
	arg.MustParse(&args)
	slog.SetLogLevelString(args.LogLevel)
	rl := app.NewRelay(&app.Opts{
		Host:         args.Listen,
		Port:         args.Port,
		AuthRequired: args.AuthRequired,
	})
	rl.Info.Name = args.Name
	rl.Info.Description = args.Description
	if err := rl.Start(); chk.E(err) {
		os.Exit(1)
	}
	url, _ := rl.URL()
	log.I.F("relay listening on %s", url)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.I.Ln("shutting down")
	rl.Close()
}
