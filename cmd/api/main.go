package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/campusconnect/campus-connect-api/internal/di"
)

func main() {
	a, err := di.InitializeApp()
	if err != nil {
		log.Fatal(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.Run(ctx); err != nil {
		a.Logger.Error("server exited", "error", err)
		stop()
		log.Fatal(err)
	}
}
