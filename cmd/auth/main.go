package main

import (
	"log/slog"
	"os"

	"github.com/franpulido/ticketlog/internal/auth/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	if err := a.Run(); err != nil {
		a.Log.Error("server exited", "err", err)
		os.Exit(1)
	}
}
