package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sacco-ledger-service/internal/config"
	"sacco-ledger-service/internal/server"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("Ledger: no .env file found, relying on system env vars")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.NewLedgerHTTPServer(ctx, cfg); err != nil {
		log.Fatalf("ledger service failed: %v", err)
	}
}
