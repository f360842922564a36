package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/teranos/clutz/cmd/clutz/commands"
	"github.com/teranos/clutz/errors"
	"github.com/teranos/clutz/logger"
)

func main() {
	// A missing .env is normal; CLUTZ_* variables may come from the shell
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = logger.WithRunID(ctx, uuid.NewString())

	err := commands.RootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, detail := range errors.GetAllDetails(err) {
			fmt.Fprintf(os.Stderr, "  %s\n", detail)
		}
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
	}
	os.Exit(commands.ExitCode(err))
}
