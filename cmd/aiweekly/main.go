package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"AIWeekly/internal/app"
	"AIWeekly/internal/domain"
	"AIWeekly/internal/logging"
)

func main() {
	daemon := flag.Bool("daemon", false, "keep running and execute on the configured interval")
	checkSES := flag.Bool("check-ses", false, "print SES account status and exit")
	verifySES := flag.String("verify-ses", "", "request SES verification for an email address and exit")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(os.Getenv("LOG_LEVEL"))

	switch {
	case *checkSES:
		application, err := app.New(ctx, logger)
		if err == nil {
			err = application.CheckSES(ctx, os.Stdout)
		}
		if err != nil {
			logger.Error("ses check failed", "error", err)
			os.Exit(1)
		}

	case *verifySES != "":
		application, err := app.New(ctx, logger)
		if err == nil {
			err = application.VerifySES(ctx, *verifySES, os.Stdout)
		}
		if err != nil {
			logger.Error("ses verification request failed", "error", err)
			os.Exit(1)
		}

	case *daemon:
		application, err := app.New(ctx, logger)
		if err != nil {
			logger.Error("bootstrap failed", "error", err)
			os.Exit(1)
		}
		if err := application.RunDaemon(ctx); err != nil {
			logger.Error("daemon stopped", "error", err)
			os.Exit(1)
		}

	default:
		result := app.Execute(ctx, logger)

		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Error("encode result", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(payload))

		if result.Status != domain.RunCompleted {
			os.Exit(1)
		}
	}
}
