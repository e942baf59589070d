package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/cogestio/espaceclient/internal/app"
	"github.com/cogestio/espaceclient/internal/seeder"
	"github.com/cogestio/espaceclient/internal/version"
	"github.com/cogestio/espaceclient/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := run(logger)
	if err != nil {
		trace := string(debug.Stack())
		logger.Error(err.Error(), "trace", trace)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	showVersion := flag.Bool("version", false, "display version and exit")
	runSeeder := flag.Bool("seed", false, "seed the initial admin account and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return nil
	}

	application, err := app.NewApplication(logger)
	if err != nil {
		return err
	}
	defer application.DB.Close()

	if *runSeeder {
		seeder.New(application.DB).Run()
		return nil
	}

	// stops the notifier consumers once the server has shut down
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := worker.New(&worker.Worker{
		KafkaStream: application.Kafka,
		DB:          application.DB,
		Mailer:      application.Mailer,
		Helper:      application.Helper(),
		Config:      &application.Config,
		Ctx:         ctx,
	})
	go notifier.NotifierWorker()

	return application.ServeHTTP()
}
