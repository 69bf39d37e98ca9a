package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/payments-ledger-engine/internal/config"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/events/kafka"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/ledger"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/logging"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/processor"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/storage/memory"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/storage/postgres"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledger: %v\n", err)
		return 1
	}

	logger, _, err := logging.New(logging.Config{
		Environment: logging.Environment(cfg.Log.Environment),
		Level:       cfg.Log.Level,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := os.Open(cfg.Input.Path)
	if err != nil {
		logger.Error("failed to open input", zap.String("path", cfg.Input.Path), zap.Error(err))
		return 1
	}
	defer in.Close()

	var out io.Writer = os.Stdout
	var outFile *os.File
	if cfg.Output.Path != "" && cfg.Output.Path != "-" {
		outFile, err = os.Create(cfg.Output.Path)
		if err != nil {
			logger.Error("failed to create output", zap.String("path", cfg.Output.Path), zap.Error(err))
			return 1
		}
		defer outFile.Close() // early returns; closeOutput reports the real close
		out = outFile
	}

	l := ledger.NewLedger(memory.NewMemoryAccountStore(), memory.NewMemoryTransactionLog())
	var opts []processor.Option

	if cfg.KafkaEnabled() {
		publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Compression)
		if err != nil {
			logger.Error("failed to create event publisher", zap.Error(err))
			return 1
		}
		defer publisher.Close()
		opts = append(opts, processor.WithPublisher(publisher))
		logger.Info("publishing transaction events",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	if cfg.PostgresEnabled() {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			logger.Error("failed to open database", zap.Error(err))
			return 1
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			logger.Error("failed to connect to database", zap.Error(err))
			return 1
		}

		store := postgres.NewPostgresSnapshotStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("failed to create snapshot schema", zap.Error(err))
			return 1
		}
		opts = append(opts, processor.WithSnapshotStore(store))
	}

	p := processor.New(l, logger, opts...)
	_, runErr := p.Run(ctx, in, out)
	if err := closeOutput(outFile); err != nil {
		logger.Error("failed to close output", zap.String("path", cfg.Output.Path), zap.Error(err))
		return 1
	}
	if runErr != nil {
		logger.Error("run failed", zap.String("run_id", p.RunID()), zap.Error(runErr))
		return 1
	}
	return 0
}

// closeOutput closes the report file; nil means stdout.
func closeOutput(f *os.File) error {
	if f == nil {
		return nil
	}
	return f.Close()
}
