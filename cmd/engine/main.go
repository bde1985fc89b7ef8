package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sheikh-saqib/transaction-processing-engine/internal/config"
	"github.com/sheikh-saqib/transaction-processing-engine/internal/csvio"
	"github.com/sheikh-saqib/transaction-processing-engine/internal/engine"
	"github.com/sheikh-saqib/transaction-processing-engine/internal/events/kafka"
	"github.com/sheikh-saqib/transaction-processing-engine/internal/events/noop"
	"github.com/sheikh-saqib/transaction-processing-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-processing-engine/internal/models"
	"github.com/sheikh-saqib/transaction-processing-engine/internal/storage/postgres"
)

func main() {
	verbose := flag.Bool("verbose", false, "log every rejected transaction with its reason")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-verbose] <transactions.csv>\n", os.Args[0])
		os.Exit(2)
	}

	logger := newLogger(*verbose)
	defer logger.Sync()

	if err := run(flag.Arg(0), *verbose, logger); err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

// newLogger builds a production logger on stderr; stdout is reserved for the
// final account table.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func run(path string, verbose bool, logger *zap.Logger) error {
	cfg := config.Load()

	var publisher interfaces.EventPublisher = noop.NewPublisher()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	input, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer input.Close()

	reader, err := csvio.NewReader(bufio.NewReader(input))
	if err != nil {
		return err
	}

	eng := engine.New(publisher, logger)

	invalid := 0
	for {
		raw, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, csvio.ErrMalformedRow) {
				invalid++
				if verbose {
					logger.Warn("skipping malformed row", zap.Error(err))
				}
				continue
			}
			// input-source failure: unrecoverable
			return fmt.Errorf("read input: %w", err)
		}

		tx, err := models.ParseRecord(raw)
		if err != nil {
			invalid++
			if verbose {
				logger.Warn("transaction rejected",
					zap.Int("line", reader.Line()),
					zap.Error(err),
				)
			}
			continue
		}

		if err := eng.Process(tx); err != nil && verbose {
			logger.Warn("transaction rejected",
				zap.Int("line", reader.Line()),
				zap.String("type", string(tx.Kind)),
				zap.Uint16("client", tx.ClientID),
				zap.Uint32("tx", tx.TxID),
				zap.Error(err),
			)
		}
	}

	snapshots := eng.Snapshots()
	if err := csvio.WriteSnapshots(os.Stdout, snapshots); err != nil {
		return fmt.Errorf("write account table: %w", err)
	}

	if cfg.PostgresDSN != "" {
		persistSnapshots(cfg.PostgresDSN, eng.RunID(), snapshots, logger)
	}

	logger.Info("run complete",
		zap.String("run_id", eng.RunID()),
		zap.Int("accepted", eng.Accepted()),
		zap.Int("rejected", eng.Rejected()),
		zap.Int("invalid", invalid),
		zap.Int("accounts", len(snapshots)),
	)
	return nil
}

// persistSnapshots writes the final table to postgres. Failures are logged
// and do not fail the run: the authoritative output already went to stdout.
func persistSnapshots(dsn, runID string, snapshots []models.AccountSnapshot, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sink, err := postgres.Open(ctx, dsn, runID)
	if err != nil {
		logger.Error("postgres snapshot sink unavailable", zap.Error(err))
		return
	}
	defer sink.Close()

	if err := sink.WriteSnapshots(ctx, snapshots); err != nil {
		logger.Error("failed to persist snapshots", zap.Error(err))
	}
}
