package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/sheikh-saqib/transaction-processing-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-processing-engine/internal/models"
)

const schema = `CREATE TABLE IF NOT EXISTS account_snapshots (
	run_id     TEXT NOT NULL,
	client_id  INTEGER NOT NULL,
	available  NUMERIC NOT NULL,
	held       NUMERIC NOT NULL,
	total      NUMERIC NOT NULL,
	locked     BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, client_id)
)`

// SnapshotStore writes final account snapshots to postgres, one row per
// client per run, inside a single database transaction.
type SnapshotStore struct {
	db    *sql.DB
	runID string
}

// Open connects to postgres and ensures the snapshot table exists.
func Open(ctx context.Context, dsn, runID string) (*SnapshotStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize snapshot schema: %w", err)
	}
	return &SnapshotStore{db: db, runID: runID}, nil
}

func (s *SnapshotStore) WriteSnapshots(ctx context.Context, snapshots []models.AccountSnapshot) (err error) {
	const query = `INSERT INTO account_snapshots(run_id, client_id, available, held, total, locked, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, snapshot := range snapshots {
		_, err = dbTx.ExecContext(ctx, query,
			s.runID,
			int64(snapshot.ClientID),
			snapshot.Available,
			snapshot.Held,
			snapshot.Total,
			snapshot.Locked,
			now,
		)
		if err != nil {
			return err
		}
	}

	return dbTx.Commit()
}

// Close releases the database connection.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

var _ interfaces.SnapshotSink = (*SnapshotStore)(nil)
