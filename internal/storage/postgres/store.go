package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	interfaces "github.com/sheikh-saqib/payments-ledger-engine/internal/interfaces"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/models"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/report"
)

// Schema creates the export table. Rows are keyed by run, so every run adds
// a new snapshot and nothing is ever read back by the ledger itself.
const Schema = `CREATE TABLE IF NOT EXISTS account_snapshots (
	run_id     UUID          NOT NULL,
	position   INTEGER       NOT NULL,
	client_id  INTEGER       NOT NULL,
	available  NUMERIC(24,4) NOT NULL,
	held       NUMERIC(24,4) NOT NULL,
	total      NUMERIC(24,4) NOT NULL,
	locked     BOOLEAN       NOT NULL,
	created_at TIMESTAMPTZ   NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, client_id)
)`

// ErrSnapshotExists is returned when a run id has already been exported.
var ErrSnapshotExists = errors.New("snapshot already exported for this run")

type PostgresSnapshotStore struct {
	db *sql.DB
}

func NewPostgresSnapshotStore(db *sql.DB) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{
		db: db,
	}
}

func (p *PostgresSnapshotStore) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, Schema)
	return err
}

func (p *PostgresSnapshotStore) saveAccount(ctx context.Context, dbTx *sql.Tx, runID string, position int, account models.Account) error {
	const query = `INSERT INTO account_snapshots (run_id, position, client_id, available, held, total, locked)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := dbTx.ExecContext(ctx, query,
		runID,
		position,
		int64(account.ID),
		report.FormatAmount(account.Available),
		report.FormatAmount(account.Held),
		report.FormatAmount(account.Total),
		account.Locked,
	)
	return err
}

// SaveSnapshot writes all accounts of a run in one database transaction;
// either the whole snapshot is stored or none of it.
func (p *PostgresSnapshotStore) SaveSnapshot(ctx context.Context, runID string, accounts []models.Account) (err error) {

	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	for i, account := range accounts {
		err = p.saveAccount(ctx, dbTx, runID, i, account)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
				err = ErrSnapshotExists
			}
			return err
		}
	}

	return dbTx.Commit()
}

// GetSnapshot reads back the snapshot exported for runID, in export order.
// The ledger never reads snapshots; this serves tests and operators.
func (p *PostgresSnapshotStore) GetSnapshot(ctx context.Context, runID string) ([]models.Account, error) {
	const query = `SELECT client_id, available, held, total, locked FROM account_snapshots
	WHERE run_id = $1 ORDER BY position`

	rows, err := p.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var (
			account  models.Account
			clientID int64
		)
		if err := rows.Scan(&clientID, &account.Available, &account.Held, &account.Total, &account.Locked); err != nil {
			return nil, err
		}
		account.ID = uint16(clientID)
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

var _ interfaces.SnapshotStore = (*PostgresSnapshotStore)(nil)
