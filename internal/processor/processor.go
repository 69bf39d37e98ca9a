package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	ledgererrors "github.com/sheikh-saqib/payments-ledger-engine/internal/errors"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/ingest"
	interfaces "github.com/sheikh-saqib/payments-ledger-engine/internal/interfaces"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/ledger"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/models"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/models/events"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/report"
)

// Summary counts what happened during one run.
type Summary struct {
	RunID     string
	Rows      int // data rows read, malformed ones included
	Applied   int
	Rejected  int
	Malformed int
	Accounts  int
}

// Processor feeds a CSV stream through the ledger and writes the resulting
// account report. Event publishing and snapshot export are optional.
type Processor struct {
	ledger    *ledger.Ledger
	logger    *zap.Logger
	publisher interfaces.EventPublisher
	snapshots interfaces.SnapshotStore
	runID     string
	now       func() time.Time
}

type Option func(*Processor)

// WithPublisher publishes one event per transaction handed to the ledger.
func WithPublisher(publisher interfaces.EventPublisher) Option {
	return func(p *Processor) {
		p.publisher = publisher
	}
}

// WithSnapshotStore exports the final snapshot after the report is written.
func WithSnapshotStore(store interfaces.SnapshotStore) Option {
	return func(p *Processor) {
		p.snapshots = store
	}
}

func WithRunID(runID string) Option {
	return func(p *Processor) {
		p.runID = runID
	}
}

func New(l *ledger.Ledger, logger *zap.Logger, opts ...Option) *Processor {
	p := &Processor{
		ledger: l,
		logger: logger,
		runID:  uuid.NewString(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(zap.String("run_id", p.runID))
	return p
}

func (p *Processor) RunID() string {
	return p.runID
}

// Run reads every transaction from in, applies it, then writes the account
// report to out. Rejected and malformed rows are logged and skipped; only
// input, output and export failures end the run with an error.
func (p *Processor) Run(ctx context.Context, in io.Reader, out io.Writer) (Summary, error) {
	summary := Summary{RunID: p.runID}

	reader, err := ingest.NewReader(in)
	if err != nil {
		return summary, fmt.Errorf("open input: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		tx, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			var rowErr *ingest.RowError
			if !errors.As(err, &rowErr) {
				return summary, fmt.Errorf("read input: %w", err)
			}
			summary.Rows++
			summary.Malformed++
			p.logger.Warn("skipping malformed row",
				zap.Int("line", rowErr.Line),
				zap.String("code", string(ledgererrors.MalformedRow)),
				zap.Error(rowErr),
			)
			continue
		}

		summary.Rows++
		if applyErr := p.apply(tx); applyErr != nil {
			summary.Rejected++
			p.publish(ctx, tx, applyErr)
			continue
		}
		summary.Applied++
		p.publish(ctx, tx, nil)
	}

	accounts := p.ledger.Snapshot()
	summary.Accounts = len(accounts)

	if err := report.WriteSnapshot(out, accounts); err != nil {
		return summary, fmt.Errorf("write report: %w", err)
	}

	if p.snapshots != nil {
		if err := p.snapshots.SaveSnapshot(ctx, p.runID, accounts); err != nil {
			return summary, fmt.Errorf("export snapshot: %w", err)
		}
	}

	p.logger.Info("run complete",
		zap.Int("rows", summary.Rows),
		zap.Int("applied", summary.Applied),
		zap.Int("rejected", summary.Rejected),
		zap.Int("malformed", summary.Malformed),
		zap.Int("accounts", summary.Accounts),
	)
	return summary, nil
}

func (p *Processor) apply(tx models.Transaction) error {
	err := p.ledger.Apply(tx)
	if err == nil {
		p.logger.Debug("transaction applied",
			zap.Uint32("tx", tx.ID),
			zap.Uint16("client", tx.ClientID),
			zap.String("type", string(tx.Type)),
		)
		return nil
	}

	p.logger.Warn("transaction rejected",
		zap.Uint32("tx", tx.ID),
		zap.Uint16("client", tx.ClientID),
		zap.String("type", string(tx.Type)),
		zap.String("code", string(ledgererrors.CodeOf(err))),
		zap.Error(err),
	)
	return err
}

// publish reports the outcome of tx. A failed publish is logged and the run
// carries on; the report is the authoritative output.
func (p *Processor) publish(ctx context.Context, tx models.Transaction, applyErr error) {
	if p.publisher == nil {
		return
	}

	event := events.TransactionProcessed{
		RunID:         p.runID,
		TransactionID: tx.ID,
		ClientID:      tx.ClientID,
		Type:          string(tx.Type),
		Status:        events.StatusApplied,
		OccurredAt:    p.now().UTC(),
	}
	if tx.Amount.Valid {
		amount := tx.Amount.Decimal
		event.Amount = &amount
	}
	if applyErr != nil {
		event.Status = events.StatusRejected
		event.ErrorCode = string(ledgererrors.CodeOf(applyErr))
		event.Error = applyErr.Error()
	}

	if account, ok := p.ledger.Account(tx.ClientID); ok {
		event.Account = &events.AccountBalance{
			Available: account.Available,
			Held:      account.Held,
			Total:     account.Total,
			Locked:    account.Locked,
		}
	}

	key := strconv.FormatUint(uint64(tx.ClientID), 10)
	if err := p.publisher.Publish(ctx, key, event); err != nil {
		p.logger.Warn("failed to publish transaction event",
			zap.Uint32("tx", tx.ID),
			zap.Uint16("client", tx.ClientID),
			zap.Error(err),
		)
	}
}
