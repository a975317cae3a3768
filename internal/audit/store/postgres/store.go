// Package postgres persists the decision log in PostgreSQL. Append-only by
// construction: the package exposes no UPDATE or DELETE statement.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"casetrail/internal/audit"
	"casetrail/internal/domain"
	"casetrail/pkg/requestcontext"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the decisions table. BIGSERIAL keeps record identifiers
// strictly increasing across the whole log.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS decisions (
			record_id            BIGSERIAL PRIMARY KEY,
			case_id              TEXT        NOT NULL,
			risk_level           TEXT        NOT NULL,
			confidence           DOUBLE PRECISION NOT NULL,
			reason               TEXT        NOT NULL,
			recommended_action   TEXT        NOT NULL,
			source               TEXT        NOT NULL,
			recovery_probability TEXT        NOT NULL,
			recovery_percentage  INTEGER     NOT NULL,
			sla_status           TEXT        NOT NULL,
			ts                   TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS decisions_case_ts_idx ON decisions (case_id, ts);
		CREATE INDEX IF NOT EXISTS decisions_risk_idx ON decisions (risk_level);
	`)
	if err != nil {
		return fmt.Errorf("migrate decisions table: %w", err)
	}
	return nil
}

// Append inserts one decision inside a transaction. A per-case advisory lock
// serializes writers for the same case so the timestamp guard holds under
// concurrency; writers for different cases do not contend.
func (s *Store) Append(ctx context.Context, record domain.DecisionRecord) (domain.DecisionRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.DecisionRecord{}, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, record.CaseID); err != nil {
		return domain.DecisionRecord{}, fmt.Errorf("lock case %s: %w", record.CaseID, err)
	}

	ts := requestcontext.Now(ctx)
	var last time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT ts FROM decisions WHERE case_id = $1 ORDER BY ts DESC LIMIT 1`,
		record.CaseID).Scan(&last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// first record for this case
	case err != nil:
		return domain.DecisionRecord{}, fmt.Errorf("read last timestamp: %w", err)
	case !ts.After(last):
		ts = last.Add(time.Microsecond)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO decisions (
			case_id, risk_level, confidence, reason, recommended_action,
			source, recovery_probability, recovery_percentage, sla_status, ts
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING record_id`,
		record.CaseID,
		string(record.Verdict.RiskLevel),
		record.Verdict.Confidence,
		record.Verdict.Reason,
		record.Verdict.RecommendedAction,
		string(record.Verdict.Source),
		string(record.Verdict.RecoveryProbability),
		record.Verdict.RecoveryPercent,
		string(record.SLAStatus),
		ts,
	).Scan(&record.RecordID)
	if err != nil {
		return domain.DecisionRecord{}, fmt.Errorf("insert decision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.DecisionRecord{}, fmt.Errorf("commit append: %w", err)
	}

	record.Timestamp = ts
	return record, nil
}

// Query returns matching records in timestamp order.
func (s *Store) Query(ctx context.Context, filter audit.Filter) ([]domain.DecisionRecord, error) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CaseID != "" {
		conditions = append(conditions, "case_id = "+arg(filter.CaseID))
	}
	if filter.RiskLevel != "" {
		conditions = append(conditions, "risk_level = "+arg(string(filter.RiskLevel)))
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, "ts >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "ts <= "+arg(filter.To))
	}

	query := `
		SELECT record_id, case_id, risk_level, confidence, reason,
		       recommended_action, source, recovery_probability,
		       recovery_percentage, sla_status, ts
		FROM decisions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY ts, record_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var records []domain.DecisionRecord
	for rows.Next() {
		var r domain.DecisionRecord
		var level, source, recovery, status string
		if err := rows.Scan(
			&r.RecordID, &r.CaseID, &level, &r.Verdict.Confidence,
			&r.Verdict.Reason, &r.Verdict.RecommendedAction, &source,
			&recovery, &r.Verdict.RecoveryPercent, &status, &r.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		r.Verdict.RiskLevel = domain.RiskLevel(level)
		r.Verdict.Source = domain.VerdictSource(source)
		r.Verdict.RecoveryProbability = domain.RecoveryBand(recovery)
		r.SLAStatus = domain.SLAStatus(status)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return records, nil
}
