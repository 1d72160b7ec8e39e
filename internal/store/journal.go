package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/ir"
)

var _ deferral.Journal = (*Store)(nil)

// PassRecord is a stored checkpoint pass.
type PassRecord struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	Seq           int64  `json:"seq"`
	Entries       int    `json:"entries"`
	Applied       int    `json:"applied"`
	Skipped       int    `json:"skipped"`
	Failed        int    `json:"failed"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// EntryRecord is a stored replayed entry.
type EntryRecord struct {
	PassID   string `json:"pass_id"`
	EntryID  string `json:"entry_id"`
	Category string `json:"category"`
	Key      string `json:"key"`
	Position int    `json:"position"`
	Error    string `json:"error,omitempty"`
}

// CallRecord is a stored replayed call.
type CallRecord struct {
	PassID   string `json:"pass_id"`
	EntryID  string `json:"entry_id"`
	Category string `json:"category"`
	Key      string `json:"key"`
	Ordinal  int    `json:"ordinal"`
	Seq      int64  `json:"seq"`
	Method   string `json:"method"`
	Args     string `json:"args"`
	Outcome  string `json:"outcome"`
	Error    string `json:"error,omitempty"`
}

// WritePass stores pass with its entries and calls in one transaction.
// Uses ON CONFLICT(id) DO NOTHING: a pass already stored is left as is.
// Arguments are stored in their rendered form since they may hold funcs.
func (s *Store) WritePass(ctx context.Context, pass *deferral.Pass) (err error) {
	if pass == nil {
		return errors.New("write pass: nil pass")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write pass: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO passes
		(id, category, seq, entries, applied, skipped, failed, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		pass.ID,
		string(pass.Category),
		pass.Seq,
		len(pass.Entries),
		pass.Applied(),
		pass.Skipped(),
		pass.Failed(),
		ir.EngineVersion,
		ir.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write pass: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write pass: %w", err)
	}
	if n == 0 {
		return tx.Commit()
	}

	for pos, e := range pass.Entries {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO replayed_entries
			(pass_id, entry_id, category, construction_key, position, error)
			VALUES (?, ?, ?, ?, ?, ?)
		`, pass.ID, e.EntryID, string(e.Category), string(e.Key), pos, errText(e.Err)); err != nil {
			return fmt.Errorf("write entry %s: %w", e.EntryID, err)
		}

		for i, c := range e.Calls {
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO replayed_calls
				(pass_id, entry_id, category, construction_key, ordinal, seq, method, args, outcome, error)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				pass.ID,
				e.EntryID,
				string(e.Category),
				string(e.Key),
				i,
				c.Record.Seq,
				c.Record.Method,
				ir.FormatArgs(c.Record.Args),
				string(c.Outcome),
				errText(c.Err),
			); err != nil {
				return fmt.Errorf("write call %s#%d: %w", e.EntryID, i, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("write pass: commit: %w", err)
	}
	return nil
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ReadPasses returns stored passes, all of them when category is empty.
// Ordered by seq ASC, id ASC. Returns an empty slice (not nil) when none
// exist.
func (s *Store) ReadPasses(ctx context.Context, category string) ([]PassRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, seq, entries, applied, skipped, failed, engine_version, ir_version
		FROM passes
		WHERE ? = '' OR category = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, category, category)
	if err != nil {
		return nil, fmt.Errorf("query passes: %w", err)
	}
	defer rows.Close()

	passes := []PassRecord{}
	for rows.Next() {
		var p PassRecord
		if err := rows.Scan(&p.ID, &p.Category, &p.Seq, &p.Entries, &p.Applied, &p.Skipped, &p.Failed, &p.EngineVersion, &p.IRVersion); err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passes: %w", err)
	}
	return passes, nil
}

// ReadPass returns one pass. The bool is false when it does not exist.
func (s *Store) ReadPass(ctx context.Context, id string) (PassRecord, bool, error) {
	var p PassRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, category, seq, entries, applied, skipped, failed, engine_version, ir_version
		FROM passes WHERE id = ?
	`, id).Scan(&p.ID, &p.Category, &p.Seq, &p.Entries, &p.Applied, &p.Skipped, &p.Failed, &p.EngineVersion, &p.IRVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return PassRecord{}, false, nil
	}
	if err != nil {
		return PassRecord{}, false, fmt.Errorf("read pass %s: %w", id, err)
	}
	return p, true, nil
}

// ReadEntries returns a pass's entries in replay order.
func (s *Store) ReadEntries(ctx context.Context, passID string) ([]EntryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pass_id, entry_id, category, construction_key, position, error
		FROM replayed_entries
		WHERE pass_id = ?
		ORDER BY position ASC, id ASC
	`, passID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []EntryRecord{}
	for rows.Next() {
		var e EntryRecord
		if err := rows.Scan(&e.PassID, &e.EntryID, &e.Category, &e.Key, &e.Position, &e.Error); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// ReadCalls returns a pass's calls ordered by seq ASC, id ASC.
func (s *Store) ReadCalls(ctx context.Context, passID string) ([]CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pass_id, entry_id, category, construction_key, ordinal, seq, method, args, outcome, error
		FROM replayed_calls
		WHERE pass_id = ?
		ORDER BY seq ASC, id ASC
	`, passID)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	calls := []CallRecord{}
	for rows.Next() {
		var c CallRecord
		if err := rows.Scan(&c.PassID, &c.EntryID, &c.Category, &c.Key, &c.Ordinal, &c.Seq, &c.Method, &c.Args, &c.Outcome, &c.Error); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return calls, nil
}

// MaxSeq returns the highest seq stored in any pass or call, 0 when the
// journal is empty. A new clock starts there so numbering continues across
// runs.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM passes), 0),
			COALESCE((SELECT MAX(seq) FROM replayed_calls), 0)
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("read max seq: %w", err)
	}
	return seq, nil
}
