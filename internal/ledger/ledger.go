// Package ledger persists alert episodes to SQLite for audit and the
// alerts CLI. The ledger is optional infrastructure: callers log its
// errors and carry on, so a broken database never fails a tick or a
// notification.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rileyhilliard/vitals/internal/alerting"
	"github.com/rileyhilliard/vitals/internal/errors"
)

// Episode statuses.
const (
	StatusActive       = "active"
	StatusAcknowledged = "acknowledged"
	StatusResolved     = "resolved"
)

// Entry is one alert episode row.
type Entry struct {
	ID             string    `json:"id"`
	RuleID         string    `json:"rule_id"`
	MetricKey      string    `json:"metric_key"`
	Level          string    `json:"level"`
	Value          float64   `json:"value"`
	Threshold      float64   `json:"threshold"`
	Message        string    `json:"message"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	AcknowledgedBy string    `json:"acknowledged_by,omitempty"`
	ResolvedAt     time.Time `json:"resolved_at,omitempty"`
}

// Ledger is the SQLite-backed episode store.
type Ledger struct {
	db   *sql.DB
	path string

	// now is swappable for deterministic prune/ack timestamps in tests.
	now func() time.Time
}

// DefaultPath returns the XDG state location for the ledger database.
func DefaultPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "vitals", "alerts.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "vitals", "alerts.db")
	}
	return filepath.Join(home, ".local", "state", "vitals", "alerts.db")
}

// Open opens (creating if needed) the ledger at path. Empty path means
// DefaultPath.
func Open(path string) (*Ledger, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLedger,
			"Could not create the state directory",
			fmt.Sprintf("Check permissions on %s or set state_dir in the config.", filepath.Dir(path)))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLedger,
			"Could not open the alert ledger",
			fmt.Sprintf("Check that %s is a writable SQLite database.", path))
	}
	// SQLite is single-writer; one connection avoids SQLITE_BUSY races.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.WrapWithCode(err, errors.ErrLedger,
			"Could not open the alert ledger",
			fmt.Sprintf("Check that %s is a writable SQLite database.", path))
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, errors.WrapWithCode(err, errors.ErrLedger,
				fmt.Sprintf("Could not apply %s", pragma), "")
		}
	}

	l := &Ledger{db: db, path: path, now: time.Now}
	if err := l.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			rule_id TEXT NOT NULL,
			metric_key TEXT NOT NULL,
			level TEXT NOT NULL,
			value REAL NOT NULL,
			threshold REAL NOT NULL,
			message TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			acknowledged_by TEXT,
			resolved_at INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts(status);`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return errors.WrapWithCode(err, errors.ErrLedger,
				"Could not initialize the alert ledger schema",
				fmt.Sprintf("The database at %s may be corrupt; remove it to start fresh.", l.path))
		}
	}
	return nil
}

// Path returns the database location.
func (l *Ledger) Path() string { return l.path }

// Close closes the database.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// RecordEvent applies one engine event: firing inserts an active row,
// resolved closes the episode. A resolved event whose episode row is
// missing (ledger created mid-episode) is a no-op.
func (l *Ledger) RecordEvent(ctx context.Context, ev alerting.Event) error {
	ts := ev.Timestamp.UnixNano()
	if ev.Kind == alerting.KindFiring {
		_, err := l.db.ExecContext(ctx, `
			INSERT INTO alerts (id, rule_id, metric_key, level, value, threshold, message, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ev.ID, ev.RuleID, ev.MetricKey, ev.Level, ev.Value, ev.Threshold, ev.Message, StatusActive, ts, ts,
		)
		if err != nil {
			return fmt.Errorf("insert episode: %w", err)
		}
		return nil
	}
	_, err := l.db.ExecContext(ctx, `
		UPDATE alerts SET status = ?, resolved_at = ?, updated_at = ?
		WHERE id = ? AND status != ?`,
		StatusResolved, ts, ts, ev.ID, StatusResolved,
	)
	if err != nil {
		return fmt.Errorf("resolve episode: %w", err)
	}
	return nil
}

// Active returns open episodes (active or acknowledged), newest first.
func (l *Ledger) Active(ctx context.Context) ([]Entry, error) {
	return l.query(ctx, `
		SELECT id, rule_id, metric_key, level, value, threshold, message, status, created_at, updated_at, acknowledged_by, resolved_at
		FROM alerts WHERE status != ? ORDER BY created_at DESC`, StatusResolved)
}

// History returns up to limit episodes of any status, newest first.
// limit <= 0 applies a default of 50.
func (l *Ledger) History(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	return l.query(ctx, `
		SELECT id, rule_id, metric_key, level, value, threshold, message, status, created_at, updated_at, acknowledged_by, resolved_at
		FROM alerts ORDER BY created_at DESC LIMIT ?`, limit)
}

// Get returns one episode by id.
func (l *Ledger) Get(ctx context.Context, id string) (*Entry, error) {
	rows, err := l.query(ctx, `
		SELECT id, rule_id, metric_key, level, value, threshold, message, status, created_at, updated_at, acknowledged_by, resolved_at
		FROM alerts WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrLedger,
			fmt.Sprintf("No alert with id %s", id),
			"Run 'vitals alerts history' to list known alert ids.")
	}
	return &rows[0], nil
}

// Find resolves a full id or a unique id prefix to one episode. Short
// prefixes are how episodes are referenced from the command line.
func (l *Ledger) Find(ctx context.Context, idOrPrefix string) (*Entry, error) {
	rows, err := l.query(ctx, `
		SELECT id, rule_id, metric_key, level, value, threshold, message, status, created_at, updated_at, acknowledged_by, resolved_at
		FROM alerts WHERE id LIKE ? || '%' ORDER BY created_at DESC LIMIT 2`, idOrPrefix)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, errors.New(errors.ErrLedger,
			fmt.Sprintf("No alert matches %q", idOrPrefix),
			"Run 'vitals alerts history' to list known alert ids.")
	case 1:
		return &rows[0], nil
	default:
		return nil, errors.New(errors.ErrLedger,
			fmt.Sprintf("Alert id %q is ambiguous", idOrPrefix),
			"Give more characters of the id; 'vitals alerts list' shows them.")
	}
}

// Acknowledge flags an active episode as seen by user.
func (l *Ledger) Acknowledge(ctx context.Context, id, user string) error {
	now := l.now().UnixNano()
	res, err := l.db.ExecContext(ctx, `
		UPDATE alerts SET status = ?, acknowledged_by = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		StatusAcknowledged, user, now, id, StatusActive,
	)
	if err != nil {
		return fmt.Errorf("acknowledge episode: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		entry, getErr := l.Get(ctx, id)
		if getErr != nil {
			return getErr
		}
		return errors.New(errors.ErrLedger,
			fmt.Sprintf("Alert %s is %s, not active", id, entry.Status),
			"Only active alerts can be acknowledged.")
	}
	return nil
}

// Resolve manually closes an open episode.
func (l *Ledger) Resolve(ctx context.Context, id string) error {
	now := l.now().UnixNano()
	res, err := l.db.ExecContext(ctx, `
		UPDATE alerts SET status = ?, resolved_at = ?, updated_at = ?
		WHERE id = ? AND status != ?`,
		StatusResolved, now, now, id, StatusResolved,
	)
	if err != nil {
		return fmt.Errorf("resolve episode: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, getErr := l.Get(ctx, id); getErr != nil {
			return getErr
		}
		return errors.New(errors.ErrLedger,
			fmt.Sprintf("Alert %s is already resolved", id), "")
	}
	return nil
}

// Prune deletes resolved episodes older than the given age and returns
// how many rows were removed. Open episodes are never pruned.
func (l *Ledger) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := l.now().Add(-olderThan).UnixNano()
	res, err := l.db.ExecContext(ctx, `
		DELETE FROM alerts WHERE status = ? AND resolved_at IS NOT NULL AND resolved_at < ?`,
		StatusResolved, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("prune episodes: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// CountPrunable reports how many rows Prune would delete, for dry runs.
func (l *Ledger) CountPrunable(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := l.now().Add(-olderThan).UnixNano()
	var n int
	err := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM alerts WHERE status = ? AND resolved_at IS NOT NULL AND resolved_at < ?`,
		StatusResolved, cutoff).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count prunable episodes: %w", err)
	}
	return n, nil
}

func (l *Ledger) query(ctx context.Context, query string, args ...interface{}) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var createdNS, updatedNS int64
		var ackBy sql.NullString
		var resolvedNS sql.NullInt64
		if err := rows.Scan(&e.ID, &e.RuleID, &e.MetricKey, &e.Level, &e.Value, &e.Threshold,
			&e.Message, &e.Status, &createdNS, &updatedNS, &ackBy, &resolvedNS); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		e.CreatedAt = time.Unix(0, createdNS)
		e.UpdatedAt = time.Unix(0, updatedNS)
		if ackBy.Valid {
			e.AcknowledgedBy = ackBy.String
		}
		if resolvedNS.Valid {
			e.ResolvedAt = time.Unix(0, resolvedNS.Int64)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
