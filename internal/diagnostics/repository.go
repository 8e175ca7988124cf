package diagnostics

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-osc/internal/osc"
)

// Page size limits for List.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// timeLayout has a fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Filter selects drop events. Zero-valued fields do not filter.
type Filter struct {
	Reason        osc.ReasonKind
	Address       string // exact match
	AddressPrefix string
	SwitcherID    string
	Since         time.Time
	Limit         int // default DefaultListLimit, capped at MaxListLimit
	Offset        int
}

// ListResult is one page of drop events, newest first.
type ListResult struct {
	Events []DropEvent `json:"events"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// Repository stores and queries drop events.
type Repository interface {
	Create(ctx context.Context, ev *DropEvent) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountByReason(ctx context.Context) (map[osc.ReasonKind]int, error)
}

// SQLiteRepository keeps drop events in the drop_events table. It also
// serves as a Sink.
type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ Repository = (*SQLiteRepository)(nil)
	_ Sink       = (*SQLiteRepository)(nil)
)

// NewSQLiteRepository creates a repository on an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Name implements Sink.
func (r *SQLiteRepository) Name() string { return "sqlite" }

// WriteDrop implements Sink.
func (r *SQLiteRepository) WriteDrop(ctx context.Context, ev DropEvent) error {
	return r.Create(ctx, &ev)
}

// Create inserts ev. A missing ID or timestamp is filled in.
func (r *SQLiteRepository) Create(ctx context.Context, ev *DropEvent) error {
	if ev.ID == "" {
		*ev = NewDropEvent(ev.SwitcherID, osc.Drop{
			Address:   ev.Address,
			Arguments: ev.Arguments,
			Reason:    ev.Reason,
			Detail:    ev.Detail,
			At:        ev.Timestamp,
		})
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO drop_events (id, switcher_id, address, arguments, reason, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.SwitcherID, ev.Address, ev.Arguments, string(ev.Reason), ev.Detail,
		ev.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting drop event: %w", err)
	}
	return nil
}

// where builds the WHERE clause for f. Only placeholders reach the SQL text.
func (f Filter) where() (string, []any) {
	var conds []string
	var args []any

	if f.Reason != "" {
		conds = append(conds, "reason = ?")
		args = append(args, string(f.Reason))
	}
	if f.Address != "" {
		conds = append(conds, "address = ?")
		args = append(args, f.Address)
	}
	if f.AddressPrefix != "" {
		conds = append(conds, `address LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(f.AddressPrefix)+"%")
	}
	if f.SwitcherID != "" {
		conds = append(conds, "switcher_id = ?")
		args = append(args, f.SwitcherID)
	}
	if !f.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.Since.UTC().Format(timeLayout))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// List returns drop events matching filter, newest first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultListLimit
	case filter.Limit > MaxListLimit:
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	where, args := filter.where()

	var total int
	countQuery := "SELECT COUNT(*) FROM drop_events " + where //nolint:gosec // placeholders only
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting drop events: %w", err)
	}

	query := "SELECT id, switcher_id, address, arguments, reason, detail, created_at FROM drop_events " + //nolint:gosec // placeholders only
		where + " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("querying drop events: %w", err)
	}
	defer rows.Close()

	events := []DropEvent{}
	for rows.Next() {
		var ev DropEvent
		var reason, createdAt string
		if err := rows.Scan(&ev.ID, &ev.SwitcherID, &ev.Address, &ev.Arguments, &reason, &ev.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning drop event: %w", err)
		}
		ev.Reason = osc.ReasonKind(reason)
		ev.Timestamp, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing drop event timestamp %q: %w", createdAt, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating drop events: %w", err)
	}

	return &ListResult{
		Events: events,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// DeleteBefore removes events older than cutoff and returns how many.
func (r *SQLiteRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM drop_events WHERE created_at < ?",
		cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("pruning drop events: %w", err)
	}
	return res.RowsAffected()
}

// CountByReason returns the number of stored events per reason.
func (r *SQLiteRepository) CountByReason(ctx context.Context) (map[osc.ReasonKind]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT reason, COUNT(*) FROM drop_events GROUP BY reason")
	if err != nil {
		return nil, fmt.Errorf("counting drop events: %w", err)
	}
	defer rows.Close()

	counts := make(map[osc.ReasonKind]int)
	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, fmt.Errorf("scanning reason count: %w", err)
		}
		counts[osc.ReasonKind(reason)] = n
	}
	return counts, rows.Err()
}
