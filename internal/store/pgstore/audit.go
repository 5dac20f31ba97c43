package pgstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/authkit/pkg/audit"
)

var (
	_ audit.Storage      = (*Store)(nil)
	_ audit.BatchStorage = (*Store)(nil)
	_ audit.Reader       = (*Store)(nil)
)

var auditColumns = []string{"id", "user_id", "action", "result", "reason", "request_id", "ip", "metadata", "created_at"}

func auditRow(e audit.Event) []any {
	var meta any
	if len(e.Metadata) > 0 {
		meta = e.Metadata
	}
	return []any{e.ID, e.UserID, e.Action, string(e.Result), e.Reason, e.RequestID, e.IP, meta, e.CreatedAt}
}

func (s *Store) Store(ctx context.Context, e audit.Event) error {
	_, err := s.db.Exec(ctx, fmt.Sprintf(
		"INSERT INTO audit_events (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		strings.Join(auditColumns, ", ")), auditRow(e)...)
	return err
}

// StoreBatch writes events with the COPY protocol.
func (s *Store) StoreBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}
	_, err := s.db.CopyFrom(ctx, pgx.Identifier{"audit_events"}, auditColumns,
		pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
			return auditRow(events[i]), nil
		}),
	)
	return err
}

func (s *Store) FindEvents(ctx context.Context, c audit.Criteria) ([]audit.Event, error) {
	c = c.Normalize()

	where := []string{"user_id = $1"}
	args := []any{c.UserID}
	if c.Action != "" {
		args = append(args, c.Action)
		where = append(where, fmt.Sprintf("action = $%d", len(args)))
	}
	if !c.Since.IsZero() {
		args = append(args, c.Since)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	args = append(args, c.Limit)

	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT id::text, user_id, action, result, reason, request_id, ip, metadata, created_at
		FROM audit_events WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`, strings.Join(where, " AND "), len(args)), args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (audit.Event, error) {
		var (
			e    audit.Event
			meta []byte
		)
		if err := row.Scan(&e.ID, &e.UserID, &e.Action, &e.Result, &e.Reason,
			&e.RequestID, &e.IP, &meta, &e.CreatedAt); err != nil {
			return e, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return e, err
			}
		}
		e.CreatedAt = e.CreatedAt.UTC()
		return e, nil
	})
}
